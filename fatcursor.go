package fat32

import "encoding/binary"

// fatChain is the FAT chain cursor of §4.3. It walks and mutates the
// 32-bit FAT entries describing a cluster chain, and is the sole component
// that knows how to translate a cluster index into a FAT sector + byte
// offset. It reads and writes FAT sectors through the block window it is
// given; newOwnedFATChain gives each cursor a private one.
type fatChain struct {
	g     *geometry
	win   *blockWindow
	start uint32
	cur   uint32
	prev  uint32 // one-step rewind support (§4.3 "an implementation detail").
	begun bool
}

func newFATChain(g *geometry, win *blockWindow, start uint32) fatChain {
	return fatChain{g: g, win: win, start: start}
}

// newOwnedFATChain builds a fatChain with its own private sector buffer,
// rather than sharing a caller-supplied window. Every directory iterator
// and file stream carries one of these, matching §5's "iterators carry
// their own sector buffer" — the FAT cursor they drive is no exception.
func newOwnedFATChain(g *geometry, device BlockDevice, start uint32) *fatChain {
	win := &blockWindow{}
	win.init(device, int64(g.bytesPerSector))
	win.mirrorDelta = g.fat2SectorDelta()
	fc := newFATChain(g, win, start)
	return &fc
}

func (fc *fatChain) fatOffset(c uint32) (sector int64, byteOff int) {
	off := int64(c) * 4
	sector = fc.g.fat1Sector() + off/int64(fc.g.bytesPerSector)
	byteOff = int(off % int64(fc.g.bytesPerSector))
	return sector, byteOff
}

// readEntry returns the raw FAT entry for cluster c (successor cluster, or
// a free/EOC sentinel — caller interprets via isEOC).
func (fc *fatChain) readEntry(c uint32) (uint32, error) {
	sector, off := fc.fatOffset(c)
	if err := fc.win.move(sector); err != nil {
		return 0, diskFault("fat read", err)
	}
	return binary.LittleEndian.Uint32(fc.win.bytes()[off:]) & fatMask28, nil
}

// writeEntry writes value (masked to 28 bits) into cluster c's FAT slot and
// flushes it immediately. Per §9's resolved mirroring policy, the window
// mirrors this write to FAT2 automatically if the volume has two FATs (see
// geometry.fat2SectorDelta, wired into fc.win.mirrorDelta by
// newOwnedFATChain).
//
// The flush is unconditional rather than left to a later move() crossing a
// sector boundary: callers routinely build a fatChain, perform one or two
// writeEntry calls, and discard it (allocate/extend/free, and format.go's
// reserveRootCluster), so a write that only becomes durable when the same
// window happens to be redirected elsewhere would be silently lost whenever
// consecutive clusters share a FAT sector — the common case.
func (fc *fatChain) writeEntry(c uint32, value uint32) error {
	sector, off := fc.fatOffset(c)
	if err := fc.win.move(sector); err != nil {
		return diskFault("fat write", err)
	}
	buf := fc.win.bytes()
	existing := binary.LittleEndian.Uint32(buf[off:])
	// Preserve the top 4 reserved bits, as recommended by the FAT spec.
	binary.LittleEndian.PutUint32(buf[off:], (existing&^fatMask28)|(value&fatMask28))
	fc.win.markDirty()
	if err := fc.win.sync(); err != nil {
		return diskFault("fat write", err)
	}
	return nil
}

// next advances the cursor and returns the next cluster in the chain. The
// first call seats the cursor at start. Returns ok=false once an
// end-of-chain sentinel (§9: full range 0x0FFFFFF8..0x0FFFFFFF) is reached.
func (fc *fatChain) next() (cluster uint32, ok bool, err error) {
	if !fc.begun {
		fc.begun = true
		fc.cur = fc.start
		fc.prev = fc.start
		return fc.cur, fc.cur >= 2, nil
	}
	nextClust, err := fc.readEntry(fc.cur)
	if err != nil {
		return 0, false, err
	}
	if isEOC(nextClust) || nextClust == 0 {
		return 0, false, nil
	}
	fc.prev = fc.cur
	fc.cur = nextClust
	return fc.cur, true, nil
}

// previous rewinds the cursor by the one step the last next() advanced.
func (fc *fatChain) previous() {
	fc.cur = fc.prev
}

// findFree scans the FAT linearly from the start of FAT1 for the first
// entry equal to 0 (§4.3 blank_cluster). The caller must write a sentinel
// into the returned cluster before releasing the window, since this
// library is single-writer and does not otherwise protect against two
// scans returning the same index (§5).
func (fc *fatChain) findFree() (uint32, error) {
	maxCluster := fc.g.totalClusters()
	entriesPerSector := int64(fc.g.bytesPerSector) / 4
	for sector := int64(0); sector < int64(fc.g.sectorsPerFAT); sector++ {
		if err := fc.win.move(fc.g.fat1Sector() + sector); err != nil {
			return 0, diskFault("fat scan", err)
		}
		buf := fc.win.bytes()
		for i := int64(0); i < entriesPerSector; i++ {
			cluster := uint32(sector*entriesPerSector + i)
			if cluster < 2 {
				continue
			}
			if cluster > maxCluster {
				return 0, errDiskFull
			}
			if binary.LittleEndian.Uint32(buf[i*4:])&fatMask28 == 0 {
				return cluster, nil
			}
		}
	}
	return 0, errDiskFull
}

// allocate finds a free cluster, reserves it by writing EOC into its own
// slot, and returns it. Reserving before linking preserves the invariant
// that no two chains ever share a cluster (§9: "a single critical-section
// primitive").
func (fc *fatChain) allocate() (uint32, error) {
	c, err := fc.findFree()
	if err != nil {
		return 0, err
	}
	if err := fc.writeEntry(c, fatEOCWrite); err != nil {
		return 0, err
	}
	return c, nil
}

// extend allocates a new cluster and links it after tail, returning the
// new cluster. The new cluster is reserved (EOC written) before the link
// from tail is published, per the crash-ordering requirement of §5.
func (fc *fatChain) extend(tail uint32) (uint32, error) {
	newClust, err := fc.allocate()
	if err != nil {
		return 0, err
	}
	if err := fc.writeEntry(tail, newClust); err != nil {
		return 0, err
	}
	return newClust, nil
}

// free walks the chain starting at start, writing 0 into every entry. The
// successor of each cluster is read before that cluster's own entry is
// zeroed, so the walk needs no auxiliary storage (§5 "no heap allocation
// anywhere").
func (fc *fatChain) free(start uint32) error {
	c := start
	for c >= 2 {
		next, err := fc.readEntry(c)
		if err != nil {
			return err
		}
		if err := fc.writeEntry(c, 0); err != nil {
			return err
		}
		if isEOC(next) || next == 0 {
			return nil
		}
		c = next
	}
	return nil
}

var errDiskFull = diskErrorf("fat32: no free clusters")

type diskError string

func diskErrorf(s string) error { return diskError(s) }
func (e diskError) Error() string { return string(e) }

func (g *geometry) totalClusters() uint32 {
	dataSectors := g.totalSectors - uint32(g.reservedSectors) - uint32(g.numFATs)*g.sectorsPerFAT
	return dataSectors/uint32(g.sectorsPerCluster) + 1
}
