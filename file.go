package fat32

import (
	"log/slog"
	"time"
)

// WriteType selects how File.Write maps buf onto the file's cluster chain
// (§4.6).
type WriteType uint8

const (
	// Overwrite discards the file's existing chain and replaces its
	// contents with buf.
	Overwrite WriteType = iota
	// Append extends the file's existing contents with buf.
	Append
)

// File is a lightweight stream view over one file's cluster chain (§4.6).
// It holds the parent directory's cluster (needed to rewrite the length
// field after a write) and the file's own first cluster and length as of
// the last Open/Write.
type File struct {
	vol     *Volume
	parent  uint32
	name    string
	cluster uint32
	length  uint32
}

// Len returns the file's length in bytes, as of the last Open or Write.
func (f *File) Len() uint32 { return f.length }

// Read fills buf with the file's entire contents. buf must be at least
// f.Len() bytes (§4.6); ErrBufTooSmall is returned otherwise, and buf is
// left untouched.
func (f *File) Read(buf []byte) (int, error) {
	f.vol.log.trace("fat32: file:read", slog.String("name", f.name), slog.Uint64("length", uint64(f.length)))
	if uint32(len(buf)) < f.length {
		return 0, ErrBufTooSmall
	}
	if f.length == 0 || f.cluster == 0 {
		return 0, nil
	}
	g := &f.vol.g
	device := f.vol.device
	chain := newOwnedFATChain(g, device, f.cluster)
	clusterBytes := g.clusterSize()
	ssize := uint32(g.bytesPerSector)
	remaining := f.length
	off := 0
	for remaining > 0 {
		c, ok, err := chain.next()
		if err != nil {
			return off, err
		}
		if !ok {
			break
		}
		base := g.clusterSector(c)
		if remaining >= clusterBytes {
			if _, err := device.ReadBlocks(buf[off:off+int(clusterBytes)], base); err != nil {
				return off, diskFault("file read", err)
			}
			off += int(clusterBytes)
			remaining -= clusterBytes
			continue
		}
		// Final partial cluster: whole sectors go straight into buf, the
		// trailing partial sector through a bounce buffer so a buf sized
		// exactly to the file length is never overrun (§4.6).
		if full := remaining / ssize; full > 0 {
			n := full * ssize
			if _, err := device.ReadBlocks(buf[off:off+int(n)], base); err != nil {
				return off, diskFault("file read", err)
			}
			off += int(n)
			remaining -= n
			base += int64(full)
		}
		if remaining > 0 {
			var tail [maxSectorSize]byte
			if _, err := device.ReadBlocks(tail[:ssize], base); err != nil {
				return off, diskFault("file read", err)
			}
			copy(buf[off:], tail[:remaining])
			off += int(remaining)
			remaining = 0
		}
	}
	return int(f.length), nil
}

// Write replaces (Overwrite) or extends (Append) the file's contents with
// buf and updates the file's length in the parent directory (§4.6).
func (f *File) Write(buf []byte, typ WriteType) error {
	f.vol.log.trace("fat32: file:write", slog.String("name", f.name), slog.Int("n", len(buf)), slog.Any("type", typ))
	switch typ {
	case Overwrite:
		if err := f.overwrite(buf); err != nil {
			return err
		}
	case Append:
		if len(buf) == 0 {
			return nil // §8 boundary: appending 0 bytes is a no-op.
		}
		if err := f.append(buf); err != nil {
			return err
		}
	}
	return f.updateLength()
}

func (f *File) overwrite(buf []byte) error {
	g := &f.vol.g
	chain := newOwnedFATChain(g, f.vol.device, 0)
	oldChain := f.cluster

	var first uint32
	if len(buf) > 0 {
		clusterSize := g.clusterSize()
		numClusters := (uint32(len(buf)) + clusterSize - 1) / clusterSize
		var err error
		first, err = chain.allocate()
		if err != nil {
			return err
		}
		cur := first
		for i := uint32(1); i < numClusters; i++ {
			next, err := chain.extend(cur)
			if err != nil {
				return err
			}
			cur = next
		}
		if err := writeClusterChain(f.vol, first, buf); err != nil {
			return err
		}
	}

	// Free the old chain only after the replacement chain and its data are
	// fully on disk (§5 ordering). The directory entry is rewritten later,
	// by updateLength, so until then it still points at the old first
	// cluster, which the FAT already reports free.
	if oldChain != 0 {
		if err := chain.free(oldChain); err != nil {
			return err
		}
	}
	f.cluster = first
	f.length = uint32(len(buf))
	return nil
}

// writeClusterChain writes buf across the chain starting at first,
// zero-padding the final sector on the right if buf does not fill it
// exactly (§4.6 overwrite).
func writeClusterChain(vol *Volume, first uint32, buf []byte) error {
	g := &vol.g
	chain := newOwnedFATChain(g, vol.device, first)
	off := 0
	var sectorBuf [maxSectorSize]byte
	ssize := int(g.bytesPerSector)
	for off < len(buf) {
		c, ok, err := chain.next()
		if err != nil {
			return err
		}
		if !ok {
			return diskErrorf("fat32: write ran past end of allocated chain")
		}
		base := g.clusterSector(c)
		for s := 0; s < int(g.sectorsPerCluster) && off < len(buf); s++ {
			n := copy(sectorBuf[:ssize], buf[off:])
			for i := n; i < ssize; i++ {
				sectorBuf[i] = 0
			}
			if _, err := vol.device.WriteBlocks(sectorBuf[:ssize], base+int64(s)); err != nil {
				return diskFault("file write", err)
			}
			off += n
		}
	}
	return nil
}

// append extends the file's existing chain with buf (§4.6 append): first
// filling the unused tail of the last allocated cluster, then allocating
// and writing further clusters for any remainder.
func (f *File) append(buf []byte) error {
	g := &f.vol.g
	device := f.vol.device
	clusterSize := g.clusterSize()

	if f.cluster == 0 {
		return f.overwrite(buf)
	}

	chain := newOwnedFATChain(g, device, f.cluster)
	var tail uint32
	for {
		c, ok, err := chain.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		tail = c
	}

	used := f.length % clusterSize
	tailUnused := clusterSize - used
	if used == 0 && f.length != 0 {
		tailUnused = 0
	}

	off := 0
	if tailUnused > 0 {
		n := tailUnused
		if uint32(len(buf)) < n {
			n = uint32(len(buf))
		}
		if err := fillTail(device, g, tail, used, buf[:n]); err != nil {
			return err
		}
		off = int(n)
	}

	remaining := buf[off:]
	if len(remaining) > 0 {
		numClusters := (uint32(len(remaining)) + clusterSize - 1) / clusterSize
		allocChain := newOwnedFATChain(g, device, 0)
		cur := tail
		var first uint32
		for i := uint32(0); i < numClusters; i++ {
			next, err := allocChain.extend(cur)
			if err != nil {
				return err
			}
			if i == 0 {
				first = next
			}
			cur = next
		}
		if err := writeClusterChain(f.vol, first, remaining); err != nil {
			return err
		}
	}
	f.length += uint32(len(buf))
	return nil
}

// fillTail writes data into the unused portion of the tail cluster,
// starting at byte offset used within that cluster, read-modifying-writing
// the partial sector that straddles the current end-of-file byte.
func fillTail(device BlockDevice, g *geometry, tailCluster uint32, used uint32, data []byte) error {
	ssize := uint32(g.bytesPerSector)
	base := g.clusterSector(tailCluster)
	off := used
	written := uint32(0)
	var sectorBuf [maxSectorSize]byte
	for written < uint32(len(data)) {
		sectorIdx := off / ssize
		withinSector := off % ssize
		if _, err := device.ReadBlocks(sectorBuf[:ssize], base+int64(sectorIdx)); err != nil {
			return diskFault("file append: read tail sector", err)
		}
		n := ssize - withinSector
		if n > uint32(len(data))-written {
			n = uint32(len(data)) - written
		}
		copy(sectorBuf[withinSector:withinSector+n], data[written:written+n])
		if _, err := device.WriteBlocks(sectorBuf[:ssize], base+int64(sectorIdx)); err != nil {
			return diskFault("file append: write tail sector", err)
		}
		off += n
		written += n
	}
	return nil
}

// updateLength rewrites the file's SFN entry in its parent directory with
// the current first cluster and length (§4.6, final step of write): a
// fresh iterator over the parent re-locates the entry by name, the same
// lookup Exist uses, then rewinds one slot and rewrites the 32 bytes in
// place. Locating by name rather than by first cluster keeps the lookup
// unambiguous for zero-length files, whose cluster field is 0.
func (f *File) updateLength() error {
	it, err := newDirIter(&f.vol.g, f.vol.device, f.parent)
	if err != nil {
		return err
	}
	var rec dirRecord
	matched := false
	if classifyName(f.name) {
		for {
			r, ok, err := it.next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if r.kind == kindSFN && sfnEqualFold(r.shortName, f.name) {
				rec, matched = r, true
				break
			}
		}
	} else {
		rec, matched, err = findLFN(it, f.name)
		if err != nil {
			return err
		}
	}
	if !matched {
		return diskErrorf("fat32: file's directory entry vanished")
	}
	if err := it.previous(); err != nil {
		return err
	}
	buf := buildSFNRecord(rec.shortName, false, f.cluster, f.length, rec.created, time.Now())
	if err := it.updateItem(buf); err != nil {
		return err
	}
	return it.update()
}
