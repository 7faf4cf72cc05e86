package fat32

import (
	"encoding/binary"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Dir is a lightweight view of a directory: a device/geometry reference
// plus the starting cluster of this directory's chain (§3 "Lifecycles").
// It is created by RootDir/Cd and discarded by the caller; it
// holds no iterator state of its own between calls.
type Dir struct {
	vol     *Volume
	cluster uint32 // this directory's own first cluster.
	parent  uint32 // parent directory's first cluster (0 for root).
	name    string
	isRoot  bool
}

// Entry describes a directory-entry match returned by Exist: enough detail
// to tell a file from a directory and to seed a File/Dir view without a
// second lookup.
type Entry struct {
	Name    string
	IsDir   bool
	Cluster uint32
	Length  uint32
	ModTime time.Time
}

func (d *Dir) newIter() (*dirIter, error) {
	return newDirIter(&d.vol.g, d.vol.device, d.cluster)
}

// Exist looks up name in d and reports the matching entry, if any (§4.5).
func (d *Dir) Exist(name string) (Entry, bool, error) {
	d.vol.log.trace("fat32: dir:exist", slog.String("name", name))
	it, err := d.newIter()
	if err != nil {
		return Entry{}, false, err
	}
	if classifyName(name) {
		for {
			rec, ok, err := it.next()
			if err != nil {
				return Entry{}, false, err
			}
			if !ok {
				return Entry{}, false, nil
			}
			if rec.kind == kindSFN && sfnEqualFold(rec.shortName, name) {
				return entryFromRecord(rec), true, nil
			}
		}
	}
	rec, found, err := findLFN(it, name)
	if err != nil || !found {
		return Entry{}, false, err
	}
	return entryFromRecord(rec), true, nil
}

func entryFromRecord(rec dirRecord) Entry {
	return Entry{
		Name:    decodeSFN(rec.shortName),
		IsDir:   rec.isDir,
		Cluster: rec.cluster,
		Length:  rec.length,
		ModTime: rec.modified,
	}
}

// findLFN implements §4.5's find_lfn: locate an LFN group whose decoded
// name matches query, and return its companion SFN record. Per the spec
// text, a partial match that fails verification is not retried against a
// later candidate group — this mirrors the reference algorithm's resolved
// behavior rather than adding unspecified backtracking.
func findLFN(it *dirIter, query string) (dirRecord, bool, error) {
	count := lfnFragmentCount(query)
	runes := []rune(query)
	lastIndex := 13 * (count - 1)
	for {
		rec, ok, err := it.next()
		if err != nil {
			return dirRecord{}, false, err
		}
		if !ok {
			return dirRecord{}, false, nil
		}
		if rec.kind != kindLFN || !rec.isLastFrag || int(rec.seq) != count {
			continue
		}
		if !strings.EqualFold(lfnFragmentToUTF8(rec.frag), string(runes[lastIndex:])) {
			continue
		}
		matched := true
		for k := count - 1; k >= 1; k-- {
			next, ok, err := it.next()
			if err != nil {
				return dirRecord{}, false, err
			}
			if !ok || next.kind != kindLFN || int(next.seq) != k || next.checksum != rec.checksum {
				matched = false
				break
			}
			lo := 13 * (k - 1)
			hi := lo + 13
			if hi > len(runes) {
				hi = len(runes)
			}
			if !strings.EqualFold(lfnFragmentToUTF8(next.frag), string(runes[lo:hi])) {
				matched = false
				break
			}
		}
		if !matched {
			return dirRecord{}, false, nil
		}
		sfn, ok, err := it.next()
		if err != nil {
			return dirRecord{}, false, err
		}
		if !ok || sfn.kind != kindSFN || lfnChecksum(sfn.shortName) != rec.checksum {
			return dirRecord{}, false, nil
		}
		return sfn, true, nil
	}
}

// Cd opens the named subdirectory (§4.5 cd).
func (d *Dir) Cd(name string) (*Dir, error) {
	e, ok, err := d.Exist(name)
	if err != nil {
		return nil, err
	}
	if !ok || !e.IsDir {
		return nil, ErrNoMatchDir
	}
	return &Dir{vol: d.vol, cluster: e.Cluster, parent: d.cluster, name: name}, nil
}

// OpenFile opens the named file for reading/writing (§4.5 open_file).
func (d *Dir) OpenFile(name string) (*File, error) {
	e, ok, err := d.Exist(name)
	if err != nil {
		return nil, err
	}
	if !ok || e.IsDir {
		return nil, ErrNoMatchFile
	}
	return &File{vol: d.vol, parent: d.cluster, name: name, cluster: e.Cluster, length: e.Length}, nil
}

// CreateDir creates an empty subdirectory named name (§4.5 create).
func (d *Dir) CreateDir(name string) error {
	return d.create(name, true)
}

// CreateFile creates an empty file named name (§4.5 create).
func (d *Dir) CreateFile(name string) error {
	return d.create(name, false)
}

func (d *Dir) create(name string, isDir bool) error {
	d.vol.log.trace("fat32: dir:create", slog.String("name", name), slog.Bool("dir", isDir))
	if hasIllegalChar(name) {
		return ErrIllegalChar
	}
	if _, ok, err := d.Exist(name); err != nil {
		return err
	} else if ok {
		if isDir {
			return ErrDirHasExist
		}
		return ErrFileHasExist
	}

	alloc := newOwnedFATChain(&d.vol.g, d.vol.device, 0)
	newClust, err := alloc.allocate()
	if err != nil {
		return err
	}
	if isDir {
		// Zero the directory's data cluster before any entry publishes a
		// pointer to it, so iteration over the new directory never walks
		// uninitialized bytes (§9 resolved REDESIGN FLAG #5).
		if err := zeroCluster(d.vol.device, &d.vol.g, newClust); err != nil {
			return err
		}
	}

	it, err := d.newIter()
	if err != nil {
		return err
	}
	for {
		_, ok, err := it.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}

	now := time.Now()
	var short [11]byte
	if classifyName(name) {
		short = encodeSFN(name)
		rec := buildSFNRecord(short, isDir, newClust, 0, now, now)
		if err := it.updateItem(rec); err != nil {
			return err
		}
	} else {
		existsFn := func(cand [11]byte) bool {
			probe, err := d.newIter()
			if err != nil {
				return false
			}
			for {
				r, ok, _ := probe.next()
				if !ok {
					return false
				}
				if r.kind == kindSFN && r.shortName == cand {
					return true
				}
			}
		}
		short = genShortName(name, existsFn)
		checksum := lfnChecksum(short)
		fragments, err := encodeLFNFragments(name, checksum)
		if err != nil {
			return ErrIllegalChar
		}
		for _, frag := range fragments {
			if err := it.updateItem(frag); err != nil {
				return err
			}
			if err := it.advance(); err != nil {
				return err
			}
		}
		rec := buildSFNRecord(short, isDir, newClust, 0, now, now)
		if err := it.updateItem(rec); err != nil {
			return err
		}
	}
	if err := it.update(); err != nil {
		return err
	}

	if isDir {
		return writeDotEntries(d.vol, newClust, d.cluster)
	}
	return nil
}

// buildSFNRecord serializes an SFN directory entry (§4.2), stamping both
// the creation and last-write timestamp fields (§1.3 "FileInfo metadata
// surface") via newShortDatetime. created and modified are independent:
// a rewrite that only updates length/cluster (file.go's updateLength)
// passes the entry's original created time back in unchanged alongside a
// fresh modified time, while a brand-new entry (Dir.create) stamps both to
// the same instant.
func buildSFNRecord(short [11]byte, isDir bool, cluster, length uint32, created, modified time.Time) [32]byte {
	var buf [32]byte
	copy(buf[dirNameOff:dirNameOff+11], short[:])
	if isDir {
		buf[dirAttrOff] = attrDirectory
	} else {
		buf[dirAttrOff] = attrArchive
	}
	buf[dirFstClusHIOff] = byte(cluster >> 16)
	buf[dirFstClusHIOff+1] = byte(cluster >> 24)
	buf[dirFstClusLOOff] = byte(cluster)
	buf[dirFstClusLOOff+1] = byte(cluster >> 8)
	if !isDir {
		buf[dirFileSizeOff] = byte(length)
		buf[dirFileSizeOff+1] = byte(length >> 8)
		buf[dirFileSizeOff+2] = byte(length >> 16)
		buf[dirFileSizeOff+3] = byte(length >> 24)
	}
	crt := newShortDatetime(created)
	buf[dirCrtTime10Off] = crt.fine
	binary.LittleEndian.PutUint16(buf[dirCrtTimeOff:], crt.time)
	binary.LittleEndian.PutUint16(buf[dirCrtDateOff:], crt.date)
	binary.LittleEndian.PutUint16(buf[dirLstAccDateOff:], crt.date)
	mod := newShortDatetime(modified)
	binary.LittleEndian.PutUint16(buf[dirModTimeOff:], mod.time)
	binary.LittleEndian.PutUint16(buf[dirModDateOff:], mod.date)
	return buf
}

// writeDotEntries writes the "." and ".." entries into the first two
// 32-byte slots of a freshly allocated, zero-filled directory cluster
// (§3 "non-root directories' first two entries").
func writeDotEntries(vol *Volume, self, parent uint32) error {
	win := blockWindow{}
	win.init(vol.device, int64(vol.g.bytesPerSector))
	sector := vol.g.clusterSector(self)
	if err := win.move(sector); err != nil {
		return diskFault("dir: write dot entries", err)
	}
	buf := win.bytes()
	now := time.Now()
	var dot [11]byte
	for i := range dot {
		dot[i] = ' '
	}
	dot[0] = '.'
	copy(buf[0:32], encodeDotEntry(dot, self, now))
	dot2 := dot
	dot2[1] = '.'
	copy(buf[32:64], encodeDotEntry(dot2, parent, now))
	win.markDirty()
	return win.sync()
}

func encodeDotEntry(name [11]byte, cluster uint32, now time.Time) []byte {
	rec := buildSFNRecord(name, true, cluster, 0, now, now)
	return rec[:]
}

// DeleteDir removes an empty or non-empty subdirectory, recursively
// freeing its children's cluster chains (§4.5 delete).
func (d *Dir) DeleteDir(name string) error {
	return d.delete(name, true)
}

// DeleteFile removes a file (§4.5 delete).
func (d *Dir) DeleteFile(name string) error {
	return d.delete(name, false)
}

func (d *Dir) delete(name string, isDir bool) error {
	d.vol.log.trace("fat32: dir:delete", slog.String("name", name), slog.Bool("dir", isDir))
	it, err := d.newIter()
	if err != nil {
		return err
	}

	isSFN := classifyName(name)
	var fragCount int
	var found dirRecord
	matched := false
	if isSFN {
		for {
			rec, ok, err := it.next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if rec.kind == kindSFN && sfnEqualFold(rec.shortName, name) {
				found, matched = rec, true
				break
			}
		}
	} else {
		fragCount = lfnFragmentCount(name)
		found, matched, err = findLFN(it, name)
		if err != nil {
			return err
		}
	}
	if !matched {
		if isDir {
			return ErrNoMatchDir
		}
		return ErrNoMatchFile
	}
	if found.isDir != isDir {
		if isDir {
			return ErrNoMatchDir
		}
		return ErrNoMatchFile
	}

	if isDir && found.cluster != 0 {
		if err := deleteChildren(d.vol, found.cluster); err != nil {
			return err
		}
	}

	freer := newOwnedFATChain(&d.vol.g, d.vol.device, found.cluster)
	if err := freer.free(found.cluster); err != nil {
		return err
	}

	steps := 1
	if !isSFN {
		steps = fragCount + 1
	}
	// The cursor sits just past the matched SFN (next() advances before
	// returning); rewind onto each entry of the group, newest first, before
	// marking it deleted (§4.5 step 5).
	for i := 0; i < steps; i++ {
		if err := it.previous(); err != nil {
			return err
		}
		if err := it.setDeleted(); err != nil {
			return err
		}
	}
	return it.update()
}

// deleteChildren recursively frees every child of a directory being
// deleted, aggregating per-child failures with multierror (§1.2) rather
// than aborting at the first one, matching the way dargueta/disko's
// recursive removal surfaces partial failures to the caller.
func deleteChildren(vol *Volume, dirCluster uint32) error {
	it, err := newDirIter(&vol.g, vol.device, dirCluster)
	if err != nil {
		return err
	}
	var errs *multierror.Error
	for {
		rec, ok, err := it.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if rec.kind != kindSFN {
			continue
		}
		if rec.isDir {
			if err := deleteChildren(vol, rec.cluster); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
		freer := newOwnedFATChain(&vol.g, vol.device, rec.cluster)
		if err := freer.free(rec.cluster); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// FileInfo describes one live entry yielded by ForEachFile.
type FileInfo struct {
	Name          string
	AlternateName string
	IsDir         bool
	Size          int64
	ModTime       time.Time
}

// ForEachFile walks the live entries of d, combining LFN fragment groups
// with their companion SFN into one FileInfo per entry (§2 "Directory
// listing", supplemented from original_source/'s dir.rs traversal
// helpers). It does not allocate a slice of results; callback return
// value of false stops the walk early.
func (d *Dir) ForEachFile(callback func(FileInfo) bool) error {
	it, err := d.newIter()
	if err != nil {
		return err
	}
	var pending strings.Builder
	var pendingChecksum byte
	havePending := false
	for {
		rec, ok, err := it.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch rec.kind {
		case kindLFN:
			frag := lfnFragmentToUTF8(rec.frag)
			combined := frag + pending.String()
			pending.Reset()
			pending.WriteString(combined)
			pendingChecksum = rec.checksum
			havePending = true
		case kindSFN:
			longName := decodeSFN(rec.shortName)
			if havePending && pendingChecksum == lfnChecksum(rec.shortName) {
				longName = pending.String()
			}
			pending.Reset()
			havePending = false
			info := FileInfo{
				Name:          longName,
				AlternateName: decodeSFN(rec.shortName),
				IsDir:         rec.isDir,
				Size:          int64(rec.length),
				ModTime:       rec.modified,
			}
			if !callback(info) {
				return nil
			}
		}
	}
}
