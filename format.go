package fat32

import (
	"encoding/binary"
)

// FormatConfig describes a fresh FAT32 volume to lay down over a block
// device (§1.3 "Volume formatting" of the expanded spec). Only FAT32 is
// supported; there is no FAT12/FAT16 path, matching §1's stated scope.
type FormatConfig struct {
	// SectorSize must match the target device's block size.
	SectorSize uint16
	// SectorsPerCluster selects the allocation unit; must be a power of two.
	SectorsPerCluster uint8
	// ReservedSectors is the count of sectors before FAT1 begins (includes
	// the boot sector and, when NumFATs == 2, the FSInfo/backup-boot area).
	// Zero selects a sane default of 32.
	ReservedSectors uint16
	// NumFATs is 1 or 2; zero defaults to 2 (FAT1 + mirror).
	NumFATs uint8
	// VolumeLabel is up to 11 ASCII bytes; longer labels are truncated.
	VolumeLabel string
	// VolumeID is an arbitrary serial number stamped into the BPB.
	VolumeID uint32

	sectorsPerFAT uint32 // computed by Format from the other fields.
}

// Formatter lays down a minimal valid FAT32 volume: a boot sector, an
// FSInfo sector, FAT1 (and its FAT2 mirror, if configured) with cluster 2
// reserved for the root directory, and a zeroed root directory cluster.
// It mirrors the reference codebase's stubbed-out Formatter (format.go),
// completed here since no original_source/ revision implements formatting
// but the reference codebase's go.mod already budgets for it.
type Formatter struct{}

// Format writes a fresh FAT32 volume spanning totalSectors sectors of
// device, starting at sector 0. totalSectors must be large enough to hold
// the reserved area, every FAT copy, and at least one data cluster.
func (Formatter) Format(device BlockDevice, cfg FormatConfig, totalSectors uint32) error {
	if cfg.ReservedSectors == 0 {
		cfg.ReservedSectors = 32
	}
	if cfg.NumFATs == 0 {
		cfg.NumFATs = 2
	}
	if cfg.SectorsPerCluster == 0 {
		cfg.SectorsPerCluster = 8
	}
	ssize := int64(cfg.SectorSize)
	if ssize <= 0 || ssize > maxSectorSize {
		return diskErrorf("fat32: unsupported sector size")
	}

	dataSectors := totalSectors - uint32(cfg.ReservedSectors)
	clusterCount := dataSectors/uint32(cfg.SectorsPerCluster) + 2
	// Each FAT sector holds bytesPerSector/4 entries; size the FAT so every
	// cluster (plus the two reserved low indices) has a slot.
	entriesPerSector := uint32(ssize) / 4
	cfg.sectorsPerFAT = (clusterCount + entriesPerSector - 1) / entriesPerSector

	var sector [maxSectorSize]byte
	buf := sector[:ssize]
	bs := &biosParamBlock{data: buf}
	bs.writeDefaults(cfg, totalSectors)
	bs.SetOEMName("GOFAT32 ")
	if _, err := device.WriteBlocks(buf, 0); err != nil {
		return diskFault("format: write boot sector", err)
	}

	if err := writeFSInfo(device, cfg, clusterCount, ssize); err != nil {
		return err
	}

	g := geometryFromBPB(bs)
	if err := zeroFATs(device, &g); err != nil {
		return err
	}
	if err := reserveRootCluster(device, &g); err != nil {
		return err
	}
	return zeroCluster(device, &g, g.rootCluster)
}

// writeFSInfo lays down the FSInfo sector (reserved sector 1) with a
// deliberately unknown free-cluster count (0xFFFFFFFF), matching the FAT
// spec's guidance that an unmaintained FSInfo must signal "recompute" to
// readers rather than assert a wrong number.
func writeFSInfo(device BlockDevice, cfg FormatConfig, clusterCount uint32, ssize int64) error {
	var sector [maxSectorSize]byte
	buf := sector[:ssize]
	binary.LittleEndian.PutUint32(buf[fsiLeadSig:], sigLeadSig)
	binary.LittleEndian.PutUint32(buf[fsiStrucSig:], sigStrucSig)
	binary.LittleEndian.PutUint32(buf[fsiFreeCount:], 0xFFFFFFFF) // unknown: readers recompute.
	binary.LittleEndian.PutUint32(buf[fsiNxtFree:], 3)
	binary.LittleEndian.PutUint32(buf[fsiTrailSig:], sigTrailSig)
	_, err := device.WriteBlocks(buf, 1)
	return diskFault("format: write FSInfo", err)
}

// zeroFATs clears every sector of every FAT copy.
func zeroFATs(device BlockDevice, g *geometry) error {
	var zero [maxSectorSize]byte
	zeroed := zero[:g.bytesPerSector]
	for fat := 0; fat < int(g.numFATs); fat++ {
		base := g.fat1Sector() + int64(fat)*int64(g.sectorsPerFAT)
		for s := int64(0); s < int64(g.sectorsPerFAT); s++ {
			if _, err := device.WriteBlocks(zeroed, base+s); err != nil {
				return diskFault("format: zero FAT", err)
			}
		}
	}
	return nil
}

// reserveRootCluster writes the FAT's two reserved low entries (FAT[0] =
// media descriptor fill, FAT[1] = EOC) and the end-of-chain sentinel into
// the root cluster's entry, all mirrored to FAT2 if configured, matching
// the ordering rule of §5: the FAT entry for the root must exist before
// anything references it.
func reserveRootCluster(device BlockDevice, g *geometry) error {
	win := &blockWindow{}
	win.init(device, int64(g.bytesPerSector))
	win.mirrorDelta = g.fat2SectorDelta()
	chain := newFATChain(g, win, g.rootCluster)
	if err := chain.writeEntry(0, fatReserved0); err != nil {
		return err
	}
	if err := chain.writeEntry(1, fatEOCWrite); err != nil {
		return err
	}
	return chain.writeEntry(g.rootCluster, fatEOCWrite)
}

// zeroCluster writes zero-filled sectors across every sector of cluster c.
// Shared by Format (root cluster), Dir.create (a new subdirectory's data
// cluster) and dirIter.updateItem (a grown directory's new chain cluster),
// all of which must never expose uninitialized bytes to later iteration.
func zeroCluster(device BlockDevice, g *geometry, c uint32) error {
	var zero [maxSectorSize]byte
	zeroed := zero[:g.bytesPerSector]
	base := g.clusterSector(c)
	for s := int64(0); s < int64(g.sectorsPerCluster); s++ {
		if _, err := device.WriteBlocks(zeroed, base+s); err != nil {
			return diskFault("zero cluster", err)
		}
	}
	return nil
}
