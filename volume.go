package fat32

import (
	"log/slog"
)

// Volume is the result of mounting a FAT32 block device (§4.1). It is
// immutable once constructed: the BPB is read exactly once, at Mount, and
// never revisited. Dir and File views hold a pointer to the Volume and so
// share its device and geometry.
type Volume struct {
	device BlockDevice
	g      geometry
	log    logHelpers
}

// Mount reads sector 0 of device, validates it as a FAT32 volume, and
// returns a Volume exposing its root directory. Per §4.1, a non-FAT32
// signature or a sector-size mismatch between device and volume are
// configuration faults, not runtime conditions, and are returned as
// ErrNotFAT32 or *ErrSectorSizeMismatch errors rather than retried.
// Pass a non-nil logger to receive structured debug/warn/error messages
// from the mount path and from directory and file operations (§1.1); a nil
// logger discards everything.
func Mount(device BlockDevice, log *slog.Logger) (*Volume, error) {
	helpers := logHelpers{log: log}
	helpers.trace("fat32: mount: reading sector 0")

	var sector [maxSectorSize]byte
	ssize := device.BlockSize()
	if ssize <= 0 || ssize > maxSectorSize {
		return nil, diskErrorf("fat32: unsupported device block size")
	}
	buf := sector[:ssize]
	if _, err := device.ReadBlocks(buf, 0); err != nil {
		err = diskFault("mount: read sector 0", err)
		helpers.logerror("fat32: mount failed", err)
		return nil, err
	}

	bs := &biosParamBlock{data: buf}
	if !bs.isFAT32() {
		helpers.warn("fat32: mount: not a FAT32 volume")
		return nil, ErrNotFAT32
	}
	if int64(bs.bytesPerSector()) != ssize {
		err := &ErrSectorSizeMismatch{Device: ssize, Volume: int64(bs.bytesPerSector())}
		helpers.logerror("fat32: mount failed", err)
		return nil, err
	}

	g := geometryFromBPB(bs)
	v := &Volume{device: device, g: g, log: helpers}
	v.log.trace("fat32: mounted", slog.Uint64("root_cluster", uint64(g.rootCluster)),
		slog.Uint64("bytes_per_sector", uint64(g.bytesPerSector)),
		slog.Uint64("sectors_per_cluster", uint64(g.sectorsPerCluster)))
	return v, nil
}

// RootDir returns a Dir view of the volume's root directory (§4.1).
func (v *Volume) RootDir() *Dir {
	return &Dir{
		vol:     v,
		cluster: v.g.rootCluster,
		name:    "",
		isRoot:  true,
	}
}

// ClusterSize returns the size of one cluster in bytes.
func (v *Volume) ClusterSize() uint32 { return v.g.clusterSize() }

// SectorSize returns the size of one sector in bytes.
func (v *Volume) SectorSize() uint16 { return v.g.bytesPerSector }
