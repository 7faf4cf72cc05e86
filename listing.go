package fat32

import (
	"encoding/binary"

	"github.com/dustin/go-humanize"
)

// HumanSize formats the entry's size the way a directory-listing tool
// would ("1.2 MB" rather than a raw byte count), for directories as well
// as files (always 0 for a directory, per §3).
func (fi FileInfo) HumanSize() string {
	return humanize.Bytes(uint64(fi.Size))
}

// HumanModTime formats the entry's last-write time relative to now
// ("3 days ago"), matching the style a `ls -lh`-alike host tool would use.
func (fi FileInfo) HumanModTime() string {
	return humanize.Time(fi.ModTime)
}

// FreeClusters scans the FAT for the number of unallocated clusters. This
// walks the entire FAT linearly (§4.3 blank_cluster's scan) and is meant
// for occasional reporting (a `df`-style summary), not the hot path.
func (v *Volume) FreeClusters() (uint32, error) {
	win := &blockWindow{}
	win.init(v.device, int64(v.g.bytesPerSector))
	chain := newFATChain(&v.g, win, 0)
	var free uint32
	maxCluster := v.g.totalClusters()
	entriesPerSector := int64(v.g.bytesPerSector) / 4
	for sector := int64(0); sector < int64(v.g.sectorsPerFAT); sector++ {
		if err := win.move(chain.g.fat1Sector() + sector); err != nil {
			return 0, diskFault("free-space scan", err)
		}
		buf := win.bytes()
		for i := int64(0); i < entriesPerSector; i++ {
			cluster := uint32(sector*entriesPerSector + i)
			if cluster < 2 || cluster > maxCluster {
				continue
			}
			if binary.LittleEndian.Uint32(buf[i*4:])&fatMask28 == 0 {
				free++
			}
		}
	}
	return free, nil
}

// HumanFreeSpace is FreeClusters scaled to bytes and formatted for humans.
func (v *Volume) HumanFreeSpace() (string, error) {
	free, err := v.FreeClusters()
	if err != nil {
		return "", err
	}
	return humanize.Bytes(uint64(free) * uint64(v.g.clusterSize())), nil
}
