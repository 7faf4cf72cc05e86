package fat32

// blockMap is an in-memory BlockDevice backed by a map keyed by sector
// index, the same mocking strategy the reference codebase's vfs_test.go
// uses for its BlockMap type — sparse, so a multi-gigabyte volume never
// actually allocates gigabytes of test memory.
type blockMap struct {
	sectorSize int64
	data       map[int64][]byte
}

func newBlockMap(sectorSize int64) *blockMap {
	return &blockMap{sectorSize: sectorSize, data: make(map[int64][]byte)}
}

func (b *blockMap) ReadBlocks(dst []byte, startBlock int64) (int, error) {
	n := int64(len(dst)) / b.sectorSize
	off := 0
	for i := int64(0); i < n; i++ {
		sector, ok := b.data[startBlock+i]
		if ok {
			copy(dst[off:off+int(b.sectorSize)], sector)
		} else {
			clear(dst[off : off+int(b.sectorSize)])
		}
		off += int(b.sectorSize)
	}
	return len(dst), nil
}

func (b *blockMap) WriteBlocks(src []byte, startBlock int64) (int, error) {
	n := int64(len(src)) / b.sectorSize
	off := 0
	for i := int64(0); i < n; i++ {
		sector := make([]byte, b.sectorSize)
		copy(sector, src[off:off+int(b.sectorSize)])
		b.data[startBlock+i] = sector
		off += int(b.sectorSize)
	}
	return len(src), nil
}

func (b *blockMap) BlockSize() int64 { return b.sectorSize }

// formatTestVolume formats and mounts a fresh, small FAT32 volume over a
// blockMap, for use as a test fixture.
func formatTestVolume(t interface{ Fatalf(string, ...any) }, totalSectors uint32) *Volume {
	dev := newBlockMap(512)
	cfg := FormatConfig{
		SectorSize:        512,
		SectorsPerCluster: 8,
		VolumeLabel:       "TESTVOL",
		VolumeID:          0xC0FFEE,
	}
	if err := (Formatter{}).Format(dev, cfg, totalSectors); err != nil {
		t.Fatalf("format: %v", err)
	}
	vol, err := Mount(dev, nil)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	return vol
}
