package main

import "os"

// fileDevice adapts an *os.File to fat32.BlockDevice, treating the file as
// a flat array of fixed-size sectors. It is the host-side stand-in for the
// SD/MMC driver the library targets in its embedded deployment.
type fileDevice struct {
	f    *os.File
	size int64
}

func openFileDevice(path string, sectorSize int64) (*fileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &fileDevice{f: f, size: sectorSize}, nil
}

func createFileDevice(path string, sectorSize, totalSectors int64) (*fileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(sectorSize * totalSectors); err != nil {
		f.Close()
		return nil, err
	}
	return &fileDevice{f: f, size: sectorSize}, nil
}

func (d *fileDevice) ReadBlocks(dst []byte, startBlock int64) (int, error) {
	return d.f.ReadAt(dst, startBlock*d.size)
}

func (d *fileDevice) WriteBlocks(src []byte, startBlock int64) (int, error) {
	return d.f.WriteAt(src, startBlock*d.size)
}

func (d *fileDevice) BlockSize() int64 { return d.size }

func (d *fileDevice) Close() error { return d.f.Close() }
