package main

import (
	"strings"

	"github.com/embeddedgo/fat32"
)

// mountImage opens path read-write and mounts it, probing sectorSize
// candidates the way a host tool without prior knowledge of the image's
// geometry would.
func mountImage(path string) (*fat32.Volume, *fileDevice, error) {
	for _, ssize := range []int64{512, 1024, 2048, 4096} {
		dev, err := openFileDevice(path, ssize)
		if err != nil {
			return nil, nil, err
		}
		vol, err := fat32.Mount(dev, nil)
		if err == nil {
			return vol, dev, nil
		}
		dev.Close()
	}
	return nil, nil, fat32.ErrNotFAT32
}

// resolveDir walks a slash-separated path from the volume root, returning
// the final directory. An empty path returns the root directory.
func resolveDir(vol *fat32.Volume, path string) (*fat32.Dir, error) {
	dir := vol.RootDir()
	path = strings.Trim(path, "/")
	if path == "" {
		return dir, nil
	}
	for _, part := range strings.Split(path, "/") {
		next, err := dir.Cd(part)
		if err != nil {
			return nil, err
		}
		dir = next
	}
	return dir, nil
}

// splitParent separates a slash-separated path into its parent directory
// path and final element name.
func splitParent(path string) (parent, name string) {
	path = strings.Trim(path, "/")
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}
