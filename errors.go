package fat32

import "fmt"

// DirError is returned by directory operations (exist, cd, open_file,
// create_dir, create_file, delete_dir, delete_file).
type DirError uint8

const (
	_ DirError = iota
	// ErrIllegalChar indicates a name contains a reserved character.
	ErrIllegalChar
	// ErrNoMatchDir indicates the target directory does not exist, or the
	// matching entry is not a directory.
	ErrNoMatchDir
	// ErrNoMatchFile indicates the target file does not exist, or the
	// matching entry is not a file.
	ErrNoMatchFile
	// ErrDirHasExist indicates a directory with that name already exists.
	ErrDirHasExist
	// ErrFileHasExist indicates a file with that name already exists.
	ErrFileHasExist
)

func (e DirError) Error() string {
	switch e {
	case ErrIllegalChar:
		return "fat32: illegal character in name"
	case ErrNoMatchDir:
		return "fat32: no matching directory"
	case ErrNoMatchFile:
		return "fat32: no matching file"
	case ErrDirHasExist:
		return "fat32: directory already exists"
	case ErrFileHasExist:
		return "fat32: file already exists"
	default:
		return "fat32: unknown directory error"
	}
}

// FileError is returned by File.Read/Write.
type FileError uint8

const (
	_ FileError = iota
	// ErrBufTooSmall indicates Read was called with a buffer shorter than
	// the file's length.
	ErrBufTooSmall
)

func (e FileError) Error() string {
	switch e {
	case ErrBufTooSmall:
		return "fat32: buffer too small"
	default:
		return "fat32: unknown file error"
	}
}

// ErrDiskFault wraps an underlying BlockDevice error. Per the concurrency
// and resource model (§5), device I/O failures are not retried or
// repaired by this library; they are surfaced as-is to the caller.
type ErrDiskFault struct {
	Op  string
	Err error
}

func (e *ErrDiskFault) Error() string {
	return fmt.Sprintf("fat32: disk fault during %s: %s", e.Op, e.Err)
}

func (e *ErrDiskFault) Unwrap() error { return e.Err }

func diskFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrDiskFault{Op: op, Err: err}
}

// ErrNotFAT32 is returned by Mount when the volume's sector-0
// signature does not contain the ASCII "FAT32" filesystem-type field.
var ErrNotFAT32 = fmt.Errorf("fat32: volume is not FAT32")

// ErrSectorSizeMismatch is returned by Mount when the device's
// advertised block size does not match the volume's bytes-per-sector
// field. Continuing would silently corrupt every subsequent byte-offset
// computation, so this is a fatal configuration error, not a runtime one.
type ErrSectorSizeMismatch struct {
	Device, Volume int64
}

func (e *ErrSectorSizeMismatch) Error() string {
	return fmt.Sprintf("fat32: device sector size %d does not match volume bytes-per-sector %d", e.Device, e.Volume)
}
