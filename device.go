package fat32

import "log/slog"

// BlockDevice is the only external collaborator this library requires.
// Implementations back a raw, sector-addressed storage medium such as an
// SD/MMC card, a RAM disk, or a disk image file. All addressing is by
// sector index, never by byte offset.
type BlockDevice interface {
	// ReadBlocks fills dst with len(dst)/BlockSize() sectors starting at
	// startBlock. len(dst) must be a multiple of BlockSize().
	ReadBlocks(dst []byte, startBlock int64) (int, error)
	// WriteBlocks persists src, which must be a multiple of BlockSize() in
	// length, starting at sector startBlock.
	WriteBlocks(src []byte, startBlock int64) (int, error)
	// BlockSize returns the sector size in bytes of the underlying device.
	BlockSize() int64
}

// blockWindow is a one-sector read/write cache. Every FAT cursor and every
// directory iterator carries its own; none is shared between them. It
// mirrors writes to the FAT's redundant copy when mirrorDelta is set.
type blockWindow struct {
	device      BlockDevice
	sector      int64 // -1 when invalid/empty.
	dirty       bool
	mirrorDelta int64 // sector offset to FAT2, or 0 if no mirroring.
	blockSize   int64
	buf         [maxSectorSize]byte
}

func (w *blockWindow) init(device BlockDevice, blockSize int64) {
	w.device = device
	w.blockSize = blockSize
	w.sector = -1
	w.dirty = false
	w.mirrorDelta = 0
}

func (w *blockWindow) bytes() []byte { return w.buf[:w.blockSize] }

// move loads the window with the contents of sector, flushing any pending
// write first. It is a no-op if the window already holds that sector.
func (w *blockWindow) move(sector int64) error {
	if sector == w.sector {
		return nil
	}
	if err := w.sync(); err != nil {
		return err
	}
	_, err := w.device.ReadBlocks(w.bytes(), sector)
	if err != nil {
		w.sector = -1
		return err
	}
	w.sector = sector
	return nil
}

// sync flushes the window to disk if dirty, mirroring the write to
// sector+mirrorDelta when mirroring is enabled.
func (w *blockWindow) sync() error {
	if !w.dirty {
		return nil
	}
	_, err := w.device.WriteBlocks(w.bytes(), w.sector)
	if err != nil {
		return err
	}
	if w.mirrorDelta != 0 {
		// Best-effort mirror: a failure here does not invalidate the
		// primary copy that was just written successfully.
		w.device.WriteBlocks(w.bytes(), w.sector+w.mirrorDelta)
	}
	w.dirty = false
	return nil
}

func (w *blockWindow) markDirty() { w.dirty = true }

const maxSectorSize = 4096

// logHelpers centralizes the slog call sites so every component logs at a
// consistent level with a consistent message shape.
type logHelpers struct {
	log *slog.Logger
}

func (l logHelpers) trace(msg string, args ...any) {
	if l.log == nil {
		return
	}
	l.log.Debug(msg, args...)
}

func (l logHelpers) warn(msg string, args ...any) {
	if l.log == nil {
		return
	}
	l.log.Warn(msg, args...)
}

func (l logHelpers) logerror(msg string, err error) {
	if l.log == nil {
		return
	}
	l.log.Error(msg, slog.String("err", err.Error()))
}
