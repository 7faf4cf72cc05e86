package fat32

import (
	"encoding/binary"
)

// biosParamBlock is a thin byte-accessor over sector 0 of a mounted volume,
// following the reference FatFs-derived codebase's convention of exposing
// geometry fields as methods over a borrowed byte slice rather than eagerly
// unpacking every field into a struct. Once mounted, the relevant fields
// are copied out into geometry (below), which is what the rest of the
// library actually carries around — the BPB itself is read once (§4.1) and
// never revisited.
type biosParamBlock struct {
	data []byte
}

func (bs *biosParamBlock) bytesPerSector() uint16 {
	return binary.LittleEndian.Uint16(bs.data[bpbBytsPerSec:])
}

func (bs *biosParamBlock) sectorsPerCluster() uint8 {
	return bs.data[bpbSecPerClus]
}

func (bs *biosParamBlock) reservedSectors() uint16 {
	return binary.LittleEndian.Uint16(bs.data[bpbRsvdSecCnt:])
}

func (bs *biosParamBlock) numFATs() uint8 {
	return bs.data[bpbNumFATs]
}

func (bs *biosParamBlock) sectorsPerFAT() uint32 {
	return binary.LittleEndian.Uint32(bs.data[bpbFATSz32:])
}

func (bs *biosParamBlock) rootCluster() uint32 {
	return binary.LittleEndian.Uint32(bs.data[bpbRootClus32:])
}

func (bs *biosParamBlock) totalSectors() uint32 {
	totsec := uint32(binary.LittleEndian.Uint16(bs.data[bpbTotSec16:]))
	if totsec == 0 {
		totsec = binary.LittleEndian.Uint32(bs.data[bpbTotSec32:])
	}
	return totsec
}

func (bs *biosParamBlock) volumeID() uint32 {
	return binary.LittleEndian.Uint32(bs.data[bsVolID32:])
}

func (bs *biosParamBlock) volumeLabel() [11]byte {
	var label [11]byte
	copy(label[:], bs.data[bsVolLab32:])
	return label
}

func (bs *biosParamBlock) filesystemType() [8]byte {
	var fst [8]byte
	copy(fst[:], bs.data[bsFilSysType:])
	return fst
}

func (bs *biosParamBlock) isFAT32() bool {
	fst := bs.filesystemType()
	return string(fst[:5]) == "FAT32"
}

func (bs *biosParamBlock) oemName() [8]byte {
	var oem [8]byte
	copy(oem[:], bs.data[bsOEMName:])
	return oem
}

// SetOEMName stamps the 8-byte OEM name field, space-padding short names.
// Used only by Formatter; mounted volumes never rewrite the boot sector.
func (bs *biosParamBlock) SetOEMName(name string) {
	n := copy(bs.data[bsOEMName:bsOEMName+8], name)
	for i := n; i < 8; i++ {
		bs.data[bsOEMName+i] = ' '
	}
}

func (bs *biosParamBlock) fsInfoSector() uint16 {
	return binary.LittleEndian.Uint16(bs.data[bpbFSInfo32:])
}

// writeDefaults lays down the fields a freshly formatted volume needs;
// used only by Formatter (format.go). Fields not set here (OEM name, boot
// code, jump instruction) are left as whatever the caller pre-populated,
// matching the reference codebase's Formatter, which never touches the
// boot code region either.
func (bs *biosParamBlock) writeDefaults(cfg FormatConfig, totalSectors uint32) {
	binary.LittleEndian.PutUint16(bs.data[bpbBytsPerSec:], uint16(cfg.SectorSize))
	bs.data[bpbSecPerClus] = cfg.SectorsPerCluster
	binary.LittleEndian.PutUint16(bs.data[bpbRsvdSecCnt:], cfg.ReservedSectors)
	bs.data[bpbNumFATs] = cfg.NumFATs
	binary.LittleEndian.PutUint16(bs.data[bpbRootEntCnt:], 0)
	binary.LittleEndian.PutUint16(bs.data[bpbTotSec16:], 0)
	bs.data[bpbMedia] = 0xF8
	binary.LittleEndian.PutUint16(bs.data[bpbFATSz16:], 0)
	binary.LittleEndian.PutUint32(bs.data[bpbHiddSec:], 0)
	binary.LittleEndian.PutUint32(bs.data[bpbTotSec32:], totalSectors)
	binary.LittleEndian.PutUint32(bs.data[bpbFATSz32:], cfg.sectorsPerFAT)
	binary.LittleEndian.PutUint32(bs.data[bpbRootClus32:], 2)
	binary.LittleEndian.PutUint16(bs.data[bpbFSInfo32:], 1)
	binary.LittleEndian.PutUint16(bs.data[bpbBkBootSec:], 6)
	bs.data[bsDrvNum32] = 0x80
	bs.data[bsBootSig32] = 0x29
	binary.LittleEndian.PutUint32(bs.data[bsVolID32:], cfg.VolumeID)
	n := copy(bs.data[bsVolLab32:bsVolLab32+11], cfg.VolumeLabel)
	for i := n; i < 11; i++ {
		bs.data[bsVolLab32+i] = ' '
	}
	copy(bs.data[bsFilSysType:bsFilSysType+8], "FAT32   ")
	binary.LittleEndian.PutUint16(bs.data[bs55AA:], 0xAA55)
}

// geometry is the immutable, copied-out subset of the BPB the rest of the
// library operates on (§3). It is computed once at Mount and never mutates.
type geometry struct {
	bytesPerSector    uint16
	sectorsPerCluster uint8
	reservedSectors   uint16
	numFATs           uint8
	sectorsPerFAT     uint32
	rootCluster       uint32
	totalSectors      uint32
	volumeID          uint32
	volumeLabel       [11]byte
	oemName           [8]byte
}

func (g *geometry) clusterSize() uint32 {
	return uint32(g.sectorsPerCluster) * uint32(g.bytesPerSector)
}

// fat1Sector returns the first sector of the first (and authoritative, for
// reads) FAT copy.
func (g *geometry) fat1Sector() int64 {
	return int64(g.reservedSectors)
}

// fat2SectorDelta returns the sector distance from FAT1 to the FAT2 mirror,
// or 0 if the volume only has one FAT.
func (g *geometry) fat2SectorDelta() int64 {
	if g.numFATs < 2 {
		return 0
	}
	return int64(g.sectorsPerFAT)
}

// clusterSector returns the first sector of cluster c's data region.
// Cluster indices below 2 are invalid (§3: "Cluster indices start at 2").
func (g *geometry) clusterSector(c uint32) int64 {
	dataBase := int64(g.reservedSectors) + int64(g.numFATs)*int64(g.sectorsPerFAT)
	return dataBase + int64(c-2)*int64(g.sectorsPerCluster)
}

func geometryFromBPB(bs *biosParamBlock) geometry {
	return geometry{
		bytesPerSector:    bs.bytesPerSector(),
		sectorsPerCluster: bs.sectorsPerCluster(),
		reservedSectors:   bs.reservedSectors(),
		numFATs:           bs.numFATs(),
		sectorsPerFAT:     bs.sectorsPerFAT(),
		rootCluster:       bs.rootCluster(),
		totalSectors:      bs.totalSectors(),
		volumeID:          bs.volumeID(),
		volumeLabel:       bs.volumeLabel(),
		oemName:           bs.oemName(),
	}
}
