package fat32

// Byte offsets into the FAT32 BIOS Parameter Block (BPB), sector 0 of the
// volume. Names follow the Microsoft FAT specification's field names.
const (
	bsJmpBoot     = 0x00
	bsOEMName     = 0x03
	bpbBytsPerSec = 0x0B // WORD
	bpbSecPerClus = 0x0D // BYTE
	bpbRsvdSecCnt = 0x0E // WORD
	bpbNumFATs    = 0x10 // BYTE
	bpbRootEntCnt = 0x11 // WORD, 0 for FAT32
	bpbTotSec16   = 0x13 // WORD, 0 for FAT32 (see bpbTotSec32)
	bpbMedia      = 0x15 // BYTE
	bpbFATSz16    = 0x16 // WORD, 0 for FAT32 (see bpbFATSz32)
	bpbSecPerTrk  = 0x18 // WORD
	bpbNumHeads   = 0x1A // WORD
	bpbHiddSec    = 0x1C // DWORD
	bpbTotSec32   = 0x20 // DWORD
	bpbFATSz32    = 0x24 // DWORD
	bpbExtFlags32 = 0x28 // WORD
	bpbFSVer32    = 0x2A // WORD
	bpbRootClus32 = 0x2C // DWORD
	bpbFSInfo32   = 0x30 // WORD
	bpbBkBootSec  = 0x32 // WORD
	bsDrvNum32    = 0x40 // BYTE
	bsBootSig32   = 0x42 // BYTE
	bsVolID32     = 0x43 // DWORD
	bsVolLab32    = 0x47 // 11 bytes
	bsFilSysType  = 0x52 // 8 bytes, "FAT32   "
	bsBootCode32  = 0x5A
	bs55AA        = 0x1FE // WORD, 0xAA55

	fsiLeadSig    = 0x000 // DWORD, 0x41615252
	fsiStrucSig   = 0x1E4 // DWORD, 0x61417272
	fsiFreeCount  = 0x1E8 // DWORD
	fsiNxtFree    = 0x1EC // DWORD
	fsiTrailSig   = 0x1FC // DWORD, 0xAA550000

	sigLeadSig  = 0x41615252
	sigStrucSig = 0x61417272
	sigTrailSig = 0xAA550000
)

// Byte offsets into a 32-byte directory entry, shared by both the SFN and
// LFN record layouts (§3 of the spec).
const (
	dirNameOff       = 0x00 // 11 bytes for SFN, sequence byte for LFN.
	dirAttrOff       = 0x0B
	dirNTresOff      = 0x0C
	dirCrtTime10Off  = 0x0D
	dirCrtTimeOff    = 0x0E
	dirCrtDateOff    = 0x10
	dirLstAccDateOff = 0x12
	dirFstClusHIOff  = 0x14
	dirModTimeOff    = 0x16
	dirModDateOff    = 0x18
	dirFstClusLOOff  = 0x1A
	dirFileSizeOff   = 0x1C

	ldirOrdOff        = 0x00
	ldirName1Off      = 0x01 // 5 UTF-16 units
	ldirAttrOff       = 0x0B
	ldirTypeOff       = 0x0C
	ldirChksumOff     = 0x0D
	ldirName2Off      = 0x0E // 6 UTF-16 units
	ldirFstClusLOOff  = 0x1A // always 0
	ldirName3Off      = 0x1C // 2 UTF-16 units
)

// Directory-entry attribute bits, byte 0x0B.
const (
	attrReadOnly  byte = 1 << 0
	attrHidden    byte = 1 << 1
	attrSystem    byte = 1 << 2
	attrVolumeID  byte = 1 << 3
	attrDirectory byte = 1 << 4
	attrArchive   byte = 1 << 5
	attrLongName       = attrReadOnly | attrHidden | attrSystem | attrVolumeID

	// Byte-0 sentinels (not attribute bits).
	nameFree      = 0x00 // End of directory: no further valid entries.
	nameDeleted   = 0xE5 // Deleted entry.
	nameDot       = 0x2E // '.' or '..' dot entry.
	nameEscapedE5 = 0x05
)

// FAT entry sentinels. Only the low 28 bits are meaningful on FAT32.
const (
	fatMask28     uint32 = 0x0FFF_FFFF
	fatFree       uint32 = 0x0000_0000
	fatEOCWrite   uint32 = 0x0FFF_FFFF
	fatEOCLow     uint32 = 0x0FFF_FFF8 // Low end of the accepted EOC range on read.
	fatBadCluster uint32 = 0x0FFF_FFF7
	// fatReserved0 fills FAT[0] at format time: the BPB media byte in the
	// low 8 bits, ones elsewhere, per the Microsoft FAT specification.
	fatReserved0 uint32 = 0x0FFF_FFF8
)

func isEOC(entry uint32) bool {
	e := entry & fatMask28
	return e >= fatEOCLow
}
