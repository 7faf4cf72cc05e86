package fat32

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// OEMName and VolumeLabel are stored as single-byte code-page text, not
// strict 7-bit ASCII (the FAT spec permits the IBM PC OEM character set in
// both fields). CodePage437 is the code page FAT32 media were historically
// formatted under, and decoding through it rather than treating the bytes
// as raw ASCII avoids mangling the handful of extended-ASCII box-drawing
// and accented characters legacy tools stamp into these fields.
var oemCodec = charmap.CodePage437

// OEMName decodes the volume's 8-byte OEM name field (§4.1), trimming
// trailing spaces.
func (v *Volume) OEMName() string {
	return decodeCP437(v.g.oemName[:])
}

// VolumeLabel decodes the volume's 11-byte label field, trimming trailing
// spaces.
func (v *Volume) VolumeLabel() string {
	return decodeCP437(v.g.volumeLabel[:])
}

func decodeCP437(raw []byte) string {
	decoded, err := oemCodec.NewDecoder().Bytes(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimRight(string(decoded), " ")
}
