// Package utf16x converts between UTF-8 and the UTF-16LE code units used
// by VFAT long filename directory entries.
//
// Only the Basic Multilingual Plane is supported: surrogate pairs are
// rejected rather than decoded/encoded. This mirrors the filesystem's
// Non-goal of supporting characters outside the BMP (§1, §4.2, §9) — a
// name requiring a surrogate pair is not representable and callers get an
// explicit error instead of a silently mangled fragment.
package utf16x

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

const (
	surr1 = 0xd800
	surr2 = 0xdc00
	surr3 = 0xe000
)

var (
	errMultiple2   = errors.New("utf16x: length must be multiple of 2")
	errShortDst    = errors.New("utf16x: short destination buffer")
	errInvalidUTF8 = errors.New("utf16x: invalid utf8 sequence")
	errSurrogate   = errors.New("utf16x: non-BMP character requires surrogate pair, unsupported")
)

// ToUTF8 decodes BMP UTF-16 code units from srcUTF16 into dstUTF8, returning
// the number of UTF-8 bytes written.
func ToUTF8(dstUTF8, srcUTF16 []byte, order16 binary.ByteOrder) (int, error) {
	if len(srcUTF16)%2 != 0 {
		return 0, errMultiple2
	}
	n := 0
	for len(srcUTF16) > 1 {
		r, err := DecodeRune(srcUTF16, order16)
		if err != nil {
			return n, err
		}
		if utf8.RuneLen(r) > len(dstUTF8[n:]) {
			return n, errShortDst
		}
		srcUTF16 = srcUTF16[2:]
		n += utf8.EncodeRune(dstUTF8[n:], r)
	}
	return n, nil
}

// FromUTF8 encodes src8 as BMP UTF-16 code units into dst16, returning the
// number of bytes (always a multiple of 2) written. A rune outside the BMP
// yields errSurrogate.
func FromUTF8(dst16, src8 []byte, order16 binary.ByteOrder) (int, error) {
	n := 0
	for len(src8) > 0 {
		if len(dst16[n:]) < 2 {
			return n, errShortDst
		}
		r, size := utf8.DecodeRune(src8)
		if r == utf8.RuneError && size == 1 {
			return n, errInvalidUTF8
		}
		written, err := EncodeRune(dst16[n:], r, order16)
		if err != nil {
			return n, err
		}
		n += written
		src8 = src8[size:]
	}
	return n, nil
}

// EncodeRune writes v as a single UTF-16 code unit. Runes outside the BMP
// return errSurrogate instead of emitting a surrogate pair.
func EncodeRune(dst16 []byte, v rune, order16 binary.ByteOrder) (int, error) {
	if v < 0 || (v >= surr1 && v < surr3) {
		return 0, errSurrogate
	}
	if v > 0xFFFF {
		return 0, errSurrogate
	}
	_ = dst16[1]
	order16.PutUint16(dst16, uint16(v))
	return 2, nil
}

// DecodeRune reads a single UTF-16 code unit from srcUTF16. A surrogate
// code unit returns errSurrogate rather than attempting to pair it.
func DecodeRune(srcUTF16 []byte, order16 binary.ByteOrder) (rune, error) {
	_ = srcUTF16[1]
	r := rune(order16.Uint16(srcUTF16))
	if r >= surr1 && r < surr3 {
		return 0, errSurrogate
	}
	return r, nil
}
