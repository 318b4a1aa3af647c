// Package bcd converts between decimal values and the packed binary-coded
// decimal bytes used by real-time clock registers: tens digit in the high
// nibble, ones digit in the low nibble.
//
// Decode keeps only three bits of the tens nibble, which is the width of the
// seconds and minutes registers. Values whose tens digit is 8 or 9 therefore
// do not survive an Encode/Decode round trip; use DecodeMask with the
// register's real tens width when that matters.
package bcd

// TensMask is the tens-nibble mask applied by Decode.
const TensMask = 0x07

// Encode packs v into a BCD byte. There is no range check: values of 100 and
// above are truncated by the shift into the byte.
func Encode(v int) byte {
	return byte((v/10)<<4 | v%10)
}

// Decode unpacks a BCD byte, keeping three bits of the tens nibble.
func Decode(b byte) int {
	return DecodeMask(b, TensMask)
}

// DecodeMask unpacks a BCD byte, keeping the tens-nibble bits set in tensMask.
func DecodeMask(b, tensMask byte) int {
	tens := (b >> 4) & tensMask
	ones := b & 0x0F
	return int(tens)*10 + int(ones)
}

// Digits returns the two ASCII decimal digits of v modulo 100.
func Digits(v int) (tens, ones byte) {
	if v < 0 {
		v = -v
	}
	return '0' + byte(v/10%10), '0' + byte(v%10)
}
