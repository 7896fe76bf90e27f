package testkit

import (
	"strconv"
)

// DecimalContents returns the decimal strings "0" through strconv.Itoa(n-1) as
// byte slices. Their digests are pairwise distinct for n <= 65.
func DecimalContents(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = []byte(strconv.Itoa(i))
	}
	return out
}

// CorruptByte returns a copy of payload with the byte at offset flipped.
// Offsets past the end are clamped to the last byte.
func CorruptByte(payload []byte, offset int) []byte {
	out := make([]byte, len(payload))
	copy(out, payload)
	if len(out) == 0 {
		return out
	}
	if offset >= len(out) {
		offset = len(out) - 1
	}
	out[offset] ^= 0xFF
	return out
}
