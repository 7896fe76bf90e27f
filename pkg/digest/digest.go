// Package digest builds content identifiers for the table.
//
// The mixing function is a weak, non-cryptographic fold. It is deterministic
// and total, and nothing more: two different inputs may share a digest.
package digest

import (
	"github.com/agenthands/cidmap/pkg/core"
)

const (
	seed       = 0x1337
	multiplier = 1664525
	increment  = 1013904223
)

// FromBytes wraps raw digest bytes without hashing them.
func FromBytes(raw [core.DigestSize]byte) core.Digest {
	return core.Digest(raw)
}

// FromContent derives a digest from arbitrary content. The empty input maps to
// the zero digest.
func FromContent(content []byte) core.Digest {
	h := NewHasher()
	h.Write(content)
	return h.Sum()
}

// Hasher is the streaming form of FromContent. Writing a sequence of slices
// yields the same digest as FromContent over their concatenation.
type Hasher struct {
	state uint64
	pos   uint64
	sum   core.Digest
}

// NewHasher returns a Hasher in its initial state.
func NewHasher() *Hasher {
	return &Hasher{state: seed}
}

// Write folds p into the running digest. It never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	for _, b := range p {
		h.state = h.state*multiplier + increment
		h.state ^= uint64(b) << ((h.pos % 8) * 8)
		h.sum[h.pos%core.DigestSize] ^= fold8(h.state)
		h.pos++
	}
	return len(p), nil
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() core.Digest {
	return h.sum
}

// Len returns the number of bytes written since the last Reset.
func (h *Hasher) Len() uint64 {
	return h.pos
}

// Reset restores the initial state.
func (h *Hasher) Reset() {
	*h = Hasher{state: seed}
}

// fold8 XORs the eight bytes of x together so every bit of the state,
// including the byte just mixed in, reaches the output.
func fold8(x uint64) byte {
	x ^= x >> 32
	x ^= x >> 16
	x ^= x >> 8
	return byte(x)
}
