package core

// DigestSize is the width of a Digest in bytes.
const DigestSize = 32

// Digest is a fixed-width content identifier. Equality is byte-wise.
type Digest [DigestSize]byte

// IsZero reports whether every byte of d is zero.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Slot holds one key/value pair. Key and Value are meaningless unless Occupied.
type Slot struct {
	Key      Digest
	Value    Digest
	Occupied bool
}

// Entry is an occupied slot together with its position in a table.
type Entry struct {
	Index int
	Key   Digest
	Value Digest
}

// Slot returns the occupied slot described by e.
func (e Entry) Slot() Slot {
	return Slot{Key: e.Key, Value: e.Value, Occupied: true}
}
