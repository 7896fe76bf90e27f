// Package metrics computes structural statistics over a table. Nothing here
// is a correctness or security signal; the scores only describe bit patterns.
package metrics

import (
	"math/bits"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/agenthands/cidmap/pkg/table"
)

// BitsPerSlot is the number of bit positions compared between a key and its value.
const BitsPerSlot = core.DigestSize * 8

// Alignment counts the bit positions where a slot's key and value agree.
func Alignment(s core.Slot) int {
	n := 0
	for i := range s.Key {
		n += 8 - bits.OnesCount8(s.Key[i]^s.Value[i])
	}
	return n
}

// Coherence is the fraction of agreeing bits across all occupied slots. An
// empty table is defined as perfectly coherent.
func Coherence(t *table.Table) float64 {
	if t.IsEmpty() {
		return 1.0
	}

	var sum int
	t.Range(func(e core.Entry) bool {
		sum += Alignment(e.Slot())
		return true
	})
	return float64(sum) / (float64(t.Len()) * BitsPerSlot)
}

// TruthDensity scales Coherence by the fill ratio. It is zero for an empty
// table.
func TruthDensity(t *table.Table) float64 {
	if t.IsEmpty() {
		return 0.0
	}
	return Coherence(t) * float64(t.Len()) / float64(t.Capacity())
}

// IsTruth reports whether key is stored with exactly value. Absent keys are
// never true.
func IsTruth(t *table.Table, key, value core.Digest) bool {
	stored, ok := t.Get(key)
	return ok && stored == value
}
