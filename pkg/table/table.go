// Package table implements a fixed-capacity key/value table addressed by
// content digests.
//
// Collisions are resolved by open addressing with linear probing. There is no
// delete: Get stops at the first empty slot on the probe path, which is only
// sound while slots never become empty again. Adding removal requires
// tombstones and new termination rules for both Insert and Get.
//
// A Table is not safe for concurrent use. Readers may share it only while no
// Insert is running.
package table

import (
	"github.com/agenthands/cidmap/pkg/core"
)

// Capacity is the fixed number of slots in every Table.
const Capacity = 64

// Table is a fixed array of slots plus the number of occupied ones. The zero
// value is an empty table ready for use.
type Table struct {
	slots [Capacity]core.Slot
	count int
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// IndexOf returns the home slot for key: a base-31 polynomial over the first
// eight digest bytes, reduced modulo Capacity. Insert and Get both start here.
func IndexOf(key core.Digest) int {
	var index uint64
	for _, b := range key[:8] {
		index = index*31 + uint64(b)
	}
	return int(index % Capacity)
}

// Insert stores value under key. An existing key has its value replaced and
// the count is unchanged. Insert returns false only when every slot holds a
// different key; without deletion that condition is permanent for new keys.
func (t *Table) Insert(key, value core.Digest) bool {
	start := IndexOf(key)
	for i := 0; i < Capacity; i++ {
		slot := &t.slots[(start+i)%Capacity]

		if !slot.Occupied {
			slot.Key = key
			slot.Value = value
			slot.Occupied = true
			t.count++
			return true
		}
		if slot.Key == key {
			slot.Value = value
			return true
		}
	}
	return false
}

// Get returns the value stored under key.
func (t *Table) Get(key core.Digest) (core.Digest, bool) {
	start := IndexOf(key)
	for i := 0; i < Capacity; i++ {
		slot := &t.slots[(start+i)%Capacity]

		if !slot.Occupied {
			return core.Digest{}, false
		}
		if slot.Key == key {
			return slot.Value, true
		}
	}
	return core.Digest{}, false
}

func (t *Table) Contains(key core.Digest) bool {
	_, ok := t.Get(key)
	return ok
}

func (t *Table) Len() int      { return t.count }
func (t *Table) IsEmpty() bool { return t.count == 0 }
func (t *Table) Capacity() int { return Capacity }

// Free returns the number of unoccupied slots.
func (t *Table) Free() int { return Capacity - t.count }

// Range calls fn for each occupied slot in slot order until fn returns false.
func (t *Table) Range(fn func(e core.Entry) bool) {
	for i := range t.slots {
		s := &t.slots[i]
		if !s.Occupied {
			continue
		}
		if !fn(core.Entry{Index: i, Key: s.Key, Value: s.Value}) {
			return
		}
	}
}

// Entries returns the occupied slots in slot order.
func (t *Table) Entries() []core.Entry {
	out := make([]core.Entry, 0, t.count)
	t.Range(func(e core.Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Slot returns a copy of the slot at index i.
func (t *Table) Slot(i int) core.Slot {
	return t.slots[i]
}
