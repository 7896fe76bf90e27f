package table

import (
	"fmt"

	"github.com/agenthands/cidmap/pkg/core"
)

// FromEntries rebuilds a table with each entry at its recorded index. The
// result must be one Insert could have produced: indexes in range and unique,
// keys unique, and every key reachable from its home slot without crossing an
// empty slot.
func FromEntries(entries []core.Entry) (*Table, error) {
	if len(entries) > Capacity {
		return nil, fmt.Errorf("%w: %d entries exceed capacity %d", core.ErrCorrupt, len(entries), Capacity)
	}

	t := New()
	keys := make(map[core.Digest]int, len(entries))

	for _, e := range entries {
		if e.Index < 0 || e.Index >= Capacity {
			return nil, fmt.Errorf("%w: slot index %d out of range", core.ErrCorrupt, e.Index)
		}
		if t.slots[e.Index].Occupied {
			return nil, fmt.Errorf("%w: slot %d listed twice", core.ErrCorrupt, e.Index)
		}
		if prev, ok := keys[e.Key]; ok {
			return nil, fmt.Errorf("%w: key in slots %d and %d", core.ErrCorrupt, prev, e.Index)
		}
		keys[e.Key] = e.Index
		t.slots[e.Index] = e.Slot()
		t.count++
	}

	for _, e := range entries {
		for i := IndexOf(e.Key); i != e.Index; i = (i + 1) % Capacity {
			if !t.slots[i].Occupied {
				return nil, fmt.Errorf("%w: slot %d unreachable, gap at %d", core.ErrCorrupt, e.Index, i)
			}
		}
	}

	return t, nil
}
