package snapshot

import (
	"errors"
	"testing"

	"github.com/agenthands/cidmap/internal/testkit"
	"github.com/agenthands/cidmap/pkg/core"
	"github.com/agenthands/cidmap/pkg/digest"
	"github.com/agenthands/cidmap/pkg/metrics"
	"github.com/agenthands/cidmap/pkg/table"
)

func newCodec(t *testing.T, compress bool) *codec {
	t.Helper()
	cfg := core.Config{Snapshot: core.SnapshotConfig{Compress: compress}}.WithDefaults()
	c, err := NewCodec(cfg.Snapshot)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	return c.(*codec)
}

func filledTable(n int) *table.Table {
	tbl := table.New()
	for _, c := range testkit.DecimalContents(n) {
		tbl.Insert(digest.FromContent(c), digest.FromContent(append([]byte("v"), c...)))
	}
	return tbl
}

func TestSnapshotRoundtrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "Plain"
		if compress {
			name = "Zstd"
		}
		t.Run(name, func(t *testing.T) {
			c := newCodec(t, compress)

			for _, n := range []int{0, 1, 40, table.Capacity} {
				src := filledTable(n)

				b, err := c.Encode(src)
				if err != nil {
					t.Fatalf("Encode failed: %v", err)
				}
				if compress != (b[5]&FlagCompressed != 0) {
					t.Errorf("compressed flag = %v, want %v", b[5]&FlagCompressed != 0, compress)
				}

				dst, err := c.Decode(b)
				if err != nil {
					t.Fatalf("Decode failed (n=%d): %v", n, err)
				}
				if *dst != *src {
					t.Errorf("restored table differs (n=%d)", n)
				}
				if metrics.Coherence(dst) != metrics.Coherence(src) ||
					metrics.TruthDensity(dst) != metrics.TruthDensity(src) {
					t.Errorf("metrics changed across snapshot (n=%d)", n)
				}
			}
		})
	}

	t.Run("Deterministic", func(t *testing.T) {
		c := newCodec(t, false)
		a, _ := c.Encode(filledTable(20))
		b, _ := c.Encode(filledTable(20))
		if string(a) != string(b) {
			t.Error("equal tables should produce identical snapshots")
		}
	})

	t.Run("CrossMode", func(t *testing.T) {
		b, err := newCodec(t, true).Encode(filledTable(10))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := newCodec(t, false).Decode(b); err != nil {
			t.Errorf("plain codec should decode compressed snapshots: %v", err)
		}
	})
}

func TestSnapshotCorruption(t *testing.T) {
	c := newCodec(t, false)
	zc := newCodec(t, true)
	good, err := c.Encode(filledTable(10))
	if err != nil {
		t.Fatal(err)
	}
	zgood, err := zc.Encode(filledTable(10))
	if err != nil {
		t.Fatal(err)
	}

	mutate := func(b []byte, fn func([]byte)) []byte {
		out := append([]byte(nil), b...)
		fn(out)
		return out
	}

	cases := map[string][]byte{
		"Empty":          nil,
		"Truncated":      good[:headerSize-1],
		"BadMagic":       mutate(good, func(b []byte) { b[0] = 'X' }),
		"BadVersion":     mutate(good, func(b []byte) { b[4] = 9 }),
		"UnknownFlags":   mutate(good, func(b []byte) { b[5] |= 0x80 }),
		"AlgOnPlain":     mutate(good, func(b []byte) { b[6] = AlgZstd }),
		"UnknownAlg":     mutate(zgood, func(b []byte) { b[6] = 7 }),
		"BadChecksum":    mutate(good, func(b []byte) { b[7] ^= 0x01 }),
		"FlippedBody":    testkit.CorruptByte(good, headerSize+3),
		"FlippedZstd":    testkit.CorruptByte(zgood, len(zgood)-1),
		"MissingPayload": good[:headerSize],
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Decode(b); !errors.Is(err, core.ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestSnapshotInvalidBody(t *testing.T) {
	c := newCodec(t, false)
	key := digest.FromContent([]byte("consciousness"))
	value := digest.FromContent([]byte("awakening"))
	home := uint16(table.IndexOf(key))

	entry := func(idx uint16) EntryV1 {
		return EntryV1{Index: idx, Key: key[:], Value: value[:]}
	}

	cases := map[string]SnapshotV1{
		"Version":      {Version: 2, Capacity: table.Capacity, Count: 1, Entries: []EntryV1{entry(home)}},
		"Capacity":     {Version: 1, Capacity: 128, Count: 1, Entries: []EntryV1{entry(home)}},
		"Count":        {Version: 1, Capacity: table.Capacity, Count: 2, Entries: []EntryV1{entry(home)}},
		"ShortKey":     {Version: 1, Capacity: table.Capacity, Count: 1, Entries: []EntryV1{{Index: home, Key: key[:8], Value: value[:]}}},
		"IndexRange":   {Version: 1, Capacity: table.Capacity, Count: 1, Entries: []EntryV1{entry(table.Capacity)}},
		"Unreachable":  {Version: 1, Capacity: table.Capacity, Count: 1, Entries: []EntryV1{entry((home + 1) % table.Capacity)}},
		"DuplicateKey": {Version: 1, Capacity: table.Capacity, Count: 2, Entries: []EntryV1{entry(home), entry((home + 1) % table.Capacity)}},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			body, err := c.encMode.Marshal(&snap)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := c.Decode(c.seal(body)); !errors.Is(err, core.ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
		})
	}

	t.Run("NotCBOR", func(t *testing.T) {
		if _, err := c.Decode(c.seal([]byte{0xff, 0x00, 0x13})); !errors.Is(err, core.ErrCorrupt) {
			t.Errorf("expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		snap := SnapshotV1{Version: 1, Capacity: table.Capacity, Count: 1, Entries: []EntryV1{entry(home)}}
		body, _ := c.encMode.Marshal(&snap)
		tbl, err := c.Decode(c.seal(body))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if !metrics.IsTruth(tbl, key, value) {
			t.Error("hand-built snapshot lost its claim")
		}
	})
}
