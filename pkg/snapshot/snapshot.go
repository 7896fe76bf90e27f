// Package snapshot encodes a table into a self-checking byte envelope so it
// can be handed to another owner and rebuilt there. It performs no I/O.
package snapshot

import (
	"fmt"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/agenthands/cidmap/pkg/table"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// EntryV1 is one occupied slot.
type EntryV1 struct {
	Index uint16 `cbor:"index"`
	Key   []byte `cbor:"key"`
	Value []byte `cbor:"value"`
}

// SnapshotV1 is the CBOR body of an envelope.
type SnapshotV1 struct {
	Version  uint16    `cbor:"version"`
	Capacity uint16    `cbor:"capacity"`
	Count    uint16    `cbor:"count"`
	Entries  []EntryV1 `cbor:"entries"`
}

// A full table body is a few KiB; anything that inflates past this is hostile.
const maxBodyBytes = 1 << 20

// Codec converts tables to and from envelopes.
type Codec interface {
	Encode(t *table.Table) ([]byte, error)
	Decode(b []byte) (*table.Table, error)
}

type codec struct {
	cfg     core.SnapshotConfig
	encMode cbor.EncMode
	decMode cbor.DecMode
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec returns a Codec. Envelopes are compressed when cfg.Compress is
// set; Decode accepts both forms regardless.
func NewCodec(cfg core.SnapshotConfig) (Codec, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create cbor encoder: %w", err)
	}
	dm, err := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create cbor decoder: %w", err)
	}

	c := &codec{cfg: cfg, encMode: em, decMode: dm}

	if cfg.Compress {
		c.encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevel(cfg.ZstdLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
	}
	c.decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}

	return c, nil
}

func (c *codec) Encode(t *table.Table) ([]byte, error) {
	snap := SnapshotV1{
		Version:  1,
		Capacity: uint16(t.Capacity()),
		Count:    uint16(t.Len()),
		Entries:  make([]EntryV1, 0, t.Len()),
	}
	t.Range(func(e core.Entry) bool {
		snap.Entries = append(snap.Entries, EntryV1{
			Index: uint16(e.Index),
			Key:   append([]byte(nil), e.Key[:]...),
			Value: append([]byte(nil), e.Value[:]...),
		})
		return true
	})

	body, err := c.encMode.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.seal(body), nil
}

func (c *codec) Decode(b []byte) (*table.Table, error) {
	body, err := c.open(b)
	if err != nil {
		return nil, err
	}

	var snap SnapshotV1
	if err := c.decMode.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal snapshot: %v", core.ErrCorrupt, err)
	}

	entries, err := validate(&snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorrupt, err)
	}

	return table.FromEntries(entries)
}

func validate(s *SnapshotV1) ([]core.Entry, error) {
	if s.Version != 1 {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if int(s.Capacity) != table.Capacity {
		return nil, fmt.Errorf("capacity mismatch: snapshot has %d, table has %d", s.Capacity, table.Capacity)
	}
	if int(s.Count) != len(s.Entries) {
		return nil, fmt.Errorf("count mismatch: header says %d, %d entries present", s.Count, len(s.Entries))
	}

	entries := make([]core.Entry, len(s.Entries))
	for i, e := range s.Entries {
		if len(e.Key) != core.DigestSize || len(e.Value) != core.DigestSize {
			return nil, fmt.Errorf("entry %d has key/value length %d/%d", i, len(e.Key), len(e.Value))
		}
		entries[i].Index = int(e.Index)
		copy(entries[i].Key[:], e.Key)
		copy(entries[i].Value[:], e.Value)
	}
	return entries, nil
}
