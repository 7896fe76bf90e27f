package cidmap

import (
	"context"
	"io"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/agenthands/cidmap/pkg/ingest"
	"github.com/google/uuid"
)

type Digest = core.Digest
type Entry = core.Entry
type IngestResult = ingest.Result

// Claim is a key/value pair derived from content.
type Claim struct {
	Key   Digest
	Value Digest
}

// Stats summarises a map at one instant.
type Stats struct {
	ID           uuid.UUID
	Len          int
	Capacity     int
	Coherence    float64
	TruthDensity float64
	Rejected     uint64 // Put calls refused because the table was full
}

// Map is a fixed-capacity content-addressed table that is safe for concurrent
// use: writers are exclusive, readers share.
type Map interface {
	ID() uuid.UUID

	Put(key, value Digest) error
	PutContent(key, value []byte) (Claim, error)
	Get(key Digest) (Digest, error)
	Contains(key Digest) bool

	Len() int
	IsEmpty() bool

	Coherence() float64
	TruthDensity() float64
	IsTruth(key, value Digest) bool
	Verify(key, value []byte) bool

	Ingest(ctx context.Context, name []byte, r io.Reader) (IngestResult, error)
	Snapshot() ([]byte, error)
	Entries() []Entry
	Stats() Stats
}
