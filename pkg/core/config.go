package core

import (
	"fmt"
)

type Config struct {
	Ingest   IngestConfig
	Snapshot SnapshotConfig
	Limits   LimitsConfig
}

type IngestConfig struct {
	Min int
	Avg int
	Max int
}

type SnapshotConfig struct {
	Compress  bool
	ZstdLevel int
}

type LimitsConfig struct {
	MaxObjectBytes     uint64
	MaxChunksPerObject uint32
	MaxContentBytes    int
}

const (
	DefaultChunkMin  = 1024
	DefaultChunkAvg  = 4096
	DefaultChunkMax  = 16384
	DefaultZstdLevel = 3
)

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Ingest.Min == 0 {
		c.Ingest.Min = DefaultChunkMin
	}
	if c.Ingest.Avg == 0 {
		c.Ingest.Avg = DefaultChunkAvg
	}
	if c.Ingest.Max == 0 {
		c.Ingest.Max = DefaultChunkMax
	}
	if c.Snapshot.Compress && c.Snapshot.ZstdLevel == 0 {
		c.Snapshot.ZstdLevel = DefaultZstdLevel
	}
	return c
}

// Validate checks that c is internally consistent.
func (c Config) Validate() error {
	in := c.Ingest
	// FastCDC refuses blocks smaller than 64 bytes.
	if in.Min < 64 {
		return fmt.Errorf("%w: ingest min chunk size %d < 64", ErrInvalidInput, in.Min)
	}
	if in.Min >= in.Avg || in.Avg >= in.Max {
		return fmt.Errorf("%w: ingest chunk sizes must satisfy min < avg < max (%d, %d, %d)",
			ErrInvalidInput, in.Min, in.Avg, in.Max)
	}
	if c.Snapshot.Compress && (c.Snapshot.ZstdLevel < 1 || c.Snapshot.ZstdLevel > 4) {
		return fmt.Errorf("%w: zstd level %d out of range [1, 4]", ErrInvalidInput, c.Snapshot.ZstdLevel)
	}
	if c.Limits.MaxContentBytes < 0 {
		return fmt.Errorf("%w: negative content limit", ErrInvalidInput)
	}
	return nil
}
