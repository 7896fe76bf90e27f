package cidmap

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agenthands/cidmap/pkg/digest"
	"github.com/agenthands/cidmap/pkg/ingest"
	"github.com/agenthands/cidmap/pkg/metrics"
	"github.com/agenthands/cidmap/pkg/snapshot"
	"github.com/agenthands/cidmap/pkg/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type cmap struct {
	id     uuid.UUID
	cfg    Config
	logger *zap.Logger

	digests   digest.Builder
	indexer   ingest.Indexer
	snapshots snapshot.Codec

	mu       sync.RWMutex // Insert mutates count and slots together
	table    *table.Table
	rejected uint64
}

// Open returns an empty map. A nil logger disables logging.
func Open(cfg Config, logger *zap.Logger) (Map, error) {
	m, err := newMap(cfg, logger)
	if err != nil {
		return nil, err
	}
	m.logger.Info("map opened", zap.Int("capacity", table.Capacity))
	return m, nil
}

// Restore rebuilds a map from a snapshot produced by Map.Snapshot.
func Restore(cfg Config, snap []byte, logger *zap.Logger) (Map, error) {
	m, err := newMap(cfg, logger)
	if err != nil {
		return nil, err
	}

	t, err := m.snapshots.Decode(snap)
	if err != nil {
		m.logger.Error("snapshot rejected", zap.Error(err))
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	m.table = t

	m.logger.Info("map restored", zap.Int("entries", t.Len()))
	return m, nil
}

func newMap(cfg Config, logger *zap.Logger) (*cmap, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	logger = logger.With(zap.String("map_id", id.String()))

	codec, err := snapshot.NewCodec(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot codec: %w", err)
	}

	return &cmap{
		id:        id,
		cfg:       cfg,
		logger:    logger,
		digests:   digest.NewBuilder(),
		indexer:   ingest.NewIndexer(cfg.Ingest, cfg.Limits, logger.Named("ingest")),
		snapshots: codec,
		table:     table.New(),
	}, nil
}

func (m *cmap) ID() uuid.UUID {
	return m.id
}

func (m *cmap) Put(key, value Digest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.table.Insert(key, value) {
		m.rejected++
		m.logger.Warn("table full, claim rejected",
			zap.String("key", digest.String(key)),
			zap.Uint64("rejected", m.rejected),
		)
		return fmt.Errorf("%w: %s", ErrTableFull, digest.String(key))
	}

	m.logger.Debug("claim stored",
		zap.String("key", digest.String(key)),
		zap.String("value", digest.String(value)),
		zap.Int("len", m.table.Len()),
	)
	return nil
}

func (m *cmap) PutContent(key, value []byte) (Claim, error) {
	if limit := m.cfg.Limits.MaxContentBytes; limit > 0 && (len(key) > limit || len(value) > limit) {
		return Claim{}, fmt.Errorf("%w: content exceeds %d bytes", ErrTooLarge, limit)
	}

	c := Claim{
		Key:   m.digests.FromContent(key),
		Value: m.digests.FromContent(value),
	}
	if err := m.Put(c.Key, c.Value); err != nil {
		return Claim{}, err
	}
	return c, nil
}

func (m *cmap) Get(key Digest) (Digest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.table.Get(key)
	if !ok {
		return Digest{}, ErrNotFound
	}
	return v, nil
}

func (m *cmap) Contains(key Digest) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Contains(key)
}

func (m *cmap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Len()
}

func (m *cmap) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.IsEmpty()
}

func (m *cmap) Coherence() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return metrics.Coherence(m.table)
}

func (m *cmap) TruthDensity() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return metrics.TruthDensity(m.table)
}

func (m *cmap) IsTruth(key, value Digest) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return metrics.IsTruth(m.table, key, value)
}

// Verify reports whether the claim key -> value, given as content, is stored.
func (m *cmap) Verify(key, value []byte) bool {
	return m.IsTruth(m.digests.FromContent(key), m.digests.FromContent(value))
}

// Ingest reads r without holding the lock and applies its claims atomically.
func (m *cmap) Ingest(ctx context.Context, name []byte, r io.Reader) (IngestResult, error) {
	b, err := m.indexer.Scan(ctx, name, r)
	if err != nil {
		return IngestResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := b.Apply(m.table)
	if err != nil {
		m.logger.Warn("ingest rejected",
			zap.String("object", digest.String(b.Result().Object)),
			zap.Int("claims", b.Claims()),
			zap.Int("free", m.table.Free()),
			zap.Error(err),
		)
		return IngestResult{}, err
	}

	m.logger.Debug("object ingested",
		zap.String("object", digest.String(res.Object)),
		zap.Uint64("bytes", res.Bytes),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func (m *cmap) Snapshot() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, err := m.snapshots.Encode(m.table)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return b, nil
}

func (m *cmap) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.table.Entries()
}

func (m *cmap) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		ID:           m.id,
		Len:          m.table.Len(),
		Capacity:     m.table.Capacity(),
		Coherence:    metrics.Coherence(m.table),
		TruthDensity: metrics.TruthDensity(m.table),
		Rejected:     m.rejected,
	}
}
