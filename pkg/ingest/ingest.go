// Package ingest turns a byte stream into claims in a table. The stream is
// split into content-defined chunks; each distinct chunk digest, and the
// digest of the object's name, is mapped to the digest of the whole object.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/agenthands/cidmap/pkg/digest"
	"github.com/agenthands/cidmap/pkg/table"
	"go.uber.org/zap"
)

// Result describes one indexed object.
type Result struct {
	Name     core.Digest
	Object   core.Digest
	Bytes    uint64
	Chunks   int // chunks produced, including repeats
	Distinct int // distinct chunk digests
	Inserted int // claims that took a new slot
	Updated  int // claims that replaced an existing value
}

// Indexer records the claims for a stream in a table.
type Indexer interface {
	// Scan reads r to the end and prepares its claims without touching any table.
	Scan(ctx context.Context, name []byte, r io.Reader) (*Batch, error)
	// Index is Scan followed by Apply.
	Index(ctx context.Context, t *table.Table, name []byte, r io.Reader) (Result, error)
}

// Batch holds the claims of one scanned object.
type Batch struct {
	res    Result
	claims []core.Digest // name first, then distinct chunks
}

type indexer struct {
	chunker Chunker
	limits  core.LimitsConfig
	logger  *zap.Logger
}

// NewIndexer returns an Indexer. A nil logger disables logging.
func NewIndexer(cfg core.IngestConfig, limits core.LimitsConfig, logger *zap.Logger) Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &indexer{
		chunker: NewChunker(cfg),
		limits:  limits,
		logger:  logger,
	}
}

func (x *indexer) Index(ctx context.Context, t *table.Table, name []byte, r io.Reader) (Result, error) {
	b, err := x.Scan(ctx, name, r)
	if err != nil {
		return Result{}, err
	}
	res, err := b.Apply(t)
	if err != nil {
		return Result{}, err
	}

	x.logger.Debug("indexed object",
		zap.Uint64("bytes", res.Bytes),
		zap.Int("chunks", res.Chunks),
		zap.Int("distinct", res.Distinct),
		zap.Int("inserted", res.Inserted),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func (x *indexer) Scan(ctx context.Context, name []byte, r io.Reader) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stops the producer if we return before draining it.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := Result{Name: digest.FromContent(name)}
	object := digest.NewHasher()
	seen := make(map[core.Digest]struct{})
	var keys []core.Digest

	chunks, errs := x.chunker.Split(ctx, r)

	for c := range chunks {
		data := c.Buf[:c.N]
		res.Chunks++
		res.Bytes += uint64(c.N)

		if x.limits.MaxObjectBytes > 0 && res.Bytes > x.limits.MaxObjectBytes {
			x.chunker.ReturnBuffer(c.Buf)
			return nil, fmt.Errorf("%w: object exceeds %d bytes", core.ErrTooLarge, x.limits.MaxObjectBytes)
		}
		if x.limits.MaxChunksPerObject > 0 && uint32(res.Chunks) > x.limits.MaxChunksPerObject {
			x.chunker.ReturnBuffer(c.Buf)
			return nil, fmt.Errorf("%w: object exceeds %d chunks", core.ErrTooLarge, x.limits.MaxChunksPerObject)
		}

		object.Write(data)
		key := digest.FromContent(data)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}

		x.chunker.ReturnBuffer(c.Buf)
	}

	if err, ok := <-errs; ok && err != nil {
		return nil, err
	}

	res.Object = object.Sum()
	res.Distinct = len(keys)

	// A chunk that digests like the name shares the name's claim.
	claims := make([]core.Digest, 0, len(keys)+1)
	claims = append(claims, res.Name)
	for _, k := range keys {
		if k != res.Name {
			claims = append(claims, k)
		}
	}

	return &Batch{res: res, claims: claims}, nil
}

// Result returns the scan summary; Inserted and Updated are zero until Apply.
func (b *Batch) Result() Result {
	return b.res
}

// Claims returns the number of distinct keys the batch will write.
func (b *Batch) Claims() int {
	return len(b.claims)
}

// Apply maps every claim key to the object digest. If t lacks a free slot for
// each key it does not already hold, Apply returns ErrTableFull and leaves t
// unchanged.
func (b *Batch) Apply(t *table.Table) (Result, error) {
	var fresh int
	for _, k := range b.claims {
		if !t.Contains(k) {
			fresh++
		}
	}
	if fresh > t.Free() {
		return Result{}, fmt.Errorf("%w: need %d slots, %d free", core.ErrTableFull, fresh, t.Free())
	}

	res := b.res
	for _, k := range b.claims {
		existed := t.Contains(k)
		if !t.Insert(k, res.Object) {
			// Unreachable after the free-slot check above.
			return res, fmt.Errorf("%w: insert rejected", core.ErrTableFull)
		}
		if existed {
			res.Updated++
		} else {
			res.Inserted++
		}
	}
	return res, nil
}
