package ingest

import (
	"context"
	"io"
	"sync"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/jotfs/fastcdc-go"
)

// Chunk is one content-defined slice of an ingested stream.
type Chunk struct {
	Buf []byte // pooled; hand back with ReturnBuffer
	N   int
}

// Chunker splits a stream into content-defined chunks.
type Chunker interface {
	Split(ctx context.Context, r io.Reader) (<-chan Chunk, <-chan error)
	ReturnBuffer(buf []byte)
}

type fastCDCChunker struct {
	cfg  core.IngestConfig
	pool sync.Pool
}

// NewChunker returns a FastCDC chunker. cfg must already be validated.
func NewChunker(cfg core.IngestConfig) Chunker {
	return &fastCDCChunker{
		cfg: cfg,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, cfg.Max)
			},
		},
	}
}

// Split streams chunks until r is exhausted, r fails, or ctx is done. Both
// channels are closed when the producer exits; at most one error is sent.
func (c *fastCDCChunker) Split(ctx context.Context, r io.Reader) (<-chan Chunk, <-chan error) {
	chunks := make(chan Chunk, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		cdc, err := fastcdc.NewChunker(r, fastcdc.Options{
			MinSize:     c.cfg.Min,
			AverageSize: c.cfg.Avg,
			MaxSize:     c.cfg.Max,
		})
		if err != nil {
			errs <- err
			return
		}

		for {
			if err := ctx.Err(); err != nil {
				errs <- err
				return
			}

			chunk, err := cdc.Next()
			if err != nil {
				if err != io.EOF {
					errs <- err
				}
				return
			}

			// chunk.Data is only valid until the next call to Next.
			buf := c.pool.Get().([]byte)
			n := copy(buf, chunk.Data)

			select {
			case <-ctx.Done():
				c.pool.Put(buf)
				errs <- ctx.Err()
				return
			case chunks <- Chunk{Buf: buf, N: n}:
			}
		}
	}()

	return chunks, errs
}

func (c *fastCDCChunker) ReturnBuffer(buf []byte) {
	c.pool.Put(buf)
}
