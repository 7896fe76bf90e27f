package ingest

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/agenthands/cidmap/internal/testkit"
	"github.com/agenthands/cidmap/pkg/core"
)

func defaultIngest() core.IngestConfig {
	return core.Config{}.WithDefaults().Ingest
}

func TestFastCDCChunker(t *testing.T) {
	cfg := defaultIngest()
	c := NewChunker(cfg)

	t.Run("BasicSplit", func(t *testing.T) {
		data := testkit.RandomBytes(testkit.RNG(42), 256*1024)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		chunks, errCh := c.Split(ctx, bytes.NewReader(data))

		var reassembled []byte
		var count int
		for chunk := range chunks {
			if chunk.N > cfg.Max {
				t.Errorf("chunk too large: %d > %d", chunk.N, cfg.Max)
			}
			if chunk.N < cfg.Min && len(reassembled)+chunk.N != len(data) {
				t.Errorf("chunk too small: %d < %d", chunk.N, cfg.Min)
			}
			reassembled = append(reassembled, chunk.Buf[:chunk.N]...)
			c.ReturnBuffer(chunk.Buf)
			count++
		}

		if err := <-errCh; err != nil && err != io.EOF {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(data, reassembled) {
			t.Error("reassembled data does not match original")
		}
		if count < 16 {
			t.Errorf("expected multiple chunks, got %d", count)
		}
	})

	t.Run("Cancellation", func(t *testing.T) {
		data := testkit.RandomBytes(testkit.RNG(42), 1024*1024)

		ctx, cancel := context.WithCancel(context.Background())
		chunks, errCh := c.Split(ctx, bytes.NewReader(data))

		if _, ok := <-chunks; !ok {
			t.Fatal("expected at least one chunk")
		}
		cancel()

		for range chunks {
		}

		if err := <-errCh; err != nil && err != context.Canceled {
			t.Errorf("unexpected error after cancel: %v", err)
		}
	})

	t.Run("EmptyInput", func(t *testing.T) {
		chunks, errCh := c.Split(context.Background(), bytes.NewReader(nil))
		for range chunks {
			t.Error("expected no chunks for empty input")
		}
		if err := <-errCh; err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
