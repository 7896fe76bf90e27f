package table

import (
	"testing"

	"github.com/agenthands/cidmap/internal/testkit"
	"github.com/agenthands/cidmap/pkg/core"
	"github.com/agenthands/cidmap/pkg/digest"
)

func BenchmarkTable(b *testing.B) {
	contents := testkit.DecimalContents(Capacity)
	keys := make([]core.Digest, len(contents))
	for i, c := range contents {
		keys[i] = digest.FromContent(c)
	}

	b.Run("FillFull", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var tbl Table
			for _, k := range keys {
				tbl.Insert(k, k)
			}
		}
	})

	b.Run("GetFull", func(b *testing.B) {
		tbl := New()
		for _, k := range keys {
			tbl.Insert(k, k)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = tbl.Get(keys[i%len(keys)])
		}
	})
}
