package digest

import (
	"fmt"

	"github.com/agenthands/cidmap/pkg/core"
)

// Builder defines the interface for creating and verifying digests.
type Builder interface {
	FromContent(content []byte) core.Digest
	FromValue(v any) (core.Digest, error)
	Verify(d core.Digest, content []byte) error
}

type builder struct{}

// NewBuilder returns a new digest builder implementation.
func NewBuilder() Builder {
	return &builder{}
}

func (b *builder) FromContent(content []byte) core.Digest {
	return FromContent(content)
}

func (b *builder) FromValue(v any) (core.Digest, error) {
	return FromValue(v)
}

// Verify only proves that content folds to d. It says nothing about whether
// other content folds to d as well.
func (b *builder) Verify(d core.Digest, content []byte) error {
	if FromContent(content) != d {
		return fmt.Errorf("%w: digest mismatch", core.ErrCorrupt)
	}
	return nil
}
