package digest

import (
	"fmt"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/fxamacker/cbor/v2"
)

// Use canonical CBOR encoding (Core Deterministic Encoding Requirements) so
// equal values always produce equal bytes.
var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to build canonical cbor mode: %v", err))
	}
	return em
}

// FromValue derives a digest from the canonical CBOR encoding of v. Map key
// order does not affect the result.
func FromValue(v any) (core.Digest, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return core.Digest{}, fmt.Errorf("%w: failed to encode value: %v", core.ErrInvalidInput, err)
	}
	return FromContent(b), nil
}
