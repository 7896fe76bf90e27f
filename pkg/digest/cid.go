package digest

import (
	"fmt"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CID returns d as a CIDv1 with the raw codec and an identity multihash. The
// digest bytes are carried verbatim; no hashing is applied.
func CID(d core.Digest) cid.Cid {
	mh, err := multihash.Encode(d[:], multihash.IDENTITY)
	if err != nil {
		// identity accepts any input length; an error here is a library bug.
		panic(fmt.Sprintf("identity multihash failed: %v", err))
	}
	return cid.NewCidV1(cid.Raw, multihash.Multihash(mh))
}

// String returns the base32 text form of d.
func String(d core.Digest) string {
	return CID(d).String()
}

// Parse reverses String.
func Parse(s string) (core.Digest, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return core.Digest{}, fmt.Errorf("%w: invalid CID: %v", core.ErrInvalidInput, err)
	}
	return FromCID(c)
}

// FromCID extracts the digest carried by c.
func FromCID(c cid.Cid) (core.Digest, error) {
	prefix := c.Prefix()
	if prefix.Codec != cid.Raw {
		return core.Digest{}, fmt.Errorf("%w: unexpected codec 0x%x", core.ErrInvalidInput, prefix.Codec)
	}

	dm, err := multihash.Decode(c.Hash())
	if err != nil {
		return core.Digest{}, fmt.Errorf("%w: invalid multihash: %v", core.ErrInvalidInput, err)
	}
	if dm.Code != multihash.IDENTITY {
		return core.Digest{}, fmt.Errorf("%w: unexpected multihash code 0x%x", core.ErrInvalidInput, dm.Code)
	}
	if len(dm.Digest) != core.DigestSize {
		return core.Digest{}, fmt.Errorf("%w: digest length %d, want %d", core.ErrInvalidInput, len(dm.Digest), core.DigestSize)
	}

	var d core.Digest
	copy(d[:], dm.Digest)
	return d, nil
}
