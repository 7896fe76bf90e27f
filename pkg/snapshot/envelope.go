package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/agenthands/cidmap/pkg/core"
	"github.com/cespare/xxhash/v2"
)

const (
	Magic   = "CMAP"
	Version = 1
)

const (
	FlagCompressed = 1 << 0
)

const (
	AlgNone = 0
	AlgZstd = 1
)

// magic, version, flags, alg, xxhash64 of the CBOR body
const headerSize = len(Magic) + 3 + 8

func (c *codec) seal(body []byte) []byte {
	var flags, alg byte
	payload := body
	if c.encoder != nil {
		flags |= FlagCompressed
		alg = AlgZstd
		payload = c.encoder.EncodeAll(body, nil)
	}

	envelope := make([]byte, 0, headerSize+len(payload))
	envelope = append(envelope, Magic...)
	envelope = append(envelope, Version, flags, alg)
	envelope = binary.BigEndian.AppendUint64(envelope, xxhash.Sum64(body))
	envelope = append(envelope, payload...)
	return envelope
}

func (c *codec) open(stored []byte) ([]byte, error) {
	if len(stored) < headerSize {
		return nil, fmt.Errorf("%w: snapshot too small for envelope", core.ErrCorrupt)
	}
	if string(stored[:4]) != Magic {
		return nil, fmt.Errorf("%w: invalid magic", core.ErrCorrupt)
	}
	if stored[4] != Version {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", core.ErrCorrupt, stored[4])
	}

	flags := stored[5]
	alg := stored[6]
	sum := binary.BigEndian.Uint64(stored[7:headerSize])
	payload := stored[headerSize:]

	if flags&^FlagCompressed != 0 {
		return nil, fmt.Errorf("%w: unknown flags 0x%02x", core.ErrCorrupt, flags)
	}

	body := payload
	if flags&FlagCompressed != 0 {
		if alg != AlgZstd {
			return nil, fmt.Errorf("%w: unsupported compression algorithm %d", core.ErrCorrupt, alg)
		}
		var err error
		body, err = c.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decompress snapshot: %v", core.ErrCorrupt, err)
		}
	} else if alg != AlgNone {
		return nil, fmt.Errorf("%w: algorithm %d set on uncompressed snapshot", core.ErrCorrupt, alg)
	}

	if xxhash.Sum64(body) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", core.ErrCorrupt)
	}
	return body, nil
}
