// Package compress wraps klauspost/compress/zstd as the archive's one
// supported compressor, archived in the header by name so a future
// implementation could add another without breaking old archives.
package compress

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Name is the value recorded in block.Meta.Compression.
const Name = "zstd"

// Compress returns the zstd-compressed form of plaintext at the default
// compression level. Compression is a non-goal to tune per spec.md; the
// default level trades ratio for speed uniformly across block sizes.
func Compress(plaintext []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd: new encoder")
	}
	defer enc.Close()
	return enc.EncodeAll(plaintext, make([]byte, 0, len(plaintext))), nil
}

// Decompress inverts Compress, validating against the original byte length
// recorded in the block header.
func Decompress(compressed []byte, origLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd: new decoder")
	}
	defer dec.Close()
	out, err := dec.DecodeAll(compressed, make([]byte, 0, origLen))
	if err != nil {
		return nil, errors.Wrap(err, "zstd: decode")
	}
	if len(out) != origLen {
		return nil, errors.Errorf("zstd: decoded %d bytes, header declares %d", len(out), origLen)
	}
	return out, nil
}
