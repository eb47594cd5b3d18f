// Package rs implements the Reed-Solomon erasure layer and the per-shard
// CRC32 framing that sits underneath it. Missing or CRC-failed shards are
// treated as erasures, never as errors: the erasure layer tolerates far
// more loss than an error-correcting use of the same code, which is why
// every shard is CRC-gated before it is ever handed to Reconstruct.
package rs

import (
	"hash/crc32"

	"github.com/klauspost/reedsolomon"
	"github.com/pkg/errors"
)

// ErrInsufficientShards is returned when fewer than DataShards shards
// survive CRC verification for a block.
var ErrInsufficientShards = errors.New("rs: insufficient surviving shards")

// Role distinguishes systematic data shards from the appended parity
// shards produced during encoding.
type Role int

const (
	RoleData Role = iota
	RoleParity
)

// Shard is one of the N+K erasure-coded units for a block. Bytes is the
// shard payload with its CRC32 already prepended (4 bytes, big-endian),
// matching the wire layout that the trellis codec encodes as a unit.
type Shard struct {
	BlockID uint64
	Index   int
	Role    Role
	Bytes   []byte
}

// CRC32 computes the IEEE CRC32 of payload, the checksum that is prepended
// to each shard before trellis encoding (spec: "prepended before encoding").
func CRC32(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// PrependCRC returns payload prefixed with its big-endian CRC32.
func PrependCRC(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	putUint32(out, CRC32(payload))
	copy(out[4:], payload)
	return out
}

// VerifyCRC reports whether shardBytes (CRC-prefixed) is internally
// consistent, and returns the payload with the checksum stripped off.
func VerifyCRC(shardBytes []byte) (payload []byte, ok bool) {
	if len(shardBytes) < 4 {
		return nil, false
	}
	want := getUint32(shardBytes)
	payload = shardBytes[4:]
	return payload, CRC32(payload) == want
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Config is the archive-wide Reed-Solomon shape.
type Config struct {
	DataShards   int
	ParityShards int
}

// Codec wraps a klauspost/reedsolomon encoder sized for Config.
type Codec struct {
	cfg Config
	enc reedsolomon.Encoder
}

// NewCodec constructs the GF(2^8) encoder for the given shape.
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.DataShards <= 0 || cfg.ParityShards <= 0 {
		return nil, errors.New("rs: data and parity shard counts must be positive")
	}
	enc, err := reedsolomon.New(cfg.DataShards, cfg.ParityShards)
	if err != nil {
		return nil, errors.Wrap(err, "reedsolomon: new encoder")
	}
	return &Codec{cfg: cfg, enc: enc}, nil
}

// Total is N+K.
func (c *Codec) Total() int { return c.cfg.DataShards + c.cfg.ParityShards }
