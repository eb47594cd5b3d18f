// Package pipeline wires the codec layers (compress, crypto, rs, trellis,
// oligo, stability, block, archive) into the two top-level operations,
// Encode and Decode, including the concurrency and backpressure model
// described in spec.md §5.
package pipeline

import (
	"runtime"

	"helix/block"
	"helix/crypto"
	"helix/rs"
	"helix/stability"
	"helix/trellis"

	"github.com/pkg/errors"
)

// DefaultBlockSize is the plaintext bytes per block before compression.
// spec.md's overview states 4 MiB while its architecture notes say 32 MiB
// (Open Question b); since block size is an archive-header field rather
// than a compile-time constant, any choice here is only ever a default a
// caller can override with --block-size, so this follows the overview's
// figure.
const DefaultBlockSize = 4 << 20 // 4 MiB

// DefaultMaxInflightBytes bounds the reader's lookahead past the worker
// pool, the max_inflight_bytes knob from spec.md §5.
const DefaultMaxInflightBytes = 80 << 20 // ~80 MiB

// Config holds every knob needed to encode or decode one archive. Encode
// uses all of it; Decode uses only Workers and reads DataShards,
// ParityShards, BlockSize, the primers, and the KDF parameters from the
// archive's own magic line and metadata record, so they need not match
// the values Encode was given.
type Config struct {
	DataShards   int
	ParityShards int
	BlockSize    int

	FwdPrimer trellis.Sequence
	RevPrimer trellis.Sequence

	KDFParams crypto.KDFParams
	Stability stability.Params

	MaxInflightBytes int64
	Workers          int
}

// DefaultFwdPrimer and DefaultRevPrimer are used when a caller (e.g. the
// CLI with no --primer-fwd/--primer-rev override) does not supply its own.
// Both cycle through all four bases with no adjacent repeats, so neither is
// itself a homopolymer run.
var (
	DefaultFwdPrimer = mustSeq("ACGTACGTACGTACGTACGT")
	DefaultRevPrimer = mustSeq("TGCATGCATGCATGCATGCA")
)

func mustSeq(s string) trellis.Sequence {
	seq, err := trellis.ParseSequence(s)
	if err != nil {
		panic(err)
	}
	return seq
}

// DefaultConfig returns a Config populated with every documented default:
// N=10, K=5 (spec.md §8 scenario 1), 4 MiB blocks, the package default
// primers, default KDF cost, and default stability parameters.
func DefaultConfig() Config {
	return Config{
		DataShards:       10,
		ParityShards:     5,
		BlockSize:        DefaultBlockSize,
		FwdPrimer:        DefaultFwdPrimer,
		RevPrimer:        DefaultRevPrimer,
		KDFParams:        crypto.DefaultKDFParams,
		Stability:        stability.DefaultParams,
		MaxInflightBytes: DefaultMaxInflightBytes,
		Workers:          runtime.NumCPU(),
	}
}

func (c Config) shardWidth() int { return c.DataShards + c.ParityShards }

func (c Config) rsConfig() rs.Config {
	return rs.Config{DataShards: c.DataShards, ParityShards: c.ParityShards}
}

func (c Config) validate() error {
	if c.DataShards <= 0 || c.ParityShards <= 0 {
		return errors.New("pipeline: data and parity shard counts must be positive")
	}
	if c.BlockSize <= 0 {
		return errors.New("pipeline: block size must be positive")
	}
	if len(c.FwdPrimer) == 0 || len(c.RevPrimer) == 0 {
		return errors.New("pipeline: forward and reverse primers must be non-empty")
	}
	if c.FwdPrimer.HasHomopolymer() || c.RevPrimer.HasHomopolymer() {
		return errors.New("pipeline: primers must themselves be homopolymer-free")
	}
	return nil
}

// shardBudget is the fixed per-shard trellis payload width (in trits/bases)
// for an archive's configuration: the largest CRC-framed shard the RS split
// can produce, with enough budget to encode it exactly.
func shardBudget(blockSize, dataShards int) int {
	shardLen := (blockSize + headerOverhead + dataShards - 1) / dataShards
	crcFramedLen := shardLen + 4
	return trellis.TritsNeeded(crcFramedLen)
}

// headerOverhead is the worst-case bytes added to a block's compressed
// plaintext before RS splitting: the fixed framing header plus the AEAD tag.
const headerOverhead = block.HeaderLen + crypto.TagSize
