// Package helix carries the run-wide statistics and error taxonomy shared
// by the compile and restore pipelines; package pipeline ties the codec
// layers (crypto, rs, trellis, oligo, stability, block, archive) together.
package helix

import (
	"fmt"
	"sync/atomic"
)

// Stats holds atomically-updated run counters for one compile or restore
// invocation. All fields are accessed via atomic operations so a worker
// pool can update them without a shared lock on the hot path.
type Stats struct {
	BlocksEncoded uint64
	BlocksDecoded uint64

	ShardsEncoded uint64
	ShardsDecoded uint64

	StabilityRetries  uint64
	StabilityFailures uint64

	StrandsFed         uint64
	PrimerMismatches   uint64
	AddressFailures    uint64
	AddressViterbi     uint64
	ShardCRCFailures   uint64
	ShardViterbi       uint64
	DuplicatesDropped  uint64
	BlocksEvicted      uint64

	BytesIn  uint64
	BytesOut uint64
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats { return new(Stats) }

// Header returns column headers matching ToSlice's order, for tabular
// reporting by the CLI.
func (s *Stats) Header() []string {
	return []string{
		"BlocksEncoded",
		"BlocksDecoded",
		"ShardsEncoded",
		"ShardsDecoded",
		"StabilityRetries",
		"StabilityFailures",
		"StrandsFed",
		"PrimerMismatches",
		"AddressFailures",
		"AddressViterbi",
		"ShardCRCFailures",
		"ShardViterbi",
		"DuplicatesDropped",
		"BlocksEvicted",
		"BytesIn",
		"BytesOut",
	}
}

// ToSlice renders a thread-safe snapshot as strings, in Header order.
func (s *Stats) ToSlice() []string {
	c := s.Copy()
	return []string{
		fmt.Sprint(c.BlocksEncoded),
		fmt.Sprint(c.BlocksDecoded),
		fmt.Sprint(c.ShardsEncoded),
		fmt.Sprint(c.ShardsDecoded),
		fmt.Sprint(c.StabilityRetries),
		fmt.Sprint(c.StabilityFailures),
		fmt.Sprint(c.StrandsFed),
		fmt.Sprint(c.PrimerMismatches),
		fmt.Sprint(c.AddressFailures),
		fmt.Sprint(c.AddressViterbi),
		fmt.Sprint(c.ShardCRCFailures),
		fmt.Sprint(c.ShardViterbi),
		fmt.Sprint(c.DuplicatesDropped),
		fmt.Sprint(c.BlocksEvicted),
		fmt.Sprint(c.BytesIn),
		fmt.Sprint(c.BytesOut),
	}
}

// Copy takes an atomic snapshot of every counter.
func (s *Stats) Copy() *Stats {
	d := NewStats()
	d.BlocksEncoded = atomic.LoadUint64(&s.BlocksEncoded)
	d.BlocksDecoded = atomic.LoadUint64(&s.BlocksDecoded)
	d.ShardsEncoded = atomic.LoadUint64(&s.ShardsEncoded)
	d.ShardsDecoded = atomic.LoadUint64(&s.ShardsDecoded)
	d.StabilityRetries = atomic.LoadUint64(&s.StabilityRetries)
	d.StabilityFailures = atomic.LoadUint64(&s.StabilityFailures)
	d.StrandsFed = atomic.LoadUint64(&s.StrandsFed)
	d.PrimerMismatches = atomic.LoadUint64(&s.PrimerMismatches)
	d.AddressFailures = atomic.LoadUint64(&s.AddressFailures)
	d.AddressViterbi = atomic.LoadUint64(&s.AddressViterbi)
	d.ShardCRCFailures = atomic.LoadUint64(&s.ShardCRCFailures)
	d.ShardViterbi = atomic.LoadUint64(&s.ShardViterbi)
	d.DuplicatesDropped = atomic.LoadUint64(&s.DuplicatesDropped)
	d.BlocksEvicted = atomic.LoadUint64(&s.BlocksEvicted)
	d.BytesIn = atomic.LoadUint64(&s.BytesIn)
	d.BytesOut = atomic.LoadUint64(&s.BytesOut)
	return d
}

// IncBlocksEncoded, AddShardsEncoded, AddStabilityRetries,
// IncStabilityFailures, IncBlocksDecoded, and AddShardCRCFailures are the
// atomic mutators callers use from worker-pool goroutines; the fields
// themselves must never be written to directly outside Stats' own methods.
func (s *Stats) IncBlocksEncoded()              { atomic.AddUint64(&s.BlocksEncoded, 1) }
func (s *Stats) IncBlocksDecoded()              { atomic.AddUint64(&s.BlocksDecoded, 1) }
func (s *Stats) AddShardsEncoded(n uint64)      { atomic.AddUint64(&s.ShardsEncoded, n) }
func (s *Stats) AddShardsDecoded(n uint64)      { atomic.AddUint64(&s.ShardsDecoded, n) }
func (s *Stats) AddStabilityRetries(n uint64)   { atomic.AddUint64(&s.StabilityRetries, n) }
func (s *Stats) IncStabilityFailures()          { atomic.AddUint64(&s.StabilityFailures, 1) }
func (s *Stats) AddShardCRCFailures(n uint64)   { atomic.AddUint64(&s.ShardCRCFailures, n) }
func (s *Stats) AddBytesIn(n uint64)            { atomic.AddUint64(&s.BytesIn, n) }
func (s *Stats) AddBytesOut(n uint64)           { atomic.AddUint64(&s.BytesOut, n) }

// AddDemuxStats folds an oligo.Demultiplexer's counters into s. It takes
// the raw fields rather than the oligo type itself to avoid an import
// cycle (oligo is a leaf package; helix sits above it).
func (s *Stats) AddDemuxStats(strandsFed, primerMismatches, addressFailures, addressViterbi, shardCRCFailures, shardViterbi, duplicatesDropped, blocksEvicted uint64) {
	atomic.AddUint64(&s.StrandsFed, strandsFed)
	atomic.AddUint64(&s.PrimerMismatches, primerMismatches)
	atomic.AddUint64(&s.AddressFailures, addressFailures)
	atomic.AddUint64(&s.AddressViterbi, addressViterbi)
	atomic.AddUint64(&s.ShardCRCFailures, shardCRCFailures)
	atomic.AddUint64(&s.ShardViterbi, shardViterbi)
	atomic.AddUint64(&s.DuplicatesDropped, duplicatesDropped)
	atomic.AddUint64(&s.BlocksEvicted, blocksEvicted)
}
