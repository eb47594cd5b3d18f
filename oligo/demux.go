package oligo

import (
	"helix/trellis"
)

// blockAccumulator collects verified shard payloads for one block as
// strands stream past. It generalizes the teacher's fecDecoder.shardSet
// (a map of per-group heaps keyed by sequence window) into a map keyed
// directly by shard index, since the address field replaces sequence
// order as the grouping token (spec.md §4.5: "shard order ... must not be
// relied upon by the decoder").
type blockAccumulator struct {
	shards map[int][]byte
	touch  uint64 // monotonically increasing touch counter, for LRU eviction
}

// DemuxParams configures a Demultiplexer for one archive.
type DemuxParams struct {
	FwdPrimer     trellis.Sequence
	RevPrimer     trellis.Sequence
	Tau           int
	ShardWidth    int // N+K
	DataShards    int // N
	PayloadBases  int
	ShardByteLen  int // 4 (CRC) + per-shard payload byte length
	MaxOpenBlocks int // bound on concurrently-accumulating blocks
}

// Stats are the demultiplexer's running counters, merged into the overall
// run's helix.Stats by the caller.
type Stats struct {
	StrandsFed        uint64
	PrimerMismatches  uint64
	AddressFailures   uint64
	AddressViterbi    uint64
	ShardCRCFailures  uint64
	ShardViterbi      uint64
	ShardsAccepted    uint64
	DuplicatesDropped uint64
	BlocksEvicted     uint64
}

// Demultiplexer is the streaming fuzzy primer demultiplexer: it processes
// one strand at a time, strips primers, decodes the address, decodes the
// payload, and groups the result by (block_id, shard_index), resolving
// duplicates by first-CRC-pass.
type Demultiplexer struct {
	params DemuxParams
	blocks map[uint64]*blockAccumulator
	clock  uint64
	Stats  Stats
}

// NewDemultiplexer constructs a demultiplexer for one archive's framing.
func NewDemultiplexer(params DemuxParams) *Demultiplexer {
	if params.Tau <= 0 {
		params.Tau = DefaultTau
	}
	if params.MaxOpenBlocks <= 0 {
		params.MaxOpenBlocks = 64
	}
	return &Demultiplexer{
		params: params,
		blocks: make(map[uint64]*blockAccumulator),
	}
}

// Feed ingests one raw strand. It returns the block_id the strand
// contributed to and whether it decoded to a CRC-valid shard (false covers
// every rejection: primer mismatch, address failure, or CRC-failed
// payload). A duplicate of a shard index the block already holds is
// reported as accepted but is not stored; it is counted in
// DuplicatesDropped.
func (d *Demultiplexer) Feed(strand trellis.Sequence) (blockID uint64, accepted bool) {
	d.Stats.StrandsFed++

	fwdEnd, ok := MatchPrefix(strand, d.params.FwdPrimer, d.params.Tau)
	if !ok {
		d.Stats.PrimerMismatches++
		return 0, false
	}
	revStart, ok := MatchSuffix(strand, d.params.RevPrimer, d.params.Tau)
	if !ok || revStart < fwdEnd {
		d.Stats.PrimerMismatches++
		return 0, false
	}

	addrEnd := fwdEnd + AddressBases
	if addrEnd > revStart {
		d.Stats.AddressFailures++
		return 0, false
	}
	addrRegion := strand[fwdEnd:addrEnd]

	addrInitial := AddressSeed(d.params.FwdPrimer[len(d.params.FwdPrimer)-1])
	ordinal, viterbiUsed, ok := DecodeAddress(addrInitial, addrRegion)
	if !ok {
		d.Stats.AddressFailures++
		return 0, false
	}
	if viterbiUsed {
		d.Stats.AddressViterbi++
	}
	blockID, shardIndex := SplitOrdinal(ordinal, d.params.ShardWidth)

	payloadEnd := addrEnd + d.params.PayloadBases
	if payloadEnd > revStart {
		d.Stats.AddressFailures++
		return blockID, false
	}
	payloadRegion := strand[addrEnd:payloadEnd]
	payloadInitial := PayloadSeed(addrRegion)

	payload, shardViterbi, crcOK := DecodeShardPayload(payloadInitial, payloadRegion, d.params.ShardByteLen)
	if shardViterbi {
		d.Stats.ShardViterbi++
	}
	if !crcOK {
		d.Stats.ShardCRCFailures++
		return blockID, false
	}

	d.accept(blockID, shardIndex, payload)
	d.Stats.ShardsAccepted++
	return blockID, true
}

func (d *Demultiplexer) accept(blockID uint64, shardIndex int, payload []byte) {
	d.clock++
	acc, ok := d.blocks[blockID]
	if !ok {
		if len(d.blocks) >= d.params.MaxOpenBlocks {
			d.evictOldest()
		}
		acc = &blockAccumulator{shards: make(map[int][]byte)}
		d.blocks[blockID] = acc
	}
	acc.touch = d.clock
	if _, dup := acc.shards[shardIndex]; dup {
		d.Stats.DuplicatesDropped++
		return // first CRC-passing instance wins
	}
	acc.shards[shardIndex] = payload
}

func (d *Demultiplexer) evictOldest() {
	var oldestID uint64
	var oldestTouch uint64 = ^uint64(0)
	first := true
	for id, acc := range d.blocks {
		if first || acc.touch < oldestTouch {
			oldestID, oldestTouch, first = id, acc.touch, false
		}
	}
	if !first {
		delete(d.blocks, oldestID)
		d.Stats.BlocksEvicted++
	}
}

// Ready reports block ids that have accumulated at least DataShards
// distinct shard indices, the "early success" condition in spec.md §4.5
// under which the caller may attempt Reed-Solomon reconstruction without
// waiting for the strand stream to end.
func (d *Demultiplexer) Ready() []uint64 {
	var out []uint64
	for id, acc := range d.blocks {
		if len(acc.shards) >= d.params.DataShards {
			out = append(out, id)
		}
	}
	return out
}

// Shards returns the currently accumulated shard map for a block. The
// caller must not mutate the returned map.
func (d *Demultiplexer) Shards(blockID uint64) map[int][]byte {
	acc, ok := d.blocks[blockID]
	if !ok {
		return nil
	}
	return acc.shards
}

// Forget drops a block's accumulator once the caller has finished with it
// (successfully reconstructed, or given up at end of stream).
func (d *Demultiplexer) Forget(blockID uint64) {
	delete(d.blocks, blockID)
}

// OpenBlocks returns every block id still being accumulated, for the
// final-attempt sweep once the strand stream is exhausted.
func (d *Demultiplexer) OpenBlocks() []uint64 {
	out := make([]uint64, 0, len(d.blocks))
	for id := range d.blocks {
		out = append(out, id)
	}
	return out
}
