// Package oligo implements the address codec, primer framing/fuzzy
// matching, and the streaming demultiplexer that reassembles a shard pool
// from an unordered strand set.
package oligo

import (
	"encoding/binary"

	"helix/trellis"
)

// AddressBases is the fixed trit/base width of the address field, wide
// enough to encode block_id*shardWidth+shard_index for any archive this
// implementation will produce (spec.md §9(c): "widen the address to
// whatever base-3 length is needed"). 40 trits cover ordinals below 3^40
// (about 1.2e19), which is short of the full uint64 range (about 1.8e19):
// an ordinal at or above 3^40 encodes to more than AddressBases bases.
const AddressBases = 40

// EncodeAddress maps (blockID, shardIndex) to a fixed-width trellis
// sequence seeded from initial. shardWidth is N+K for the archive.
func EncodeAddress(initial trellis.Base, blockID uint64, shardIndex, shardWidth int) trellis.Sequence {
	ordinal := blockID*uint64(shardWidth) + uint64(shardIndex)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], ordinal)
	trits := trellis.BytesToTrits(buf[:], AddressBases)
	return trellis.Encode(initial, trits)
}

// DecodeAddress tries the strict path first, then Viterbi repair, mirroring
// the per-shard decode contract in spec.md §4.3 but applied to the address
// region. It returns the raw ordinal (blockID*shardWidth+shardIndex); the
// caller divides by shardWidth to split it back into (blockID, shardIndex).
func DecodeAddress(initial trellis.Base, bases trellis.Sequence) (ordinal uint64, viterbiUsed bool, ok bool) {
	if trits, ok := trellis.StrictDecode(initial, bases); ok {
		return decodeOrdinal(trits), false, true
	}
	corrected := trellis.ViterbiDecode(initial, bases)
	trits, ok := trellis.StrictDecode(initial, corrected)
	if !ok {
		return 0, true, false
	}
	return decodeOrdinal(trits), true, true
}

func decodeOrdinal(trits []trellis.Trit) uint64 {
	buf := trellis.TritsToBytes(trits, 8)
	return binary.BigEndian.Uint64(buf)
}

// SplitOrdinal divides an address ordinal back into (blockID, shardIndex)
// given the archive's shardWidth (N+K).
func SplitOrdinal(ordinal uint64, shardWidth int) (blockID uint64, shardIndex int) {
	w := uint64(shardWidth)
	return ordinal / w, int(ordinal % w)
}

// AddressSeed derives the deterministic initial state for a shard's
// address region. It depends only on the forward primer's last base (not
// on blockID, shardIndex, ciphertext or randomness), so a decoder can
// compute the same seed before it has decoded the address, and the
// primer->address->payload boundary forms one continuous no-homopolymer
// trellis run.
func AddressSeed(primerLastBase trellis.Base) trellis.Base {
	return primerLastBase
}

// PayloadSeed returns the base that seeds a shard payload's trellis: the
// last base of that shard's encoded address region, continuing the same
// no-homopolymer run (spec.md §4.5).
func PayloadSeed(addressBases trellis.Sequence) trellis.Base {
	if len(addressBases) == 0 {
		return trellis.BaseA
	}
	return addressBases[len(addressBases)-1]
}
