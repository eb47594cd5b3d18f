package oligo

import (
	"helix/rs"
	"helix/trellis"
)

// DecodeShardPayload implements the per-shard decode contract of
// spec.md §4.3: try the strict (error-free) path first, fall back to
// Viterbi repair on CRC or homopolymer failure, and report erasure
// (crcOK=false) only if both fail. shardByteLen is the CRC32-prefixed
// shard length in bytes (4 + the archive's per-shard payload length).
func DecodeShardPayload(initial trellis.Base, bases trellis.Sequence, shardByteLen int) (payload []byte, viterbiUsed, crcOK bool) {
	if trits, ok := trellis.StrictDecode(initial, bases); ok {
		data := trellis.TritsToBytes(trits, shardByteLen)
		if p, ok := rs.VerifyCRC(data); ok {
			return p, false, true
		}
	}

	corrected := trellis.ViterbiDecode(initial, bases)
	trits, ok := trellis.StrictDecode(initial, corrected)
	if !ok {
		// Not reached in practice: Viterbi output never repeats a base and
		// never starts on initial, so StrictDecode accepts it (an empty
		// bases decodes to an empty, accepted trit slice).
		return nil, true, false
	}
	data := trellis.TritsToBytes(trits, shardByteLen)
	p, ok := rs.VerifyCRC(data)
	return p, true, ok
}
