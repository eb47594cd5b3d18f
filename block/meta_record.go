package block

import (
	"helix/rs"
	"helix/trellis"

	"github.com/pkg/errors"
)

// metaSeed is the fixed trellis seed for the archive metadata record. This
// record is never searched for with the fuzzy primer matcher: a reader
// would need primer_fwd to find it, but primer_fwd is itself one of the
// fields the record carries, so it is located purely by file position (the
// first record after the magic line, per spec.md §6) and decoded from a
// fixed, password-independent seed rather than an address-derived one.
const metaSeed = trellis.BaseA

// ErrMetaRecordCorrupt is returned when the archive's metadata record
// fails both strict and Viterbi decoding.
var ErrMetaRecordCorrupt = errors.New("block: archive metadata record failed CRC after Viterbi repair")

// EncodeMetaRecord serializes m and trellis-encodes it as a single,
// unencrypted, non-erasure-coded oligo payload. It carries its own CRC32
// but is not Reed-Solomon split: losing this one record loses the archive
// regardless, so there is nothing for erasure coding to protect.
func EncodeMetaRecord(m Meta) (trellis.Sequence, error) {
	plain, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	framed := rs.PrependCRC(plain)
	n := trellis.TritsNeeded(len(framed))
	trits := trellis.BytesToTrits(framed, n)
	return trellis.Encode(metaSeed, trits), nil
}

// DecodeMetaRecord inverts EncodeMetaRecord, falling back to Viterbi repair
// on a CRC mismatch the same way a data shard does.
func DecodeMetaRecord(bases trellis.Sequence, byteLen int) (Meta, error) {
	if trits, ok := trellis.StrictDecode(metaSeed, bases); ok {
		framed := trellis.TritsToBytes(trits, byteLen)
		if payload, ok := rs.VerifyCRC(framed); ok {
			return UnmarshalMeta(payload)
		}
	}

	corrected := trellis.ViterbiDecode(metaSeed, bases)
	trits, ok := trellis.StrictDecode(metaSeed, corrected)
	if !ok {
		return Meta{}, ErrMetaRecordCorrupt
	}
	framed := trellis.TritsToBytes(trits, byteLen)
	payload, ok := rs.VerifyCRC(framed)
	if !ok {
		return Meta{}, ErrMetaRecordCorrupt
	}
	return UnmarshalMeta(payload)
}
