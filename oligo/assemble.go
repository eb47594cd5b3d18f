package oligo

import (
	"helix/trellis"

	"github.com/pkg/errors"
)

// Oligo is the fully assembled wire sequence for a single shard:
// FwdPrimer ‖ Address ‖ Payload ‖ RevPrimer, in that fixed order.
type Oligo struct {
	FwdPrimer trellis.Sequence
	Address   trellis.Sequence
	Payload   trellis.Sequence
	RevPrimer trellis.Sequence
}

// ErrBoundaryHomopolymer is returned by Assemble when the trellis-encoded
// region ends on the same base the literal reverse primer begins with,
// which would otherwise produce a homopolymer run that the trellis itself
// cannot see or prevent (the no-homopolymer invariant applies to the whole
// oligo, not just its trellis-coded interior). The caller treats this the
// same as any other stability-gate failure and rotates the block salt.
var ErrBoundaryHomopolymer = errors.New("oligo: payload/reverse-primer boundary forms a homopolymer")

// Sequence concatenates the four regions into the final wire sequence.
func (o Oligo) Sequence() trellis.Sequence {
	out := make(trellis.Sequence, 0, len(o.FwdPrimer)+len(o.Address)+len(o.Payload)+len(o.RevPrimer))
	out = append(out, o.FwdPrimer...)
	out = append(out, o.Address...)
	out = append(out, o.Payload...)
	out = append(out, o.RevPrimer...)
	return out
}

func (o Oligo) String() string { return o.Sequence().String() }

// Assemble builds the oligo for one shard. shardBytes is the CRC32-prefixed
// shard payload (rs.PrependCRC output); payloadBases is the archive's fixed
// per-shard base budget.
func Assemble(fwdPrimer, revPrimer trellis.Sequence, blockID uint64, shardIndex, shardWidth int, shardBytes []byte, payloadBases int) (Oligo, error) {
	if len(fwdPrimer) == 0 {
		return Oligo{}, errors.New("oligo: forward primer must be non-empty")
	}

	addrInitial := AddressSeed(fwdPrimer[len(fwdPrimer)-1])
	addr := EncodeAddress(addrInitial, blockID, shardIndex, shardWidth)

	payloadInitial := PayloadSeed(addr)
	trits := trellis.BytesToTrits(shardBytes, payloadBases)
	payload := trellis.Encode(payloadInitial, trits)

	if len(payload) > 0 && len(revPrimer) > 0 && payload[len(payload)-1] == revPrimer[0] {
		return Oligo{}, ErrBoundaryHomopolymer
	}

	return Oligo{FwdPrimer: fwdPrimer, Address: addr, Payload: payload, RevPrimer: revPrimer}, nil
}
