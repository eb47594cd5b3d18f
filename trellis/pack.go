package trellis

import (
	"math"
	"math/big"
)

// Trit is a base-3 digit in {0,1,2}, the symbol consumed by one trellis
// transition.
type Trit uint8

var three = big.NewInt(3)

// TritsNeeded returns a trit count that can losslessly hold any value
// representable in byteLen bytes: the smallest n with 3^n > 256^byteLen,
// plus one trit of slack. Archive configuration sizes every shard's trellis
// payload budget from this so BytesToTrits never has to truncate a
// significant digit.
func TritsNeeded(byteLen int) int {
	if byteLen <= 0 {
		return 0
	}
	bits := float64(byteLen) * 8
	n := int(math.Ceil(bits * math.Log(2) / math.Log(3)))
	return n + 1 // one trit of slack against floating-point rounding
}

// BytesToTrits implements the archived "v1-bigint-base3" packing: payload
// is read as one big-endian unsigned integer and repeatedly divided by 3 to
// emit trits least-significant-first, then padded with neutral (zero)
// trits up to n. This is an unbiased, rejection-free packing: every byte
// pattern maps to exactly one trit sequence of length n, invertible by
// TritsToBytes. n must be large enough to hold len(payload) bytes'
// worth of base-3 digits; callers size n from the archive's fixed
// per-shard base budget.
func BytesToTrits(payload []byte, n int) []Trit {
	v := new(big.Int).SetBytes(payload)
	mod := new(big.Int)
	trits := make([]Trit, 0, n)
	for v.Sign() > 0 {
		v.DivMod(v, three, mod)
		trits = append(trits, Trit(mod.Int64()))
	}
	for len(trits) < n {
		trits = append(trits, 0)
	}
	// n is a lower bound, not a hard cap: truncating here would silently
	// drop significant digits if a caller under-sized n. TritsNeeded
	// always sizes n correctly, so this only ever pads in practice.
	return trits
}

// TritsToBytes inverts BytesToTrits into a fixed-width big-endian buffer of
// byteLen bytes. Trailing (high-order) zero trits left over from padding do
// not change the reconstructed integer, so the caller need not know how
// many trits were "real" versus padding.
func TritsToBytes(trits []Trit, byteLen int) []byte {
	v := new(big.Int)
	for i := len(trits) - 1; i >= 0; i-- {
		v.Mul(v, three)
		v.Add(v, big.NewInt(int64(trits[i])))
	}
	out := make([]byte, byteLen)
	v.FillBytes(out)
	return out
}

// Encode runs the trellis forward: next = (current + t + 1) mod 4. Because
// the offset is always in [1,3], no two consecutive bases are ever equal
// (spec invariant 1), independent of the trit values.
func Encode(initial Base, trits []Trit) Sequence {
	bases := make(Sequence, len(trits))
	cur := initial
	for i, t := range trits {
		cur = Base((int(cur) + int(t) + 1) % 4)
		bases[i] = cur
	}
	return bases
}

// StrictDecode inverts Encode under the assumption that bases is exactly
// the encoder's output (no transmission errors): it recovers ok=false the
// moment it finds an illegal (homopolymer) transition, signalling that the
// caller must fall back to Viterbi repair.
func StrictDecode(initial Base, bases Sequence) (trits []Trit, ok bool) {
	trits = make([]Trit, len(bases))
	cur := initial
	for i, b := range bases {
		if b == cur {
			return nil, false
		}
		offset := (int(b) - int(cur) - 1 + 12) % 4
		trits[i] = Trit(offset)
		cur = b
	}
	return trits, true
}
