package oligo

import "helix/trellis"

// DefaultTau is the Hamming-distance tolerance used by the fuzzy primer
// matcher (spec.md §4.5).
const DefaultTau = 3

// DriftWindow bounds how far the matcher slides the primer window to
// absorb small indel-free drift at a strand's prefix/suffix.
const DriftWindow = 4

// HammingDistance counts mismatched positions between equal-length
// sequences; mismatched lengths are treated as maximally distant.
func HammingDistance(a, b trellis.Sequence) int {
	if len(a) != len(b) {
		return len(a) + len(b)
	}
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// MatchPrefix searches strand's prefix for primer within Hamming distance
// tau, sliding up to DriftWindow positions. It returns the offset right
// after the matched primer and true on success.
func MatchPrefix(strand, primer trellis.Sequence, tau int) (end int, ok bool) {
	plen := len(primer)
	bestOffset, bestDist := -1, tau+1
	for off := 0; off <= DriftWindow && off+plen <= len(strand); off++ {
		d := HammingDistance(strand[off:off+plen], primer)
		if d <= tau && d < bestDist {
			bestOffset, bestDist = off, d
		}
	}
	if bestOffset < 0 {
		return 0, false
	}
	return bestOffset + plen, true
}

// MatchSuffix searches strand's suffix for primer within Hamming distance
// tau, sliding up to DriftWindow positions. It returns the offset of the
// first base of the matched primer and true on success.
func MatchSuffix(strand, primer trellis.Sequence, tau int) (start int, ok bool) {
	plen := len(primer)
	bestStart, bestDist := -1, tau+1
	for off := 0; off <= DriftWindow; off++ {
		start := len(strand) - plen - off
		if start < 0 {
			break
		}
		d := HammingDistance(strand[start:start+plen], primer)
		if d <= tau && d < bestDist {
			bestStart, bestDist = start, d
		}
	}
	if bestStart < 0 {
		return 0, false
	}
	return bestStart, true
}

// ReverseComplement returns the reverse complement of seq, used both to
// build the reverse primer's binding partner and to scan payloads for
// accidental primer collisions on either strand.
func ReverseComplement(seq trellis.Sequence) trellis.Sequence {
	out := make(trellis.Sequence, len(seq))
	for i, b := range seq {
		out[len(seq)-1-i] = b.Complement()
	}
	return out
}

// ContainsFuzzy reports whether primer occurs anywhere in payload within
// Hamming distance tau of some window (a fuzzy substring search). A
// distance of exactly tau+1 or more is "a non-collision" per spec.md §4.4.
func ContainsFuzzy(payload, primer trellis.Sequence, tau int) bool {
	plen := len(primer)
	if plen > len(payload) {
		return false
	}
	for i := 0; i+plen <= len(payload); i++ {
		if HammingDistance(payload[i:i+plen], primer) <= tau {
			return true
		}
	}
	return false
}

// HasPrimerCollision implements the stability gate's primer-collision
// scan: neither primer, nor its reverse complement, may appear (fuzzily)
// inside payload.
func HasPrimerCollision(payload, fwdPrimer, revPrimer trellis.Sequence, tau int) bool {
	candidates := []trellis.Sequence{
		fwdPrimer, ReverseComplement(fwdPrimer),
		revPrimer, ReverseComplement(revPrimer),
	}
	for _, p := range candidates {
		if ContainsFuzzy(payload, p, tau) {
			return true
		}
	}
	return false
}
