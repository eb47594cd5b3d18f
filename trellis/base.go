// Package trellis implements the base-3 rotating trellis channel code: a
// deterministic automaton whose states are DNA bases, whose transitions are
// labeled by trit values, and whose Viterbi decoder scores hypotheses by a
// pluggable per-symbol metric (Hamming distance by default). The topology
// guarantees the no-homopolymer invariant by construction: every legal
// transition changes state.
package trellis

import "github.com/pkg/errors"

// Base indexes the DNA alphabet, A=0, C=1, G=2, T=3, matching spec.md's
// GLOSSARY ordering.
type Base uint8

const (
	BaseA Base = 0
	BaseC Base = 1
	BaseG Base = 2
	BaseT Base = 3
)

var baseChars = [4]byte{'A', 'C', 'G', 'T'}

// Byte renders the base as its ASCII character.
func (b Base) Byte() byte { return baseChars[b&3] }

// Complement returns the Watson-Crick complement (A<->T, C<->G), used by
// the primer-collision scan to check reverse-complement matches.
func (b Base) Complement() Base {
	switch b & 3 {
	case BaseA:
		return BaseT
	case BaseT:
		return BaseA
	case BaseC:
		return BaseG
	default:
		return BaseC
	}
}

// ErrInvalidBase is returned when decoding text outside {A,C,G,T}.
var ErrInvalidBase = errors.New("trellis: byte is not one of A, C, G, T")

// ParseBase maps an ASCII character to a Base.
func ParseBase(c byte) (Base, error) {
	switch c {
	case 'A':
		return BaseA, nil
	case 'C':
		return BaseC, nil
	case 'G':
		return BaseG, nil
	case 'T':
		return BaseT, nil
	default:
		return 0, ErrInvalidBase
	}
}

// Sequence is a run of bases, the unit exchanged between the trellis codec
// and the oligo assembler.
type Sequence []Base

// String renders the sequence as upper-case DNA text.
func (s Sequence) String() string {
	out := make([]byte, len(s))
	for i, b := range s {
		out[i] = b.Byte()
	}
	return string(out)
}

// ParseSequence is the inverse of String; it rejects any character outside
// {A,C,G,T} rather than silently dropping it.
func ParseSequence(s string) (Sequence, error) {
	out := make(Sequence, len(s))
	for i := 0; i < len(s); i++ {
		b, err := ParseBase(s[i])
		if err != nil {
			return nil, errors.Wrapf(err, "position %d", i)
		}
		out[i] = b
	}
	return out, nil
}

// HasHomopolymer reports whether any two adjacent bases are equal.
func (s Sequence) HasHomopolymer() bool {
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1] {
			return true
		}
	}
	return false
}
