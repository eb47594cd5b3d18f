package trellis

import (
	"bytes"
	"testing"
)

func TestViterbiRepairsSingleMutation(t *testing.T) {
	payload := []byte("helix deep time archival payload test vector")
	n := 260
	trits := BytesToTrits(payload, n)
	initial := BaseC
	bases := Encode(initial, trits)

	mutated := append(Sequence{}, bases...)
	mutated[40] = (mutated[40] + 1) % 4 // flip one base, keep it legal or not

	corrected := ViterbiDecode(initial, mutated)
	gotTrits, ok := StrictDecode(initial, corrected)
	if !ok {
		t.Fatal("viterbi output must always be strict-decodable")
	}
	back := TritsToBytes(gotTrits, len(payload))
	if !bytes.Equal(back, payload) {
		t.Fatalf("viterbi failed to repair single mutation: got %q want %q", back, payload)
	}
}

func TestViterbiOutputNeverHomopolymer(t *testing.T) {
	observed := Sequence{BaseA, BaseA, BaseA, BaseC, BaseC, BaseG, BaseT, BaseT}
	corrected := ViterbiDecodeWith(BaseT, observed, Hamming)
	if corrected.HasHomopolymer() {
		t.Fatal("viterbi must never output a homopolymer run")
	}
}

func TestViterbiIsIdentityOnCleanInput(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	trits := BytesToTrits(payload, 90)
	initial := BaseA
	bases := Encode(initial, trits)

	corrected := ViterbiDecode(initial, bases)
	for i := range bases {
		if corrected[i] != bases[i] {
			t.Fatalf("viterbi altered a clean sequence at %d: got %v want %v", i, corrected[i], bases[i])
		}
	}
}
