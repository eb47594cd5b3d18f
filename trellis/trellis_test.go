package trellis

import (
	"bytes"
	"testing"
)

func TestPackRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0xFF, 0x10, 0x7E, 0x01, 0x02, 0x03, 0x04}
	n := 40 // below TritsNeeded(8)=42, but this payload's value needs only 36 trits
	trits := BytesToTrits(payload, n)
	if len(trits) != n {
		t.Fatalf("expected %d trits, got %d", n, len(trits))
	}
	back := TritsToBytes(trits, len(payload))
	if !bytes.Equal(back, payload) {
		t.Fatalf("round trip mismatch: got %x want %x", back, payload)
	}
}

func TestPackRoundTripZeroByte(t *testing.T) {
	payload := []byte{0x00}
	trits := BytesToTrits(payload, 6)
	back := TritsToBytes(trits, len(payload))
	if !bytes.Equal(back, payload) {
		t.Fatalf("round trip mismatch for zero byte: got %x", back)
	}
}

func TestEncodeNoHomopolymer(t *testing.T) {
	payload := bytes.Repeat([]byte{0xFF}, 64) // worst case for homopolymer risk
	trits := BytesToTrits(payload, 300)
	bases := Encode(BaseA, trits)
	if bases.HasHomopolymer() {
		t.Fatal("encoder must never emit a homopolymer run")
	}
}

func TestEncodeStrictDecodeRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog")
	n := 200
	trits := BytesToTrits(payload, n)
	bases := Encode(BaseG, trits)

	gotTrits, ok := StrictDecode(BaseG, bases)
	if !ok {
		t.Fatal("strict decode failed on unmutated sequence")
	}
	back := TritsToBytes(gotTrits, len(payload))
	if !bytes.Equal(back, payload) {
		t.Fatalf("strict decode round trip mismatch: got %q want %q", back, payload)
	}
}

func TestStrictDecodeDetectsHomopolymer(t *testing.T) {
	bases := Sequence{BaseA, BaseA, BaseC}
	if _, ok := StrictDecode(BaseT, bases); ok {
		t.Fatal("expected strict decode to reject a homopolymer run")
	}
}

func TestParseSequenceRejectsInvalidChar(t *testing.T) {
	if _, err := ParseSequence("ACGTX"); err == nil {
		t.Fatal("expected error for invalid base character")
	}
}

func TestSequenceStringRoundTrip(t *testing.T) {
	seq, err := ParseSequence("ACGTACGT")
	if err != nil {
		t.Fatalf("ParseSequence: %v", err)
	}
	if seq.String() != "ACGTACGT" {
		t.Fatalf("got %q", seq.String())
	}
}
