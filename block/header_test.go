package block

import (
	"bytes"
	"testing"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{OrigLen: 1234, EncLen: 1250, BlockID: 7}
	copy(h.BlockSalt[:], bytes.Repeat([]byte{0xAB}, saltLen))
	copy(h.Nonce[:], bytes.Repeat([]byte{0xCD}, 12))

	ciphertext := bytes.Repeat([]byte{0x99}, 1250)
	framed := h.Encode(ciphertext)

	got, gotCipher, err := Decode(framed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != h {
		t.Fatalf("header mismatch: got %+v want %+v", got, h)
	}
	if !bytes.Equal(gotCipher, ciphertext) {
		t.Fatal("ciphertext mismatch after round trip")
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	if _, _, err := Decode(make([]byte, HeaderLen-1)); err != ErrTruncatedHeader {
		t.Fatalf("expected ErrTruncatedHeader, got %v", err)
	}
}

func TestDecodeRejectsTruncatedBody(t *testing.T) {
	h := Header{EncLen: 100}
	framed := h.Encode(make([]byte, 10))
	if _, _, err := Decode(framed); err != ErrTruncatedBody {
		t.Fatalf("expected ErrTruncatedBody, got %v", err)
	}
}
