package rs

import (
	"bytes"
	"testing"
)

func TestSplitReconstructRoundTrip(t *testing.T) {
	codec, err := NewCodec(Config{DataShards: 4, ParityShards: 2})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	payload := bytes.Repeat([]byte{0xAB}, 97)
	shards, err := codec.Split(1, payload)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(shards) != 6 {
		t.Fatalf("expected 6 shards, got %d", len(shards))
	}

	payloads := make([][]byte, len(shards))
	for i, s := range shards {
		p, ok := VerifyCRC(s.Bytes)
		if !ok {
			t.Fatalf("shard %d failed self-CRC", i)
		}
		payloads[i] = p
	}

	out, err := codec.Reconstruct(payloads, len(payload))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatal("round-trip mismatch with all shards present")
	}
}

func TestReconstructToleratesParityErasure(t *testing.T) {
	codec, _ := NewCodec(Config{DataShards: 4, ParityShards: 2})
	payload := bytes.Repeat([]byte{0x5A}, 40)
	shards, _ := codec.Split(2, payload)

	payloads := make([][]byte, len(shards))
	for i, s := range shards {
		p, _ := VerifyCRC(s.Bytes)
		payloads[i] = p
	}
	// drop one data and one parity shard (still >= DataShards present)
	payloads[1] = nil
	payloads[5] = nil

	out, err := codec.Reconstruct(payloads, len(payload))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatal("round-trip mismatch with erasures")
	}
}

func TestReconstructFailsBelowThreshold(t *testing.T) {
	codec, _ := NewCodec(Config{DataShards: 4, ParityShards: 2})
	payload := bytes.Repeat([]byte{1}, 20)
	shards, _ := codec.Split(3, payload)

	payloads := make([][]byte, len(shards))
	for i, s := range shards {
		p, _ := VerifyCRC(s.Bytes)
		payloads[i] = p
	}
	payloads[0] = nil
	payloads[1] = nil
	payloads[2] = nil // only 3 of 6 survive, need 4

	if _, err := codec.Reconstruct(payloads, len(payload)); err != ErrInsufficientShards {
		t.Fatalf("expected ErrInsufficientShards, got %v", err)
	}
}

func TestVerifyCRCDetectsCorruption(t *testing.T) {
	b := PrependCRC([]byte("hello world"))
	b[10] ^= 0xFF
	if _, ok := VerifyCRC(b); ok {
		t.Fatal("expected CRC mismatch on corrupted shard")
	}
}
