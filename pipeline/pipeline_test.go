package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"

	"helix/archive"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DataShards = 4
	cfg.ParityShards = 2
	cfg.BlockSize = 256
	cfg.Workers = 2
	cfg.KDFParams.MemoryKiB = 8 * 1024 // keep Argon2id cheap for tests
	cfg.Stability.MaxRetries = 32
	return cfg
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	plaintext := bytes.Repeat([]byte("the archive must survive geological time scales. "), 40)

	var archiveBuf bytes.Buffer
	_, err := Encode(context.Background(), bytes.NewReader(plaintext), &archiveBuf, "correct horse battery staple", testConfig())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	_, err = Decode(context.Background(), bytes.NewReader(archiveBuf.Bytes()), &out, "correct horse battery staple", testConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out.Bytes(), plaintext) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", out.Len(), len(plaintext))
	}
}

func TestDecodeToleratesShardErasure(t *testing.T) {
	plaintext := bytes.Repeat([]byte("deep time archival payload "), 30)

	var archiveBuf bytes.Buffer
	if _, err := Encode(context.Background(), bytes.NewReader(plaintext), &archiveBuf, "swordfish", testConfig()); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	dropped := dropShardRecords(t, archiveBuf.Bytes(), 2)

	var out bytes.Buffer
	if _, err := Decode(context.Background(), bytes.NewReader(dropped), &out, "swordfish", testConfig()); err != nil {
		t.Fatalf("Decode after erasure: %v", err)
	}
	if !bytes.Equal(out.Bytes(), plaintext) {
		t.Fatal("round-trip mismatch after tolerable shard erasure")
	}
}

func TestDecodeRejectsWrongPassphrase(t *testing.T) {
	plaintext := []byte("short secret")

	var archiveBuf bytes.Buffer
	if _, err := Encode(context.Background(), bytes.NewReader(plaintext), &archiveBuf, "the-right-passphrase", testConfig()); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	_, err := Decode(context.Background(), bytes.NewReader(archiveBuf.Bytes()), &out, "the-wrong-passphrase", testConfig())
	if err == nil {
		t.Fatal("expected an authentication failure decoding under the wrong passphrase")
	}
}

// dropShardRecords removes the first n non-metadata records from an
// encoded archive (re-emitting the magic line and every other record
// unchanged), simulating n lost strands.
func dropShardRecords(t *testing.T, encoded []byte, n int) []byte {
	t.Helper()
	rd, err := archive.NewReader(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("archive.NewReader: %v", err)
	}

	var out bytes.Buffer
	wr, err := archive.NewWriter(&out, rd.DataShards, rd.ParityShards, rd.BlockSize)
	if err != nil {
		t.Fatalf("archive.NewWriter: %v", err)
	}

	dropped := 0
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Reader.Next: %v", err)
		}
		if rec.BlockID != 0 && dropped < n {
			dropped++
			continue
		}
		if err := wr.WriteRecord(rec); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := wr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return out.Bytes()
}
