package archive

import (
	"bytes"
	"io"
	"testing"

	"helix/trellis"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 4, 2, 1<<16)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	seqA, _ := trellis.ParseSequence("ACGTACGT")
	seqB, _ := trellis.ParseSequence("TGCATGCA")
	records := []Record{
		{BlockID: 0, ShardIndex: 0, ByteLen: 42, Bases: seqA},
		{BlockID: 3, ShardIndex: 1, ByteLen: 64, Bases: seqB},
	}
	for _, r := range records {
		if err := w.WriteRecord(r); err != nil {
			t.Fatalf("WriteRecord: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.DataShards != 4 || r.ParityShards != 2 || r.BlockSize != 1<<16 {
		t.Fatalf("magic line mismatch: %+v", r)
	}

	for i, want := range records {
		got, err := r.Next()
		if err != nil {
			t.Fatalf("Next() record %d: %v", i, err)
		}
		if got.BlockID != want.BlockID || got.ShardIndex != want.ShardIndex || got.ByteLen != want.ByteLen {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, got, want)
		}
		if got.Bases.String() != want.Bases.String() {
			t.Fatalf("record %d bases mismatch: got %s want %s", i, got.Bases, want.Bases)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF at end of archive, got %v", err)
	}
}

func TestMagicLineRoundTrip(t *testing.T) {
	line := MagicLine(10, 4, 1<<20)
	n, k, bs, err := ParseMagic(line)
	if err != nil {
		t.Fatalf("ParseMagic: %v", err)
	}
	if n != 10 || k != 4 || bs != 1<<20 {
		t.Fatalf("got (%d,%d,%d)", n, k, bs)
	}
}
