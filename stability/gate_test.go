package stability

import (
	"testing"

	"helix/oligo"
	"helix/trellis"
)

func mustSeq(t *testing.T, s string) trellis.Sequence {
	t.Helper()
	seq, err := trellis.ParseSequence(s)
	if err != nil {
		t.Fatalf("ParseSequence(%q): %v", s, err)
	}
	return seq
}

func TestGCContentBounds(t *testing.T) {
	allGC := mustSeq(t, "GCGCGCGC")
	if got := GCContent(allGC); got != 1.0 {
		t.Fatalf("expected GC fraction 1.0, got %v", got)
	}
	allAT := mustSeq(t, "ATATATAT")
	if got := GCContent(allAT); got != 0.0 {
		t.Fatalf("expected GC fraction 0.0, got %v", got)
	}
}

func TestMeltingTempIncreasesWithGC(t *testing.T) {
	lowGC := mustSeq(t, "ATATATATATATATATATATATATATATATATATATATAT")
	highGC := mustSeq(t, "GCGCGCGCGCGCGCGCGCGCGCGCGCGCGCGCGCGCGCGCGC")
	if MeltingTemp(highGC) <= MeltingTemp(lowGC) {
		t.Fatal("expected higher GC content to raise estimated Tm")
	}
}

func TestCheckRejectsOutOfRangeGC(t *testing.T) {
	fwd := mustSeq(t, "ACGTACGTACGTACGTACGT")
	rev := mustSeq(t, "TGCATGCATGCATGCATGCA")
	o, err := oligo.Assemble(fwd, rev, 1, 0, 4, []byte{0, 0, 0, 0}, 31)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// Force the payload to an extreme (all G/C) sequence unrelated to the
	// trellis output, to exercise the GC gate directly.
	o.Payload = mustSeq(t, "GCGCGCGCGCGCGCGCGCGCGCGCGCGCGC")
	if reason := Check(o, DefaultParams); reason == ReasonNone {
		t.Fatal("expected the all-GC payload to fail the GC window")
	}
}

func TestCheckDetectsPrimerCollision(t *testing.T) {
	fwd := mustSeq(t, "ACGTACGTACGTACGTACGT")
	rev := mustSeq(t, "TGCATGCATGCATGCATGCA")
	o := oligo.Oligo{FwdPrimer: fwd, RevPrimer: rev, Payload: fwd}
	if reason := Check(o, DefaultParams); reason != ReasonPrimerCollision {
		t.Fatalf("expected primer collision, got %v", reason)
	}
}
