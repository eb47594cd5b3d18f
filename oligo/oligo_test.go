package oligo

import (
	"bytes"
	"testing"

	"helix/rs"
	"helix/trellis"
)

func defaultPrimers(t *testing.T) (trellis.Sequence, trellis.Sequence) {
	t.Helper()
	fwd, err := trellis.ParseSequence("ACGTACGTACGTACGTACGT")
	if err != nil {
		t.Fatalf("fwd primer: %v", err)
	}
	rev, err := trellis.ParseSequence("TGCATGCATGCATGCATGCA")
	if err != nil {
		t.Fatalf("rev primer: %v", err)
	}
	return fwd, rev
}

func TestAssembleAndDemuxRoundTrip(t *testing.T) {
	fwd, rev := defaultPrimers(t)
	const shardWidth = 6

	shardBytes := rs.PrependCRC(bytes.Repeat([]byte{0x42}, 48))
	payloadBases := trellis.TritsNeeded(len(shardBytes))

	oli, err := Assemble(fwd, rev, 7, 3, shardWidth, shardBytes, payloadBases)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if oli.Sequence().HasHomopolymer() {
		t.Fatal("assembled oligo must be homopolymer-free")
	}

	demux := NewDemultiplexer(DemuxParams{
		FwdPrimer:    fwd,
		RevPrimer:    rev,
		Tau:          DefaultTau,
		ShardWidth:   shardWidth,
		DataShards:   4,
		PayloadBases: payloadBases,
		ShardByteLen: len(shardBytes),
	})

	blockID, accepted := demux.Feed(oli.Sequence())
	if !accepted {
		t.Fatal("expected strand to be accepted")
	}
	if blockID != 7 {
		t.Fatalf("expected block id 7, got %d", blockID)
	}
	got := demux.Shards(7)[3]
	want, _ := rs.VerifyCRC(shardBytes)
	if !bytes.Equal(got, want) {
		t.Fatalf("recovered payload mismatch: got %x want %x", got, want)
	}
}

func TestDemuxRejectsWrongPrimer(t *testing.T) {
	fwd, rev := defaultPrimers(t)
	otherFwd, err := trellis.ParseSequence("TTTTCCCCGGGGAAAATTTT")
	if err != nil {
		t.Fatalf("otherFwd: %v", err)
	}

	shardBytes := rs.PrependCRC([]byte("payload"))
	payloadBases := trellis.TritsNeeded(len(shardBytes))
	oli, err := Assemble(otherFwd, rev, 1, 0, 4, shardBytes, payloadBases)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	demux := NewDemultiplexer(DemuxParams{
		FwdPrimer: fwd, RevPrimer: rev, ShardWidth: 4, DataShards: 2,
		PayloadBases: payloadBases, ShardByteLen: len(shardBytes),
	})
	_, accepted := demux.Feed(oli.Sequence())
	if accepted {
		t.Fatal("expected rejection for mismatched forward primer")
	}
}

func TestDemuxReadyAtDataShardThreshold(t *testing.T) {
	fwd, rev := defaultPrimers(t)
	shardBytes := rs.PrependCRC([]byte("abcdefgh"))
	demux := NewDemultiplexer(DemuxParams{
		FwdPrimer: fwd, RevPrimer: rev, ShardWidth: 3, DataShards: 2,
		PayloadBases: 90, ShardByteLen: len(shardBytes),
	})

	for i := 0; i < 2; i++ {
		oli, err := Assemble(fwd, rev, 5, i, 3, shardBytes, 90)
		if err != nil {
			t.Fatalf("Assemble shard %d: %v", i, err)
		}
		demux.Feed(oli.Sequence())
	}

	ready := demux.Ready()
	if len(ready) != 1 || ready[0] != 5 {
		t.Fatalf("expected block 5 ready, got %v", ready)
	}
}

func TestHammingDistanceAndPrimerCollision(t *testing.T) {
	fwd, rev := defaultPrimers(t)
	clean, err := trellis.ParseSequence("GAGAGAGAGAGAGAGAGAGAGAGAGAGAGAGA")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if HasPrimerCollision(clean, fwd, rev, DefaultTau) {
		t.Fatal("unrelated sequence should not collide with primers")
	}
	if !HasPrimerCollision(fwd, fwd, rev, DefaultTau) {
		t.Fatal("exact primer substring must be detected as a collision")
	}
}
