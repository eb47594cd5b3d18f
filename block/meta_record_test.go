package block

import "testing"

func TestMetaRecordRoundTrip(t *testing.T) {
	m := Meta{
		GlobalSalt:   []byte{1, 2, 3, 4, 5, 6, 7, 8},
		PrimerFwd:    "ACGTACGTACGTACGTACGT",
		PrimerRev:    "TGCATGCATGCATGCATGCA",
		GCMin:        0.40,
		GCMax:        0.60,
		TmMin:        50,
		TmMax:        65,
		TmFormula:    "marmur-schildkraut-doty",
		MaxRetries:   16,
		DataShards:   6,
		ParityShards: 3,
		BlockSize:    1 << 20,
		AddressBases: 40,
		Packing:      "v1-bigint-base3",
		Compression:  "zstd",
	}

	plain, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	framedLen := len(plain) + 4 // CRC32 prefix width

	bases, err := EncodeMetaRecord(m)
	if err != nil {
		t.Fatalf("EncodeMetaRecord: %v", err)
	}
	if bases.HasHomopolymer() {
		t.Fatal("metadata record must itself be homopolymer-free")
	}

	got, err := DecodeMetaRecord(bases, framedLen)
	if err != nil {
		t.Fatalf("DecodeMetaRecord: %v", err)
	}
	if got.PrimerFwd != m.PrimerFwd || got.DataShards != m.DataShards || got.Packing != m.Packing {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, m)
	}
}
