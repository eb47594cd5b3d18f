package block

import (
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
)

// Meta is the archive-wide metadata record carried as the plaintext payload
// of the distinguished block_id=0, shard_index=0 record (spec.md §6): the
// settings every subsequent block is decoded against. It is never
// encrypted or erasure-coded beyond the normal shard framing — knowing it
// is a prerequisite for deriving any session key at all, so it cannot
// itself depend on one.
type Meta struct {
	GlobalSalt   []byte `json:"global_salt"`
	PrimerFwd    string `json:"primer_fwd"`
	PrimerRev    string `json:"primer_rev"`
	GCMin        float64 `json:"gc_min"`
	GCMax        float64 `json:"gc_max"`
	TmMin        float64 `json:"tm_min"`
	TmMax        float64 `json:"tm_max"`
	TmFormula    string `json:"tm_formula"`
	MaxRetries   int    `json:"max_retries"`
	DataShards   int    `json:"data_shards"`
	ParityShards int    `json:"parity_shards"`
	BlockSize    int    `json:"block_size"`
	AddressBases int    `json:"address_bases"`
	Packing      string `json:"packing"`
	Compression  string `json:"compression"`
	KDFTimeCost    uint32 `json:"kdf_time_cost"`
	KDFMemoryKiB   uint32 `json:"kdf_memory_kib"`
	KDFParallelism uint8  `json:"kdf_parallelism"`
}

// Marshal renders m as compact JSON text, the plaintext of the archive's
// metadata record.
func (m Meta) Marshal() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "block: marshal archive metadata")
	}
	return b, nil
}

// UnmarshalMeta parses an archive's metadata record back into a Meta.
func UnmarshalMeta(b []byte) (Meta, error) {
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return m, errors.Wrap(err, "block: unmarshal archive metadata")
	}
	return m, nil
}

// EncodeGlobalSalt is a convenience for embedding raw salt bytes in
// contexts (CLI flags, logs) that want text rather than binary.
func EncodeGlobalSalt(salt []byte) string {
	return base64.StdEncoding.EncodeToString(salt)
}
