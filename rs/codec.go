package rs

import (
	"github.com/pkg/errors"
)

// Split breaks framed (header || ciphertext) into c.cfg.DataShards
// equal-length, zero-padded chunks and computes c.cfg.ParityShards parity
// chunks over GF(2^8) (systematic encoding: the data shards are the
// original bytes unmodified apart from the zero pad). Each returned Shard
// already carries its CRC32 prefix, ready for trellis encoding.
func (c *Codec) Split(blockID uint64, framed []byte) ([]Shard, error) {
	shardLen := (len(framed) + c.cfg.DataShards - 1) / c.cfg.DataShards
	if shardLen == 0 {
		shardLen = 1
	}

	buf := make([][]byte, c.Total())
	data := make([]byte, shardLen*c.cfg.DataShards)
	copy(data, framed)
	for i := 0; i < c.cfg.DataShards; i++ {
		buf[i] = data[i*shardLen : (i+1)*shardLen]
	}
	for i := 0; i < c.cfg.ParityShards; i++ {
		buf[c.cfg.DataShards+i] = make([]byte, shardLen)
	}

	if err := c.enc.Encode(buf); err != nil {
		return nil, errors.Wrap(err, "reedsolomon: encode parity")
	}

	shards := make([]Shard, c.Total())
	for i := range buf {
		role := RoleData
		if i >= c.cfg.DataShards {
			role = RoleParity
		}
		shards[i] = Shard{
			BlockID: blockID,
			Index:   i,
			Role:    role,
			Bytes:   PrependCRC(buf[i]),
		}
	}
	return shards, nil
}

// Reconstruct rebuilds the framed block bytes from a sparse set of verified
// shard payloads (CRC already stripped by the caller; missing or
// CRC-failed indices are passed as nil). It requires at least DataShards
// non-nil entries and returns ErrInsufficientShards otherwise. It returns
// the first origLen bytes of the concatenated data shards (fewer if the
// data shards hold fewer), so an origLen above the pre-padding framed
// length leaves the zero pad in the result.
func (c *Codec) Reconstruct(shardPayloads [][]byte, origLen int) ([]byte, error) {
	if len(shardPayloads) != c.Total() {
		return nil, errors.New("rs: shard slice has wrong width for this archive's (N,K)")
	}

	present := 0
	for _, s := range shardPayloads {
		if s != nil {
			present++
		}
	}
	if present < c.cfg.DataShards {
		return nil, ErrInsufficientShards
	}

	if err := c.enc.ReconstructData(shardPayloads); err != nil {
		return nil, errors.Wrap(err, "reedsolomon: reconstruct data shards")
	}

	out := make([]byte, 0, origLen)
	for i := 0; i < c.cfg.DataShards && len(out) < origLen; i++ {
		remaining := origLen - len(out)
		chunk := shardPayloads[i]
		if remaining < len(chunk) {
			chunk = chunk[:remaining]
		}
		out = append(out, chunk...)
	}
	return out, nil
}
