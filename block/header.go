// Package block defines the per-block binary framing (the bytes that are
// Reed-Solomon split and trellis-encoded) and the archive-wide metadata
// record carried in the distinguished first block.
package block

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// saltLen is the width of both global_salt and block_salt.
const saltLen = 16

// HeaderLen is the fixed, plaintext-visible prefix of every framed block:
// orig_len(8) | enc_len(8) | block_id(8) | block_salt(16) | nonce(12).
const HeaderLen = 8 + 8 + 8 + saltLen + 12

// Header is the plaintext framing that precedes a block's ciphertext.
// It is never encrypted: the decoder needs block_salt and the nonce before
// it can derive the session key and open the AEAD tag.
type Header struct {
	OrigLen   uint64   // plaintext length before compression+encryption
	EncLen    uint64   // ciphertext length, including the GCM tag
	BlockID   uint64
	BlockSalt [saltLen]byte
	Nonce     [12]byte
}

// ErrTruncatedHeader is returned when framed bytes are shorter than HeaderLen.
var ErrTruncatedHeader = errors.New("block: framed buffer shorter than header")

// ErrTruncatedBody is returned when framed bytes are shorter than the
// header declares (orig/enc length mismatch against the actual buffer).
var ErrTruncatedBody = errors.New("block: framed buffer shorter than declared ciphertext length")

// Encode serializes h followed by ciphertext into one framed buffer, the
// input to rs.Codec.Split.
func (h Header) Encode(ciphertext []byte) []byte {
	out := make([]byte, HeaderLen+len(ciphertext))
	binary.BigEndian.PutUint64(out[0:8], h.OrigLen)
	binary.BigEndian.PutUint64(out[8:16], h.EncLen)
	binary.BigEndian.PutUint64(out[16:24], h.BlockID)
	copy(out[24:24+saltLen], h.BlockSalt[:])
	copy(out[24+saltLen:HeaderLen], h.Nonce[:])
	copy(out[HeaderLen:], ciphertext)
	return out
}

// Decode splits a framed buffer (rs.Codec.Reconstruct output) back into its
// Header and ciphertext.
func Decode(framed []byte) (Header, []byte, error) {
	var h Header
	if len(framed) < HeaderLen {
		return h, nil, ErrTruncatedHeader
	}
	h.OrigLen = binary.BigEndian.Uint64(framed[0:8])
	h.EncLen = binary.BigEndian.Uint64(framed[8:16])
	h.BlockID = binary.BigEndian.Uint64(framed[16:24])
	copy(h.BlockSalt[:], framed[24:24+saltLen])
	copy(h.Nonce[:], framed[24+saltLen:HeaderLen])

	ciphertext := framed[HeaderLen:]
	if uint64(len(ciphertext)) < h.EncLen {
		return h, nil, ErrTruncatedBody
	}
	return h, ciphertext[:h.EncLen], nil
}
