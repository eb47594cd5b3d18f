// Package crypto derives block keys and performs the authenticated
// encryption layer of the archive framing header. The interface shape
// (Seal/Open over a key schedule) follows the teacher's BlockCrypt
// abstraction; the key schedule itself is Argon2id + HKDF-SHA256 per the
// specification.
package crypto

import (
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// KDFParams are the Argon2id cost parameters, archived in the archive
// header so a later restore call reproduces the same master key.
type KDFParams struct {
	TimeCost    uint32
	MemoryKiB   uint32
	Parallelism uint8
}

// DefaultKDFParams mirrors the non-interactive recommendation (time=1,
// large memory) scaled down so a bounded salt-retry loop over many blocks
// stays responsive.
var DefaultKDFParams = KDFParams{TimeCost: 1, MemoryKiB: 19 * 1024, Parallelism: 4}

const masterKeyLen = 32 // AES-256

// MasterKey derives the archive-wide key from the user passphrase and the
// archive's global_salt. It never fails except on pathological inputs.
func MasterKey(passphrase string, globalSalt []byte, params KDFParams) []byte {
	return argon2.IDKey([]byte(passphrase), globalSalt, params.TimeCost, params.MemoryKiB, params.Parallelism, masterKeyLen)
}

// SessionKey derives the per-block key from the master key via HKDF-SHA256,
// with info = "helix/block" || block_id and salt = block_salt, so that
// rotating block_salt alone yields an independent session key (and
// therefore independent ciphertext) without re-running the KDF.
func SessionKey(masterKey, blockSalt []byte, blockID uint64) ([]byte, error) {
	info := make([]byte, len("helix/block")+8)
	n := copy(info, []byte("helix/block"))
	putUint64(info[n:], blockID)

	r := hkdf.New(sha256.New, masterKey, blockSalt, info)
	key := make([]byte, masterKeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Wrap(err, "hkdf: derive session key")
	}
	return key, nil
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
