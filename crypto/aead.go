package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/pkg/errors"
)

// NonceSize is the AES-GCM nonce length used for every block.
const NonceSize = 12

// TagSize is the AES-GCM authentication tag width appended to every
// ciphertext, used by callers sizing buffers ahead of encryption.
const TagSize = 16

// ErrAuthFailure is returned by Open when the AEAD tag does not verify.
// pipeline.Decode tags it as helix.ErrAuthFailure and stops the restore at
// the first block whose tag fails.
var ErrAuthFailure = errors.New("helix: AEAD authentication failed")

// NewNonce draws a fresh random nonce. Each salt-retry rotates both
// block_salt and the nonce, so a regenerated block never reuses a
// (key, nonce) pair even if the session key were to repeat.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "crypto/rand: draw nonce")
	}
	return nonce, nil
}

// Seal encrypts plaintext under key and nonce with AES-256-GCM, returning
// ciphertext with the authentication tag appended (enc_len counts both).
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// Open verifies and decrypts ciphertext (with trailing tag) under key and
// nonce. A tag mismatch maps to ErrAuthFailure.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.WithStack(ErrAuthFailure)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aes: new cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "cipher: new GCM")
	}
	return gcm, nil
}
