// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package crypto implements the authenticated-encryption collaborator used
// by the command layer. The secure store itself never calls this package; it
// only persists the (ciphertext, nonce, algorithm, key id) unit these
// functions produce.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Algorithm tags written into stored records. Decryption dispatches on the
// stored tag, so renaming one is a breaking change for existing data.
const (
	AlgorithmAESGCM   = "AES-256-GCM"
	AlgorithmXChaCha2 = "XCHACHA20-POLY1305"
)

// KeySize is the key length required by both supported algorithms.
const KeySize = 32

var (
	// ErrDecryptionFailed signals an authentication failure. It is distinct
	// from storage errors so callers can surface corrupt-or-wrong-key
	// conditions separately from backend I/O problems.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrUnknownAlgorithm is returned for algorithm tags this build does not
	// support.
	ErrUnknownAlgorithm = errors.New("unknown encryption algorithm")

	// ErrInvalidKey is returned for keys of the wrong length.
	ErrInvalidKey = errors.New("invalid encryption key")
)

// GenerateKey returns a fresh random key suitable for either algorithm.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// newAEAD constructs the cipher for an algorithm tag.
func newAEAD(algorithm string, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", ErrInvalidKey, KeySize)
	}
	switch algorithm {
	case AlgorithmAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("construct aes cipher: %w", err)
		}
		return cipher.NewGCM(block)
	case AlgorithmXChaCha2:
		return chacha20poly1305.NewX(key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// Seal encrypts plaintext with the given algorithm and key, generating a
// fresh random nonce. The nonce is returned alongside the ciphertext and
// must be stored with it.
func Seal(algorithm string, key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newAEAD(algorithm, key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open decrypts ciphertext produced by Seal. Authentication failures are
// reported as ErrDecryptionFailed.
func Open(algorithm string, key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(algorithm, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: bad nonce length %d", ErrDecryptionFailed, len(nonce))
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
