// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpen_Roundtrip(t *testing.T) {
	for _, alg := range []string{AlgorithmAESGCM, AlgorithmXChaCha2} {
		t.Run(alg, func(t *testing.T) {
			key, err := GenerateKey()
			if err != nil {
				t.Fatalf("GenerateKey failed: %v", err)
			}
			plaintext := []byte("account credentials")

			ct, nonce, err := Seal(alg, key, plaintext)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if bytes.Contains(ct, plaintext) {
				t.Fatalf("ciphertext contains plaintext")
			}
			if len(nonce) == 0 {
				t.Fatalf("expected a nonce")
			}

			got, err := Open(alg, key, nonce, ct)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Fatalf("roundtrip mismatch: %q", got)
			}
		})
	}
}

func TestSeal_FreshNoncePerCall(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	_, n1, err := Seal(AlgorithmAESGCM, key, []byte("x"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	_, n2, err := Seal(AlgorithmAESGCM, key, []byte("x"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if bytes.Equal(n1, n2) {
		t.Fatalf("nonce reuse across Seal calls")
	}
}

func TestOpen_WrongKeyFails(t *testing.T) {
	key1, _ := GenerateKey()
	key2, _ := GenerateKey()

	ct, nonce, err := Seal(AlgorithmAESGCM, key1, []byte("data"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := Open(AlgorithmAESGCM, key2, nonce, ct); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for wrong key, got: %v", err)
	}
}

func TestOpen_TamperedCiphertextFails(t *testing.T) {
	key, _ := GenerateKey()
	ct, nonce, err := Seal(AlgorithmXChaCha2, key, []byte("data"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	ct[0] ^= 0xff
	if _, err := Open(AlgorithmXChaCha2, key, nonce, ct); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for tampered ciphertext, got: %v", err)
	}
}

func TestNewAEAD_Validation(t *testing.T) {
	key, _ := GenerateKey()
	if _, _, err := Seal("ROT13", key, []byte("x")); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got: %v", err)
	}
	if _, _, err := Seal(AlgorithmAESGCM, []byte("short"), []byte("x")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for short key, got: %v", err)
	}
}
