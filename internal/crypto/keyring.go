// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"errors"
	"fmt"
	"sync"

	"github.com/moneta-app/moneta/internal/security"
)

// ErrUnknownKey is returned when a key id is not present in the ring.
var ErrUnknownKey = errors.New("unknown key id")

// Keyring holds encryption keys by id so records encrypted under an older
// key remain readable after rotation. Encryption always uses the active key;
// decryption looks up whatever key id the record was stored with.
type Keyring struct {
	mu        sync.RWMutex
	keys      map[string]security.Secret
	active    string
	algorithm string
}

// NewKeyring creates an empty ring that encrypts with the given algorithm
// tag. An empty algorithm defaults to AES-256-GCM.
func NewKeyring(algorithm string) *Keyring {
	if algorithm == "" {
		algorithm = AlgorithmAESGCM
	}
	return &Keyring{
		keys:      make(map[string]security.Secret),
		algorithm: algorithm,
	}
}

// AddKey registers key material under an id. The first key added becomes the
// active key.
func (k *Keyring) AddKey(id string, key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("%w: key must be %d bytes", ErrInvalidKey, KeySize)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[id] = security.FromBytes(key)
	if k.active == "" {
		k.active = id
	}
	return nil
}

// SetActive selects the key used for new encryptions. Rotation is just
// AddKey + SetActive; history stays decryptable under the old ids.
func (k *Keyring) SetActive(id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.keys[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, id)
	}
	k.active = id
	return nil
}

// ActiveKeyID returns the id new encryptions will use.
func (k *Keyring) ActiveKeyID() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active
}

// Encrypt seals plaintext under the active key and returns the stored unit:
// ciphertext, nonce, the algorithm tag, and the key id used.
func (k *Keyring) Encrypt(plaintext []byte) (ciphertext, nonce []byte, algorithm, keyID string, err error) {
	k.mu.RLock()
	keyID = k.active
	key, ok := k.keys[keyID]
	algorithm = k.algorithm
	k.mu.RUnlock()
	if !ok {
		return nil, nil, "", "", fmt.Errorf("%w: no active key", ErrUnknownKey)
	}
	var ct, n []byte
	err = key.Use(func(raw []byte) error {
		var sealErr error
		ct, n, sealErr = Seal(algorithm, raw, plaintext)
		return sealErr
	})
	if err != nil {
		return nil, nil, "", "", err
	}
	return ct, n, algorithm, keyID, nil
}

// Decrypt opens a stored unit using the key id it was sealed with.
func (k *Keyring) Decrypt(ciphertext, nonce []byte, algorithm, keyID string) ([]byte, error) {
	k.mu.RLock()
	key, ok := k.keys[keyID]
	k.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, keyID)
	}
	var plaintext []byte
	err := key.Use(func(raw []byte) error {
		var openErr error
		plaintext, openErr = Open(algorithm, raw, nonce, ciphertext)
		return openErr
	})
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}
