// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import (
	"crypto/sha256"
	"encoding/hex"
)

// DeriveStorageKey computes the stable identifier naming the record for a
// given (ownerID, dataType) pair. The derivation is deterministic so that
// storing again for the same pair overwrites rather than duplicates. A NUL
// separator keeps ("ab","c") and ("a","bc") from colliding.
func DeriveStorageKey(ownerID, dataType string) string {
	h := sha256.New()
	h.Write([]byte(ownerID))
	h.Write([]byte{0})
	h.Write([]byte(dataType))
	return hex.EncodeToString(h.Sum(nil))
}
