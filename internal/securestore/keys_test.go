// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import "testing"

func TestDeriveStorageKey_Deterministic(t *testing.T) {
	a := DeriveStorageKey("user-1", "bank_credentials")
	b := DeriveStorageKey("user-1", "bank_credentials")
	if a != b {
		t.Fatalf("expected deterministic key, got %s and %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected hex-encoded sha256 (64 chars), got %d", len(a))
	}
}

func TestDeriveStorageKey_SeparatorPreventsCollisions(t *testing.T) {
	if DeriveStorageKey("ab", "c") == DeriveStorageKey("a", "bc") {
		t.Fatalf("adjacent owner/type strings must not collide")
	}
	if DeriveStorageKey("user-1", "a") == DeriveStorageKey("user-1", "b") {
		t.Fatalf("distinct data types must derive distinct keys")
	}
}
