// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import (
	"testing"
	"time"
)

// WithTestStore initializes an in-memory sqlite Store for the duration of the
// provided function and restores package-level globals afterwards.
func WithTestStore(t *testing.T, fn func(s *SqliteStore)) {
	t.Helper()

	prevStore := store
	prevNow := nowFunc

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	if err := Init("sqlite", dsn); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s, ok := store.(*SqliteStore)
	if !ok {
		t.Fatalf("store is not *SqliteStore")
	}

	defer func() {
		store = prevStore
		nowFunc = prevNow
	}()

	fn(s)
}

// setClock pins the package clock used for expiry decisions and returns a
// function advancing it.
func setClock(t *testing.T, start time.Time) func(d time.Duration) {
	t.Helper()
	current := start
	nowFunc = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) }
}
