// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures shared across the secure
// storage subsystem. These are plain structs with no behavior beyond simple
// formatting helpers; persistence mapping lives in internal/securestore.
package model

import (
	"fmt"
	"time"
)

// SecureRecord is the unit of persistence for encrypted payloads. Exactly one
// live record exists per (OwnerID, DataType) pair; writes are upserts keyed by
// the derived StorageKey.
type SecureRecord struct {
	OwnerID          string
	DataType         string
	EncryptedPayload []byte
	Nonce            []byte
	Algorithm        string
	KeyID            string
	StorageKey       string
	StoredAt         time.Time
	// ExpiresAt is nil for records that never expire.
	ExpiresAt *time.Time
}

// Expired reports whether the record's expiry is in the past relative to now.
// Records without an expiry never expire.
func (r *SecureRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// String returns the owner/type identity of the record. The payload and nonce
// are deliberately omitted.
func (r *SecureRecord) String() string {
	return fmt.Sprintf("%s/%s", r.OwnerID, r.DataType)
}

// StorageStat is one row of aggregated usage information for a data type.
type StorageStat struct {
	OwnerID     string
	DataType    string
	RecordCount int
	TotalBytes  int64
	OldestStore time.Time
	NewestStore time.Time
}

// CleanupReport describes the outcome of a single expiry sweep.
type CleanupReport struct {
	ID           string
	RemovedCount int
	Duration     time.Duration
	StartedAt    time.Time
	// Manual is true when the sweep was requested out-of-band rather than by
	// the scheduler.
	Manual bool
}

// BackupData is the serialized form of a full secure-store export.
type BackupData struct {
	SchemaVersion int
	ExportedAt    time.Time
	Records       []SecureRecord
}
