// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import (
	"time"

	"github.com/moneta-app/moneta/internal/model"
)

// Store defines the interface for all secure-storage database operations.
// This allows for multiple database backends to be implemented.
//
// Absence is a normal result at this layer: RetrieveRecord returns (nil, nil)
// for keys that were never stored, already deleted, or logically expired.
// Higher layers decide whether absence is an error.
type Store interface {
	// StoreRecord writes or overwrites the record for (ownerID, dataType) and
	// returns the persisted record including its computed storage key and
	// stored-at timestamp. The write is atomic: a concurrent retrieve for the
	// same key never observes a partially written record.
	StoreRecord(ownerID, dataType string, payload, nonce []byte, algorithm, keyID string, expiresAt *time.Time) (*model.SecureRecord, error)

	// RetrieveRecord returns the live record if present and not expired.
	// Expired-but-not-yet-swept records are treated as absent.
	RetrieveRecord(ownerID, dataType string) (*model.SecureRecord, error)

	// DeleteRecord removes the record if present; the bool reports whether a
	// record existed. Deleting twice is not an error.
	DeleteRecord(ownerID, dataType string) (bool, error)

	// CleanupExpired physically removes all records whose expiry is in the
	// past and returns the number removed. Safe to call concurrently with the
	// other operations.
	CleanupExpired() (int, error)

	// GetStorageStats returns counts and sizes grouped by data type. An empty
	// ownerID means all owners.
	GetStorageStats(ownerID string) ([]model.StorageStat, error)

	// Backup methods
	ExportDataForBackup() (*model.BackupData, error)
	ImportDataFromBackup(backup *model.BackupData) error
	IntegrateDataFromBackup(backup *model.BackupData) error
}
