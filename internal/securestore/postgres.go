// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package securestore provides the data access layer for Moneta's secure
// storage subsystem. This file contains the PostgreSQL implementation of the
// store.
package securestore // import "github.com/moneta-app/moneta/internal/securestore"

import (
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/moneta-app/moneta/internal/model"
	"github.com/uptrace/bun"
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	bun *bun.DB
}

const postgresUpsert = `INSERT INTO secure_records
	(storage_key, owner_id, data_type, encrypted_payload, nonce, algorithm, key_id, stored_at, expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (storage_key) DO UPDATE SET
		encrypted_payload = excluded.encrypted_payload,
		nonce = excluded.nonce,
		algorithm = excluded.algorithm,
		key_id = excluded.key_id,
		stored_at = excluded.stored_at,
		expires_at = excluded.expires_at`

// StoreRecord writes or overwrites the record for (ownerID, dataType).
func (s *PostgresStore) StoreRecord(ownerID, dataType string, payload, nonce []byte, algorithm, keyID string, expiresAt *time.Time) (*model.SecureRecord, error) {
	return storeRecordBun(s.bun, postgresUpsert, ownerID, dataType, payload, nonce, algorithm, keyID, expiresAt)
}

// RetrieveRecord returns the live record for (ownerID, dataType).
func (s *PostgresStore) RetrieveRecord(ownerID, dataType string) (*model.SecureRecord, error) {
	return GetSecureRecordBun(s.bun, ownerID, dataType)
}

// DeleteRecord removes the record if present.
func (s *PostgresStore) DeleteRecord(ownerID, dataType string) (bool, error) {
	return DeleteSecureRecordBun(s.bun, ownerID, dataType)
}

// CleanupExpired physically removes all expired records.
func (s *PostgresStore) CleanupExpired() (int, error) {
	return CleanupExpiredBun(s.bun, nowFunc())
}

// GetStorageStats aggregates live records by owner and data type.
func (s *PostgresStore) GetStorageStats(ownerID string) ([]model.StorageStat, error) {
	return StorageStatsBun(s.bun, ownerID)
}

// ExportDataForBackup exports all records for a backup.
func (s *PostgresStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportBackupBun(s.bun)
}

// ImportDataFromBackup restores the store from a backup, replacing all rows.
func (s *PostgresStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportBackupBun(s.bun, backup)
}

// IntegrateDataFromBackup restores from a backup without wiping existing rows.
func (s *PostgresStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	return IntegrateBackupBun(s.bun, backup)
}
