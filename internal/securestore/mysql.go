// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package securestore provides the data access layer for Moneta's secure
// storage subsystem. This file contains the MySQL implementation of the
// store.
package securestore // import "github.com/moneta-app/moneta/internal/securestore"

import (
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/moneta-app/moneta/internal/model"
	"github.com/uptrace/bun"
)

// MySQLStore is the MySQL implementation of the Store interface.
type MySQLStore struct {
	bun *bun.DB
}

const mysqlUpsert = `INSERT INTO secure_records
	(storage_key, owner_id, data_type, encrypted_payload, nonce, algorithm, key_id, stored_at, expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE
		encrypted_payload = VALUES(encrypted_payload),
		nonce = VALUES(nonce),
		algorithm = VALUES(algorithm),
		key_id = VALUES(key_id),
		stored_at = VALUES(stored_at),
		expires_at = VALUES(expires_at)`

// StoreRecord writes or overwrites the record for (ownerID, dataType).
func (s *MySQLStore) StoreRecord(ownerID, dataType string, payload, nonce []byte, algorithm, keyID string, expiresAt *time.Time) (*model.SecureRecord, error) {
	return storeRecordBun(s.bun, mysqlUpsert, ownerID, dataType, payload, nonce, algorithm, keyID, expiresAt)
}

// RetrieveRecord returns the live record for (ownerID, dataType).
func (s *MySQLStore) RetrieveRecord(ownerID, dataType string) (*model.SecureRecord, error) {
	return GetSecureRecordBun(s.bun, ownerID, dataType)
}

// DeleteRecord removes the record if present.
func (s *MySQLStore) DeleteRecord(ownerID, dataType string) (bool, error) {
	return DeleteSecureRecordBun(s.bun, ownerID, dataType)
}

// CleanupExpired physically removes all expired records.
func (s *MySQLStore) CleanupExpired() (int, error) {
	return CleanupExpiredBun(s.bun, nowFunc())
}

// GetStorageStats aggregates live records by owner and data type.
func (s *MySQLStore) GetStorageStats(ownerID string) ([]model.StorageStat, error) {
	return StorageStatsBun(s.bun, ownerID)
}

// ExportDataForBackup exports all records for a backup.
func (s *MySQLStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportBackupBun(s.bun)
}

// ImportDataFromBackup restores the store from a backup, replacing all rows.
func (s *MySQLStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportBackupBun(s.bun, backup)
}

// IntegrateDataFromBackup restores from a backup without wiping existing rows.
func (s *MySQLStore) IntegrateDataFromBackup(backup *model.BackupData) error {
	return IntegrateBackupBun(s.bun, backup)
}
