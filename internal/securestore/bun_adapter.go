// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import (
	"context"
	"database/sql"
	"time"

	"github.com/moneta-app/moneta/internal/model"
	"github.com/uptrace/bun"
)

// SecureRecordModel maps the `secure_records` table for Bun queries.
type SecureRecordModel struct {
	bun.BaseModel    `bun:"table:secure_records"`
	StorageKey       string       `bun:"storage_key,pk"`
	OwnerID          string       `bun:"owner_id"`
	DataType         string       `bun:"data_type"`
	EncryptedPayload []byte       `bun:"encrypted_payload"`
	Nonce            []byte       `bun:"nonce"`
	Algorithm        string       `bun:"algorithm"`
	KeyID            string       `bun:"key_id"`
	StoredAt         time.Time    `bun:"stored_at"`
	ExpiresAt        sql.NullTime `bun:"expires_at"`
}

// --- Mapping helpers (centralized conversions) ---
func secureRecordModelToModel(m SecureRecordModel) model.SecureRecord {
	rec := model.SecureRecord{
		OwnerID:          m.OwnerID,
		DataType:         m.DataType,
		EncryptedPayload: m.EncryptedPayload,
		Nonce:            m.Nonce,
		Algorithm:        m.Algorithm,
		KeyID:            m.KeyID,
		StorageKey:       m.StorageKey,
		StoredAt:         m.StoredAt,
	}
	if m.ExpiresAt.Valid {
		t := m.ExpiresAt.Time
		rec.ExpiresAt = &t
	}
	return rec
}

func secureRecordToModelRow(rec *model.SecureRecord) *SecureRecordModel {
	m := &SecureRecordModel{
		StorageKey:       rec.StorageKey,
		OwnerID:          rec.OwnerID,
		DataType:         rec.DataType,
		EncryptedPayload: rec.EncryptedPayload,
		Nonce:            rec.Nonce,
		Algorithm:        rec.Algorithm,
		KeyID:            rec.KeyID,
		StoredAt:         rec.StoredAt,
	}
	if rec.ExpiresAt != nil {
		m.ExpiresAt = sql.NullTime{Time: *rec.ExpiresAt, Valid: true}
	}
	return m
}

// upsertSecureRecordBun executes a dialect-provided upsert statement for the
// record. The statement must bind exactly the nine record columns in table
// order.
func upsertSecureRecordBun(bdb *bun.DB, upsertSQL string, m *SecureRecordModel) error {
	ctx := context.Background()
	var expires interface{}
	if m.ExpiresAt.Valid {
		expires = m.ExpiresAt.Time
	}
	_, err := ExecRaw(ctx, bdb, upsertSQL,
		m.StorageKey, m.OwnerID, m.DataType, m.EncryptedPayload, m.Nonce,
		m.Algorithm, m.KeyID, m.StoredAt, expires)
	return MapStoreError(err)
}

// storeRecordBun assembles and persists a record via the dialect's upsert
// statement, returning the persisted form with its derived storage key and
// write timestamp.
func storeRecordBun(bdb *bun.DB, upsertSQL, ownerID, dataType string, payload, nonce []byte, algorithm, keyID string, expiresAt *time.Time) (*model.SecureRecord, error) {
	rec := &model.SecureRecord{
		OwnerID:          ownerID,
		DataType:         dataType,
		EncryptedPayload: payload,
		Nonce:            nonce,
		Algorithm:        algorithm,
		KeyID:            keyID,
		StorageKey:       DeriveStorageKey(ownerID, dataType),
		StoredAt:         nowFunc(),
		ExpiresAt:        expiresAt,
	}
	if err := upsertSecureRecordBun(bdb, upsertSQL, secureRecordToModelRow(rec)); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetSecureRecordBun retrieves the record for (ownerID, dataType). Expired
// records are treated as absent even before a cleanup sweep has removed them:
// expiration is logically authoritative over physical deletion timing.
func GetSecureRecordBun(bdb *bun.DB, ownerID, dataType string) (*model.SecureRecord, error) {
	ctx := context.Background()
	key := DeriveStorageKey(ownerID, dataType)
	var m SecureRecordModel
	err := bdb.NewSelect().Model(&m).Where("storage_key = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec := secureRecordModelToModel(m)
	if rec.Expired(nowFunc()) {
		return nil, nil
	}
	return &rec, nil
}

// DeleteSecureRecordBun removes the record for (ownerID, dataType) and
// reports whether a row was actually deleted.
func DeleteSecureRecordBun(bdb *bun.DB, ownerID, dataType string) (bool, error) {
	ctx := context.Background()
	key := DeriveStorageKey(ownerID, dataType)
	res, err := ExecRaw(ctx, bdb, "DELETE FROM secure_records WHERE storage_key = ?", key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CleanupExpiredBun physically removes all records expired as of the given
// time and returns the number removed. Records written after the sweep
// started with a future expiry are untouched because the cutoff is fixed up
// front.
func CleanupExpiredBun(bdb *bun.DB, cutoff time.Time) (int, error) {
	ctx := context.Background()
	res, err := ExecRaw(ctx, bdb, "DELETE FROM secure_records WHERE expires_at IS NOT NULL AND expires_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// statRow is the scan target for the aggregate stats query.
type statRow struct {
	OwnerID     string    `bun:"owner_id"`
	DataType    string    `bun:"data_type"`
	RecordCount int       `bun:"record_count"`
	TotalBytes  int64     `bun:"total_bytes"`
	OldestStore time.Time `bun:"oldest_store"`
	NewestStore time.Time `bun:"newest_store"`
}

// StorageStatsBun aggregates live (unexpired) records by owner and data type.
// An empty ownerID aggregates across all owners.
func StorageStatsBun(bdb *bun.DB, ownerID string) ([]model.StorageStat, error) {
	ctx := context.Background()
	now := nowFunc()

	query := `SELECT owner_id, data_type, COUNT(*) AS record_count,
		COALESCE(SUM(LENGTH(encrypted_payload)), 0) AS total_bytes,
		MIN(stored_at) AS oldest_store, MAX(stored_at) AS newest_store
		FROM secure_records
		WHERE (expires_at IS NULL OR expires_at >= ?)`
	args := []interface{}{now}
	if ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}
	query += " GROUP BY owner_id, data_type ORDER BY owner_id, data_type"

	var rows []statRow
	if err := QueryRawInto(ctx, bdb, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make([]model.StorageStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.StorageStat{
			OwnerID:     r.OwnerID,
			DataType:    r.DataType,
			RecordCount: r.RecordCount,
			TotalBytes:  r.TotalBytes,
			OldestStore: r.OldestStore,
			NewestStore: r.NewestStore,
		})
	}
	return out, nil
}

// ExportBackupBun exports all secure records into a model.BackupData using a
// Bun transaction so the snapshot is consistent.
func ExportBackupBun(bdb *bun.DB) (*model.BackupData, error) {
	ctx := context.Background()
	var backup *model.BackupData
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: 1, ExportedAt: nowFunc()}

		var rows []SecureRecordModel
		if err := tx.NewSelect().Model(&rows).OrderExpr("storage_key").Scan(ctx); err != nil {
			return err
		}
		for _, m := range rows {
			backup.Records = append(backup.Records, secureRecordModelToModel(m))
		}
		return nil
	})
	return backup, err
}

// ImportBackupBun performs a full wipe-and-replace using a Bun transaction.
func ImportBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		if _, err := ExecRaw(ctx, tx, "DELETE FROM secure_records"); err != nil {
			return err
		}
		for i := range backup.Records {
			rec := backup.Records[i]
			if rec.StorageKey == "" {
				rec.StorageKey = DeriveStorageKey(rec.OwnerID, rec.DataType)
			}
			if _, err := tx.NewInsert().Model(secureRecordToModelRow(&rec)).Exec(ctx); err != nil {
				return MapStoreError(err)
			}
		}
		return nil
	})
}

// IntegrateBackupBun restores records from a backup without touching rows that
// already exist. Existence is checked per key inside the transaction instead
// of relying on engine-specific INSERT OR IGNORE syntax.
func IntegrateBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		for i := range backup.Records {
			rec := backup.Records[i]
			if rec.StorageKey == "" {
				rec.StorageKey = DeriveStorageKey(rec.OwnerID, rec.DataType)
			}
			var exists int
			err := QueryRawInto(ctx, tx, &exists, "SELECT COUNT(*) FROM secure_records WHERE storage_key = ?", rec.StorageKey)
			if err != nil {
				return err
			}
			if exists > 0 {
				continue
			}
			if _, err := tx.NewInsert().Model(secureRecordToModelRow(&rec)).Exec(ctx); err != nil {
				return MapStoreError(err)
			}
		}
		return nil
	})
}
