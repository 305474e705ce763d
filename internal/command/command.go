// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package command implements the caller-facing surface of the secure storage
// subsystem. It validates input, dispatches to the service coordinator when
// one is available and to the repository directly when it is not, and maps
// repository results to responses. Every payload recorded for observability
// is sanitized before emission.
package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/moneta-app/moneta/internal/crypto"
	"github.com/moneta-app/moneta/internal/logging"
	"github.com/moneta-app/moneta/internal/model"
	"github.com/moneta-app/moneta/internal/securestore"
	"github.com/moneta-app/moneta/internal/security"
	"github.com/moneta-app/moneta/internal/service"
)

// ErrNotFound is the user-visible "no data" condition: retrieval was
// requested for a key with no live, unexpired record. It is not a system
// fault.
var ErrNotFound = errors.New("no secure data stored for this owner and data type")

// Dispatcher routes secure-storage commands. The service-backed and
// repository-direct paths are explicit so each can be tested separately;
// the repository path is the fallback when the coordinator failed to
// initialize.
type Dispatcher struct {
	store securestore.Store
	ring  *crypto.Keyring

	// getService returns the coordinator or an error; indirection so tests
	// can force the fallback path.
	getService func() (*service.Service, error)
}

// NewDispatcher builds a dispatcher over the given repository. The keyring
// may be nil when only pre-encrypted payloads are handled.
func NewDispatcher(store securestore.Store, ring *crypto.Keyring, svcCfg service.Config) *Dispatcher {
	return &Dispatcher{
		store: store,
		ring:  ring,
		getService: func() (*service.Service, error) {
			return service.Get(svcCfg)
		},
	}
}

// StoreRequest carries the atomic encrypted unit to persist.
type StoreRequest struct {
	OwnerID          string
	DataType         string
	EncryptedPayload []byte
	Nonce            []byte
	Algorithm        string
	KeyID            string
	// ExpiresAt is nil for records that never expire.
	ExpiresAt *time.Time
}

// StoreResult reports a successful write.
type StoreResult struct {
	Stored     bool
	StorageKey string
	StoredAt   time.Time
}

// RetrieveResult returns the stored unit. The four encryption fields are
// always present together; a partial record is never returned.
type RetrieveResult struct {
	EncryptedPayload []byte
	Nonce            []byte
	Algorithm        string
	KeyID            string
	StoredAt         time.Time
}

// DeleteResult reports a delete.
type DeleteResult struct {
	Deleted   bool
	DeletedAt time.Time
}

func (r StoreRequest) validate() error {
	if r.OwnerID == "" {
		return fmt.Errorf("owner id is required")
	}
	if r.DataType == "" {
		return fmt.Errorf("data type is required")
	}
	if len(r.EncryptedPayload) == 0 {
		return fmt.Errorf("encrypted payload is required")
	}
	if len(r.Nonce) == 0 {
		return fmt.Errorf("nonce is required")
	}
	if r.Algorithm == "" {
		return fmt.Errorf("algorithm is required")
	}
	if r.KeyID == "" {
		return fmt.Errorf("key id is required")
	}
	return nil
}

// Store persists the encrypted unit, overwriting any previous record for the
// same (owner, data type) pair.
func (d *Dispatcher) Store(req StoreRequest) (*StoreResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	logging.Payloadf("command: store", map[string]any{
		"owner_id":  req.OwnerID,
		"data_type": req.DataType,
		"algorithm": req.Algorithm,
		"key_id":    req.KeyID,
		"payload":   req.EncryptedPayload,
	})
	rec, err := d.store.StoreRecord(req.OwnerID, req.DataType, req.EncryptedPayload, req.Nonce, req.Algorithm, req.KeyID, req.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("store secure data: %w", err)
	}
	return &StoreResult{Stored: true, StorageKey: rec.StorageKey, StoredAt: rec.StoredAt}, nil
}

// Retrieve returns the live record or ErrNotFound. Absence at the repository
// layer is a normal result; the promotion to a failure happens here because
// the caller required existence.
func (d *Dispatcher) Retrieve(ownerID, dataType string) (*RetrieveResult, error) {
	if ownerID == "" || dataType == "" {
		return nil, fmt.Errorf("owner id and data type are required")
	}
	rec, err := d.store.RetrieveRecord(ownerID, dataType)
	if err != nil {
		return nil, fmt.Errorf("retrieve secure data: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return &RetrieveResult{
		EncryptedPayload: rec.EncryptedPayload,
		Nonce:            rec.Nonce,
		Algorithm:        rec.Algorithm,
		KeyID:            rec.KeyID,
		StoredAt:         rec.StoredAt,
	}, nil
}

// Delete removes the record if present. Deleting an absent record is not an
// error; Deleted is false.
func (d *Dispatcher) Delete(ownerID, dataType string) (*DeleteResult, error) {
	if ownerID == "" || dataType == "" {
		return nil, fmt.Errorf("owner id and data type are required")
	}
	deleted, err := d.store.DeleteRecord(ownerID, dataType)
	if err != nil {
		return nil, fmt.Errorf("delete secure data: %w", err)
	}
	return &DeleteResult{Deleted: deleted, DeletedAt: time.Now()}, nil
}

// CleanupExpired triggers a sweep. The service path gives mutual exclusion
// with the scheduled sweep; when the service is unavailable the repository
// is swept directly rather than failing the operation.
func (d *Dispatcher) CleanupExpired() (int, error) {
	svc, err := d.getService()
	if err == nil {
		report, cerr := svc.ManualCleanup()
		if cerr == nil {
			return report.RemovedCount, nil
		}
		if !errors.Is(cerr, service.ErrServiceStopped) && !errors.Is(cerr, service.ErrServiceUnavailable) {
			return 0, cerr
		}
		// fall through to the direct path
	}
	logging.Debugf("command: cleanup falling back to direct repository sweep")
	return d.store.CleanupExpired()
}

// Statistics returns aggregated usage info, preferring the service path.
func (d *Dispatcher) Statistics(ownerID string) ([]model.StorageStat, error) {
	svc, err := d.getService()
	if err == nil {
		stats, serr := svc.Statistics(ownerID)
		if serr == nil {
			return stats, nil
		}
		if !errors.Is(serr, service.ErrServiceStopped) && !errors.Is(serr, service.ErrServiceUnavailable) {
			return nil, serr
		}
	}
	logging.Debugf("command: statistics falling back to direct repository query")
	return d.store.GetStorageStats(ownerID)
}

// StoreSecret encrypts plaintext under the keyring's active key and persists
// the result. This is the convenience path the CLI uses; callers with
// pre-encrypted data use Store directly.
func (d *Dispatcher) StoreSecret(ownerID, dataType string, plaintext security.Sensitive[[]byte], expiresAt *time.Time) (*StoreResult, error) {
	if d.ring == nil {
		return nil, fmt.Errorf("no keyring configured")
	}
	ciphertext, nonce, algorithm, keyID, err := d.ring.Encrypt(plaintext.Value())
	if err != nil {
		return nil, fmt.Errorf("encrypt secure data: %w", err)
	}
	return d.Store(StoreRequest{
		OwnerID:          ownerID,
		DataType:         dataType,
		EncryptedPayload: ciphertext,
		Nonce:            nonce,
		Algorithm:        algorithm,
		KeyID:            keyID,
		ExpiresAt:        expiresAt,
	})
}

// RevealSecret retrieves and decrypts a stored secret. Decryption failures
// surface as crypto.ErrDecryptionFailed, distinct from storage failures and
// from ErrNotFound.
func (d *Dispatcher) RevealSecret(ownerID, dataType string) (security.Sensitive[[]byte], error) {
	var zero security.Sensitive[[]byte]
	if d.ring == nil {
		return zero, fmt.Errorf("no keyring configured")
	}
	res, err := d.Retrieve(ownerID, dataType)
	if err != nil {
		return zero, err
	}
	plaintext, err := d.ring.Decrypt(res.EncryptedPayload, res.Nonce, res.Algorithm, res.KeyID)
	if err != nil {
		return zero, err
	}
	return security.NewSensitive(plaintext), nil
}
