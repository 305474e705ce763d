// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/moneta-app/moneta/internal/model"
)

// RestoreOptions controls how a backup is applied.
type RestoreOptions struct {
	// Full wipes the table before restoring; otherwise existing records are
	// kept and only missing keys are imported.
	Full bool
}

// WriteBackup writes zstd-compressed JSON backup data to w. The payloads in
// the backup are the stored ciphertext; nothing is decrypted on the way out.
func WriteBackup(data *model.BackupData, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	defer func() { _ = zw.Close() }()
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// ReadBackup reads a zstd-compressed JSON backup from r.
func ReadBackup(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &data, nil
}

// Restore reads a zstd-compressed JSON backup and imports it via the Store.
func Restore(r io.Reader, opts RestoreOptions, st Store) error {
	data, err := ReadBackup(r)
	if err != nil {
		return err
	}
	if opts.Full {
		return st.ImportDataFromBackup(data)
	}
	return st.IntegrateDataFromBackup(data)
}
