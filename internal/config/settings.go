// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package config

// DatabaseSettings selects the storage backend.
type DatabaseSettings struct {
	// Type is one of "sqlite", "postgres", "mysql".
	Type string `mapstructure:"type" yaml:"type"`
	// DSN is the connection string; for sqlite, the file path.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// EncryptionSettings configures the key used for new encryptions.
type EncryptionSettings struct {
	KeyID string `mapstructure:"key_id" yaml:"key_id"`
	// Key is the base64-encoded 32-byte key material.
	Key       string `mapstructure:"key" yaml:"key"`
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`
}

// CleanupSettings tunes the expiry sweep scheduler.
type CleanupSettings struct {
	// Interval is a Go duration string, e.g. "15m".
	Interval string `mapstructure:"interval" yaml:"interval"`
}

// SanitizeSettings points at an optional user-declared redaction policy.
type SanitizeSettings struct {
	PolicyFile string `mapstructure:"policy_file" yaml:"policy_file,omitempty"`
}

// Settings is the full typed configuration for the secure storage subsystem.
type Settings struct {
	Database   DatabaseSettings   `mapstructure:"database" yaml:"database"`
	Language   string             `mapstructure:"language" yaml:"language"`
	Debug      bool               `mapstructure:"debug" yaml:"debug"`
	Encryption EncryptionSettings `mapstructure:"encryption" yaml:"encryption"`
	Cleanup    CleanupSettings    `mapstructure:"cleanup" yaml:"cleanup"`
	Sanitize   SanitizeSettings   `mapstructure:"sanitize" yaml:"sanitize,omitempty"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	var s Settings
	s.Database.Type = "sqlite"
	s.Database.DSN = "./moneta.db"
	s.Language = "en"
	s.Encryption.KeyID = "k1"
	s.Encryption.Algorithm = "AES-256-GCM"
	s.Cleanup.Interval = "15m"
	return s
}
