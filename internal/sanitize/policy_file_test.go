// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package sanitize

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPolicy_MergesWithDefaults(t *testing.T) {
	p, err := LoadPolicy(strings.NewReader("fields:\n  - iban\n  - \"otp_*\"\n"))
	if err != nil {
		t.Fatalf("LoadPolicy failed: %v", err)
	}
	if !p.Matches("iban") || !p.Matches("otp_code") {
		t.Fatalf("expected user-declared fields to match")
	}
	// Built-ins must survive the merge.
	if !p.Matches("password") || !p.Matches("refresh_token") {
		t.Fatalf("default fields lost after merge")
	}
}

func TestLoadPolicy_InvalidYAML(t *testing.T) {
	if _, err := LoadPolicy(strings.NewReader("fields: [unterminated")); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}

func TestLoadPolicyFile_MissingFileYieldsDefaults(t *testing.T) {
	p, err := LoadPolicyFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing policy file must not error, got: %v", err)
	}
	if !p.Matches("password") {
		t.Fatalf("expected default policy for missing file")
	}
}

func TestLoadPolicyFile_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("fields:\n  - account_number\n"), 0600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	p, err := LoadPolicyFile(path)
	if err != nil {
		t.Fatalf("LoadPolicyFile failed: %v", err)
	}
	if !p.Matches("account_number") {
		t.Fatalf("expected field from file to match")
	}
}
