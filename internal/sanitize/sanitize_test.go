// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package sanitize

import (
	"reflect"
	"testing"

	"github.com/moneta-app/moneta/internal/security"
)

func TestPolicyMatches(t *testing.T) {
	p := DefaultPolicy()
	cases := []struct {
		field string
		want  bool
	}{
		{"password", true},
		{"Password", true},
		{"PASSWORD", true},
		{"api_key", true},
		{"refresh_token", true},
		{"client_secret", true},
		{"pin", true},
		{"username", false},
		{"amount", false},
		{"tokenizer", false},
	}
	for _, c := range cases {
		if got := p.Matches(c.field); got != c.want {
			t.Fatalf("Matches(%q) = %v, want %v", c.field, got, c.want)
		}
	}
}

func TestSanitize_NestedStructures(t *testing.T) {
	p := DefaultPolicy()
	in := map[string]any{
		"user": "alice",
		"credentials": map[string]any{
			"password": "hunter2",
		},
		"accounts": []any{
			map[string]any{
				"iban":      "DE02120300000000202051",
				"api_token": "tok-123",
			},
		},
	}

	out, ok := Sanitize(in, p).(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", Sanitize(in, p))
	}
	if out["user"] != "alice" {
		t.Fatalf("non-sensitive field altered: %v", out["user"])
	}
	// "credentials" matches the policy by name, so the whole subtree is gone.
	if out["credentials"] != security.RedactionMarker {
		t.Fatalf("expected credentials subtree redacted, got %v", out["credentials"])
	}
	accounts := out["accounts"].([]any)
	acct := accounts[0].(map[string]any)
	if acct["iban"] != "DE02120300000000202051" {
		t.Fatalf("non-sensitive nested field altered: %v", acct["iban"])
	}
	if acct["api_token"] != security.RedactionMarker {
		t.Fatalf("expected nested token redacted, got %v", acct["api_token"])
	}

	// Input must be untouched.
	if in["credentials"].(map[string]any)["password"] != "hunter2" {
		t.Fatalf("Sanitize modified its input")
	}
}

func TestSanitize_StringMapAndPassthrough(t *testing.T) {
	p := DefaultPolicy()

	m := map[string]string{"secret": "s", "label": "savings"}
	out := Sanitize(m, p).(map[string]string)
	want := map[string]string{"secret": security.RedactionMarker, "label": "savings"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("unexpected sanitized map: %v", out)
	}

	// Scalars pass through unchanged.
	if got := Sanitize(42, p); got != 42 {
		t.Fatalf("scalar passthrough failed: %v", got)
	}
	if got := Sanitize("plain", p); got != "plain" {
		t.Fatalf("string passthrough failed: %v", got)
	}
}

func TestNewPolicy_GlobDetection(t *testing.T) {
	p := NewPolicy("exact", "pre_*", " Spaced ", "")
	if !p.Matches("exact") || !p.Matches("EXACT") {
		t.Fatalf("literal entry not matched")
	}
	if !p.Matches("pre_anything") {
		t.Fatalf("glob entry not matched")
	}
	if !p.Matches("spaced") {
		t.Fatalf("entries must be trimmed and lowercased")
	}
	if p.Matches("") {
		t.Fatalf("empty entries must be ignored")
	}
}
