// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSensitive_RedactsEverywhere(t *testing.T) {
	cases := []struct {
		name  string
		value string
	}{
		{"normal", "hunter2"},
		{"empty", ""},
		{"short", "x"},
		{"contains marker", "prefix [REDACTED] suffix"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSensitive(c.value)
			for _, rendered := range []string{
				s.String(),
				s.GoString(),
				fmt.Sprintf("%v", s),
				fmt.Sprintf("%+v", s),
				fmt.Sprintf("%#v", s),
				fmt.Sprintf("%s", s),
				fmt.Sprintf("%q", s),
			} {
				if c.value != "" && strings.Contains(rendered, c.value) {
					t.Fatalf("rendered output leaked the value: %q", rendered)
				}
				if !strings.Contains(rendered, RedactionMarker) {
					t.Fatalf("expected redaction marker in %q", rendered)
				}
			}
		})
	}
}

func TestSensitive_NonStringValues(t *testing.T) {
	n := NewSensitive(4242)
	if got := fmt.Sprintf("%d", n); strings.Contains(got, "4242") {
		t.Fatalf("numeric value leaked through formatting: %q", got)
	}
	b := NewSensitive([]byte("raw-bytes"))
	if got := fmt.Sprintf("%x", b); strings.Contains(got, "raw-bytes") {
		t.Fatalf("byte value leaked through formatting: %q", got)
	}
}

func TestSensitive_ValuePreserved(t *testing.T) {
	s := NewSensitive("token-value")
	if s.Value() != "token-value" {
		t.Fatalf("Value must return the wrapped value unchanged")
	}
	// Value does not consume the wrapper.
	if s.Value() != "token-value" {
		t.Fatalf("repeated Value calls must keep returning the value")
	}
}

func TestSensitive_ExposeZeroesWrapper(t *testing.T) {
	s := NewSensitive("one-shot")
	if got := s.Expose(); got != "one-shot" {
		t.Fatalf("Expose must return the wrapped value, got %q", got)
	}
	if s.Value() != "" {
		t.Fatalf("wrapper must be zeroed after Expose, got %q", s.Value())
	}
}

func TestSensitive_MarshalJSONRedacts(t *testing.T) {
	payload := struct {
		User     string            `json:"user"`
		Password Sensitive[string] `json:"password"`
	}{User: "alice", Password: NewSensitive("hunter2")}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(out), "hunter2") {
		t.Fatalf("JSON output leaked the value: %s", out)
	}
	if !strings.Contains(string(out), RedactionMarker) {
		t.Fatalf("expected redaction marker in JSON output: %s", out)
	}
}

func TestSensitive_UnmarshalJSONConstructs(t *testing.T) {
	var s Sensitive[string]
	if err := json.Unmarshal([]byte(`"incoming"`), &s); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if s.Value() != "incoming" {
		t.Fatalf("unmarshal must construct the wrapped value, got %q", s.Value())
	}
}

func TestEqual_ComparesWithoutExposing(t *testing.T) {
	a := NewSensitive("same")
	b := NewSensitive("same")
	c := NewSensitive("other")
	if !Equal(a, b) {
		t.Fatalf("expected equal wrappers to compare equal")
	}
	if Equal(a, c) {
		t.Fatalf("expected different wrappers to compare unequal")
	}
	// Comparison must not zero either side.
	if a.Value() != "same" || c.Value() != "other" {
		t.Fatalf("Equal must not consume its operands")
	}
}
