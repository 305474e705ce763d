// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package sanitize redacts sensitive fields from structured values before
// they reach a logging sink. The policy is data, not code: a set of field
// names and glob patterns that can be extended without touching the
// sanitizer logic. Every logged command payload must pass through Sanitize
// before emission; there is no opt-out path for fields matching the policy.
package sanitize

import (
	"path"
	"strings"

	"github.com/moneta-app/moneta/internal/security"
)

// Policy enumerates the field names and patterns considered sensitive.
// Matching is case-insensitive. A pattern entry may use shell-style globs
// (e.g. "*_token").
type Policy struct {
	names    map[string]struct{}
	patterns []string
}

// NewPolicy builds a policy from literal field names and glob patterns.
// Entries containing a glob metacharacter are treated as patterns.
func NewPolicy(entries ...string) Policy {
	p := Policy{names: make(map[string]struct{})}
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if strings.ContainsAny(e, "*?[") {
			p.patterns = append(p.patterns, e)
		} else {
			p.names[e] = struct{}{}
		}
	}
	return p
}

// DefaultPolicy covers the field names Moneta's command payloads use for
// credentials and tokens.
func DefaultPolicy() Policy {
	return NewPolicy(
		"password",
		"passphrase",
		"secret",
		"token",
		"api_key",
		"apikey",
		"private_key",
		"credentials",
		"pin",
		"payload",
		"*_token",
		"*_secret",
	)
}

// Matches reports whether a field name is sensitive under the policy.
func (p Policy) Matches(field string) bool {
	f := strings.ToLower(field)
	if _, ok := p.names[f]; ok {
		return true
	}
	for _, pat := range p.patterns {
		if ok, err := path.Match(pat, f); err == nil && ok {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of v with every field matching the policy replaced
// by the redaction marker, at any nesting depth. Non-matching fields and the
// overall structure are preserved verbatim. Supported shapes are
// map[string]any, map[string]string, and []any; other values pass through
// unchanged.
func Sanitize(v any, p Policy) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if p.Matches(k) {
				out[k] = security.RedactionMarker
				continue
			}
			out[k] = Sanitize(val, p)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			if p.Matches(k) {
				out[k] = security.RedactionMarker
				continue
			}
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Sanitize(val, p)
		}
		return out
	default:
		return v
	}
}
