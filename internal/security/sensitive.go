// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package security provides in-process protection for sensitive values.
// The Sensitive wrapper guarantees that a wrapped value can never leak into
// formatted output, logs, or serialized data by construction: every textual
// representation is the fixed redaction marker, and the only way to reach the
// underlying value is an explicit accessor.
package security

import (
	"encoding/json"
	"fmt"
	"io"
)

// RedactionMarker is the fixed placeholder substituted for any sensitive
// value in logs and serialized output.
const RedactionMarker = "[REDACTED]"

// Sensitive carries exactly one value of type T and redacts it everywhere a
// textual representation is produced. The zero value wraps T's zero value.
type Sensitive[T any] struct {
	value T
}

// NewSensitive wraps a value. The wrap is lossless; Value and Expose return
// the identical value.
func NewSensitive[T any](v T) Sensitive[T] {
	return Sensitive[T]{value: v}
}

// Value returns the underlying value without consuming the wrapper. This is
// the explicit read accessor; there is no implicit conversion path.
func (s Sensitive[T]) Value() T {
	return s.value
}

// Expose extracts the underlying value and resets the wrapper to T's zero
// value. Use this when handing the value off and the wrapper should not
// retain a copy.
func (s *Sensitive[T]) Expose() T {
	v := s.value
	var zero T
	s.value = zero
	return v
}

// String redacts the value for fmt.Print* convenience.
func (s Sensitive[T]) String() string { return RedactionMarker }

// GoString redacts the value for %#v output.
func (s Sensitive[T]) GoString() string { return RedactionMarker }

// Format implements fmt.Formatter to ensure `%v`, `%+v`, `%#v` and friends
// are redacted even for nested or composite T.
func (s Sensitive[T]) Format(f fmt.State, c rune) {
	if _, err := io.WriteString(f, RedactionMarker); err != nil {
		_ = err // intentionally ignore write error when formatting for logs
	}
}

// MarshalJSON redacts the value in JSON marshaling.
func (s Sensitive[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactionMarker)
}

// UnmarshalJSON constructs the wrapper directly from the plain JSON form of
// T, so callers can receive sensitive fields from untrusted input without an
// intermediate unwrapped exposure.
func (s *Sensitive[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.value = v
	return nil
}

// MarshalText redacts the value for text encoding.
func (s Sensitive[T]) MarshalText() ([]byte, error) {
	return []byte(RedactionMarker), nil
}

// Equal compares the underlying values of two wrappers. It exists so
// legitimate comparisons (e.g. password confirmation) work without weakening
// the redaction guarantee.
func Equal[T comparable](a, b Sensitive[T]) bool {
	return a.value == b.value
}
