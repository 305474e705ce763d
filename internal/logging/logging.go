// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package logging provides the application-wide logging helpers. Structured
// payloads must never be passed to the raw formatting functions directly;
// use Payloadf, which sanitizes them first.
package logging

import (
	"encoding/json"
	"log"

	"github.com/moneta-app/moneta/internal/sanitize"
)

var debugEnabled bool

// policy is the sanitization policy applied to logged payloads. Replaced at
// startup when the user declares extra sensitive fields.
var policy = sanitize.DefaultPolicy()

// SetDebug enables or disables debug logging for the application.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// SetPolicy replaces the sanitization policy used by Payloadf.
func SetPolicy(p sanitize.Policy) {
	policy = p
}

// Debugf logs a formatted debug message when debug is enabled.
// Debugf is a no-op when debug is disabled.
func Debugf(format string, v ...any) {
	if debugEnabled {
		log.Printf(format, v...)
	}
}

// Infof logs an informational formatted message.
func Infof(format string, v ...any) {
	log.Printf(format, v...)
}

// Errorf logs an error formatted message.
func Errorf(format string, v ...any) {
	log.Printf(format, v...)
}

// Printf is a convenience alias for Infof.
func Printf(format string, v ...any) {
	Infof(format, v...)
}

// Payloadf logs a message together with a structured payload. The payload is
// sanitized before emission; fields matching the policy are replaced by the
// redaction marker. This is the only logging path for request/response
// payloads.
func Payloadf(msg string, payload any) {
	if !debugEnabled {
		return
	}
	clean := sanitize.Sanitize(payload, policy)
	b, err := json.Marshal(clean)
	if err != nil {
		log.Printf("%s payload=<unencodable: %v>", msg, err)
		return
	}
	log.Printf("%s payload=%s", msg, b)
}
