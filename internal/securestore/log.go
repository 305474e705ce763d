// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package securestore

import "log"

var debugEnabled bool

// SetDebug enables or disables store debug logging. Disabled by default.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

func storeLogf(format string, v ...any) {
	if debugEnabled {
		log.Printf(format, v...)
	}
}
