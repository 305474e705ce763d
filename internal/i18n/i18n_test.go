// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"strings"
	"testing"
)

func TestT_TranslatesKnownMessage(t *testing.T) {
	Init("en")
	got := T("secure.not_found", "alice", "bank_credentials")
	if !strings.Contains(got, "alice") || !strings.Contains(got, "bank_credentials") {
		t.Fatalf("expected formatted message, got %q", got)
	}
	if got == "secure.not_found" {
		t.Fatalf("expected translation, got the message id back")
	}
}

func TestT_UnknownIDFallsBackToID(t *testing.T) {
	Init("en")
	if got := T("secure.does_not_exist"); got != "secure.does_not_exist" {
		t.Fatalf("expected message id fallback, got %q", got)
	}
}

func TestSetLang_SwitchesLanguage(t *testing.T) {
	Init("en")
	en := T("secure.restore_done")

	SetLang("de")
	defer SetLang("en")
	de := T("secure.restore_done")

	if en == de {
		t.Fatalf("expected different translations, got %q twice", en)
	}
	if de != "Wiederherstellung abgeschlossen." {
		t.Fatalf("unexpected German translation: %q", de)
	}
}

func TestT_InitializesLazily(t *testing.T) {
	localizer = nil
	if got := T("secure.restore_done"); got != "Restore complete." {
		t.Fatalf("expected lazy English init, got %q", got)
	}
}
