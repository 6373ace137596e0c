// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestInitAndAvailableLocales(t *testing.T) {
	Init("en")
	if Lang() != "en" {
		t.Fatalf("expected lang 'en', got %q", Lang())
	}
	if got := SortedLocales(); !slices.Equal(got, []string{"de", "en"}) {
		t.Fatalf("unexpected locales: %v", got)
	}
}

func TestInit_UnknownFallsBackToEnglish(t *testing.T) {
	Init("xx")
	defer Init("en")
	if Lang() != "en" {
		t.Fatalf("expected fallback to 'en', got %q", Lang())
	}
	if got := T("prompt.username.title"); got != "Username" {
		t.Fatalf("unexpected fallback text: %q", got)
	}
}

func TestT_BasicAndFormatting(t *testing.T) {
	Init("en")

	if got := T("summary.title"); got != "Onboarding summary" {
		t.Fatalf("expected 'Onboarding summary', got %q", got)
	}

	if got := T("summary.identity", "bob"); got != "Identity: bob" {
		t.Fatalf("unexpected formatted translation: %q", got)
	}

	got := T("hint.distro_init", map[string]any{"Distro": "Ubuntu"})
	if !strings.Contains(got, "wsl -d Ubuntu") {
		t.Fatalf("template data not applied: %q", got)
	}

	if got := T("no.such.key"); got != "no.such.key" {
		t.Fatalf("unknown IDs should be returned as-is, got %q", got)
	}
}

func TestT_German(t *testing.T) {
	Init("de")
	defer Init("en")
	if got := T("prompt.username.title"); got != "Benutzername" {
		t.Fatalf("expected German text, got %q", got)
	}
}

// Every locale must carry the same keys as English.
func TestLocalesHaveSameKeys(t *testing.T) {
	load := func(tag string) map[string]string {
		data, err := localeFS.ReadFile("locales/active." + tag + ".yaml")
		if err != nil {
			t.Fatalf("read %s: %v", tag, err)
		}
		m := map[string]string{}
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", tag, err)
		}
		return m
	}
	en := load("en")
	for _, tag := range SortedLocales() {
		other := load(tag)
		for k := range en {
			if _, ok := other[k]; !ok {
				t.Errorf("locale %s is missing %q", tag, k)
			}
		}
		for k := range other {
			if _, ok := en[k]; !ok {
				t.Errorf("locale %s has orphaned key %q", tag, k)
			}
		}
	}
}
