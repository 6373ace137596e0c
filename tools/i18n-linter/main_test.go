// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFlattenYAML(t *testing.T) {
	m := map[string]interface{}{
		"top":         map[string]interface{}{"sub": "value"},
		"flat.dotted": "v",
	}
	keys := make(map[string]struct{})
	flattenYAML("", m, keys)
	for _, want := range []string{"top.sub", "flat.dotted"} {
		if _, ok := keys[want]; !ok {
			t.Fatalf("expected %s in keys, got %v", want, keys)
		}
	}
}

func TestLint(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "internal", "a.go"), `package a
func f() {
	_ = i18n.T("hint.used")
	_ = i18n.T("hint.undefined", 3)
}`)
	write(t, filepath.Join(root, "internal", "a_test.go"), `package a
func g() { _ = i18n.T("only.in.tests") }`)
	write(t, filepath.Join(root, "_examples", "x.go"), `package x
func h() { _ = i18n.T("vendored.key") }`)

	locales := filepath.Join(root, "locales")
	write(t, filepath.Join(locales, "active.en.yaml"), "hint.used: \"Used\"\nhint.orphan: \"Orphan\"\n")
	write(t, filepath.Join(locales, "active.de.yaml"), "hint.orphan: \"Verwaist\"\n")

	res, err := lint(root, locales)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if !slices.Equal(res.Undefined, []string{"hint.undefined"}) {
		t.Fatalf("unexpected undefined keys: %v", res.Undefined)
	}
	if !slices.Equal(res.Orphaned, []string{"hint.orphan"}) {
		t.Fatalf("unexpected orphaned keys: %v", res.Orphaned)
	}
	if !slices.Equal(res.Missing["active.de.yaml"], []string{"hint.used"}) {
		t.Fatalf("unexpected missing keys: %v", res.Missing)
	}
	if !res.Failed() {
		t.Fatalf("expected the result to fail")
	}

	var buf bytes.Buffer
	report(&buf, res)
	if !strings.Contains(buf.String(), "Missing keys in active.de.yaml") {
		t.Fatalf("report lacks missing section:\n%s", buf.String())
	}
}

// The repository's own locales must pass.
func TestRepositoryLocales(t *testing.T) {
	root := filepath.Join("..", "..")
	res, err := lint(root, filepath.Join(root, localesDir))
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	if res.Failed() {
		var buf bytes.Buffer
		report(&buf, res)
		t.Fatalf("locale problems:\n%s", buf.String())
	}
}
