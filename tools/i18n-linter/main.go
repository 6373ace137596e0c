// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every message ID passed to i18n.T exists in the
// English locale and that every other locale carries the same IDs.
//
//	go run ./tools/i18n-linter
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "active.en.yaml"
	projectRoot   = "."
)

var usedKeyRe = regexp.MustCompile(`i18n\.T\("([^"]+)"`)

// Result lists the problems found in one lint pass. Each slice is sorted.
type Result struct {
	// Undefined IDs are used in code but absent from the primary locale.
	Undefined []string
	// Orphaned IDs are in the primary locale but never used.
	Orphaned []string
	// Missing maps a secondary locale file to the IDs it lacks.
	Missing map[string][]string
}

// Failed reports whether the result should fail a build. Orphans only warn.
func (r Result) Failed() bool {
	return len(r.Undefined) > 0 || len(r.Missing) > 0
}

func main() {
	res, err := lint(projectRoot, filepath.Join(projectRoot, localesDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	report(os.Stdout, res)
	if res.Failed() {
		os.Exit(1)
	}
}

func lint(root, locales string) (Result, error) {
	res := Result{Missing: map[string][]string{}}

	used, err := findUsedKeys(root)
	if err != nil {
		return res, fmt.Errorf("scan sources: %w", err)
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return res, fmt.Errorf("load primary locale %s: %w", primaryLocale, err)
	}

	res.Undefined = difference(used, primary)
	res.Orphaned = difference(primary, used)

	files, err := filepath.Glob(filepath.Join(locales, "active.*.yaml"))
	if err != nil {
		return res, err
	}
	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return res, fmt.Errorf("load %s: %w", file, err)
		}
		if missing := difference(primary, keys); len(missing) > 0 {
			res.Missing[filepath.Base(file)] = missing
		}
	}
	return res, nil
}

func report(w io.Writer, res Result) {
	section := func(title string, items []string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(items) == 0 {
			fmt.Fprintln(w, "  ✨ None found.")
		}
		for _, k := range items {
			fmt.Fprintf(w, "  - %s\n", k)
		}
	}
	section("Undefined keys (used in code, not in "+primaryLocale+")", res.Undefined)
	section("Orphaned keys (in "+primaryLocale+", not used in code)", res.Orphaned)

	var files []string
	for f := range res.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		section("Missing keys in "+f, res.Missing[f])
	}

	switch {
	case res.Failed():
		fmt.Fprintln(w, "❌ Found issues that need to be addressed.")
	case len(res.Orphaned) > 0:
		fmt.Fprintln(w, "⚠️  Found orphaned keys. Please consider removing them.")
	default:
		fmt.Fprintln(w, "✅ All translation files are consistent!")
	}
}

// findUsedKeys scans non-test .go files under root for i18n.T("key") calls.
// Directories starting with "_" or "." and the tools tree are skipped.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into dot-separated keys. Flat dotted keys
// pass through unchanged.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			newPrefix := k
			if prefix != "" {
				newPrefix = prefix + "." + k
			}
			flattenYAML(newPrefix, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
