// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n provides the operator-facing text for devboot: prompts, hints
// for fatal preconditions and the run summary. It uses go-i18n with YAML
// message files embedded into the binary.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	current   string
)

// Init loads every embedded locale and selects lang. Unknown languages fall
// back to English.
func Init(lang string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		_, _ = bundle.ParseMessageFileBytes(data, f.Name())
	}

	current = lang
	if _, ok := AvailableLocales()[lang]; !ok {
		current = "en"
	}
	localizer = i18n.NewLocalizer(bundle, current, "en")
}

// Lang returns the active language tag.
func Lang() string {
	if localizer == nil {
		Init("en")
	}
	return current
}

// AvailableLocales lists the embedded locale tags.
func AvailableLocales() map[string]struct{} {
	out := map[string]struct{}{}
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		out[strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".yaml")] = struct{}{}
	}
	return out
}

// SortedLocales returns AvailableLocales as a sorted slice.
func SortedLocales() []string {
	var tags []string
	for k := range AvailableLocales() {
		tags = append(tags, k)
	}
	sort.Strings(tags)
	return tags
}

// T translates messageID. A single map[string]any argument is passed to the
// message template; any other arguments are applied with fmt.Sprintf to the
// translated text. Unknown IDs are returned as-is.
func T(messageID string, args ...any) string {
	if localizer == nil {
		Init("en")
	}
	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(args) == 1 {
		if data, ok := args[0].(map[string]any); ok {
			cfg.TemplateData = data
			args = nil
		}
	}
	msg, err := localizer.Localize(cfg)
	if err != nil {
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
