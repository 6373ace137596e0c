// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package prompt

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
)

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value must not be empty")
	}
	return nil
}

func TestLine_RepromptsUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("\n   \nbob@example.com\n"), &out)

	got, err := p.Ask(context.Background(), Question{Title: "Git email", Validate: notEmpty})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if got != "bob@example.com" {
		t.Fatalf("Ask() = %q", got)
	}
	if n := strings.Count(out.String(), "Git email: "); n != 3 {
		t.Fatalf("expected 3 prompts, got %d: %q", n, out.String())
	}
	if strings.Count(out.String(), "must not be empty") != 2 {
		t.Fatalf("expected two validation messages: %q", out.String())
	}
}

func TestLine_LastLineWithoutNewline(t *testing.T) {
	p := NewLine(strings.NewReader("alice"), &bytes.Buffer{})
	got, err := p.Ask(context.Background(), Question{Title: "Username"})
	if err != nil || got != "alice" {
		t.Fatalf("Ask() = %q, %v", got, err)
	}
}

func TestLine_EOFBeforeValidAnswer(t *testing.T) {
	p := NewLine(strings.NewReader("\n"), &bytes.Buffer{})
	_, err := p.Ask(context.Background(), Question{Title: "Username", Validate: notEmpty})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestLine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewLine(strings.NewReader("alice\n"), &bytes.Buffer{})
	if _, err := p.Ask(ctx, Question{Title: "Username"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLine_ShowsDescription(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("x\n"), &out)
	if _, err := p.Ask(context.Background(), Question{Title: "Username", Description: "letters and digits"}); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !strings.Contains(out.String(), "Username (letters and digits): ") {
		t.Fatalf("unexpected prompt: %q", out.String())
	}
}

func TestLine_KeepsSurroundingWhitespace(t *testing.T) {
	alnum := regexp.MustCompile(`^[A-Za-z0-9]+$`)
	onlyAlnum := func(s string) error {
		if !alnum.MatchString(s) {
			return errors.New("letters and digits only")
		}
		return nil
	}
	var out bytes.Buffer
	p := NewLine(strings.NewReader(" bob\r\nbob\t\nbob\r\n"), &out)

	got, err := p.Ask(context.Background(), Question{Title: "Username", Validate: onlyAlnum})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if got != "bob" {
		t.Fatalf("Ask() = %q", got)
	}
	if n := strings.Count(out.String(), "letters and digits only"); n != 2 {
		t.Fatalf("expected both padded answers to be rejected, got %d: %q", n, out.String())
	}
}
