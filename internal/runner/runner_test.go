// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package runner

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func TestDecodeOutput(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	utf16, err := enc.Bytes([]byte("Ubuntu\r\nDebian\r\n"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	withBOM := append([]byte{0xFF, 0xFE}, utf16...)

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain ascii", []byte("Ubuntu\n"), "Ubuntu\n"},
		{"utf16le", utf16, "Ubuntu\r\nDebian\r\n"},
		{"utf16le with bom", withBOM, "Ubuntu\r\nDebian\r\n"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeOutput(tt.in); got != tt.want {
				t.Fatalf("DecodeOutput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResultErr(t *testing.T) {
	ok := &Result{}
	if err := ok.Err("git", []string{"push"}); err != nil {
		t.Fatalf("expected nil error for exit 0, got %v", err)
	}

	failed := &Result{ExitCode: 128, Stderr: "fatal: Authentication failed\n"}
	err := failed.Err("git", []string{"push", "-u", "origin", "user-bob"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", err)
	}
	if exitErr.Code != 128 {
		t.Fatalf("Code = %d, want 128", exitErr.Code)
	}
	if !strings.Contains(err.Error(), "git push -u origin user-bob") || !strings.Contains(err.Error(), "Authentication failed") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCommandLine_QuotesArguments(t *testing.T) {
	got := CommandLine("git", []string{"commit", "-m", "Add key for bob", ""})
	want := `git commit -m "Add key for bob" ""`
	if got != want {
		t.Fatalf("CommandLine() = %q, want %q", got, want)
	}
}

func TestApply_MergesEnv(t *testing.T) {
	o := Apply(WithEnv(map[string]string{"A": "1"}), WithEnv(map[string]string{"B": "2"}))
	if o.Env["A"] != "1" || o.Env["B"] != "2" {
		t.Fatalf("env not merged: %+v", o.Env)
	}
}
