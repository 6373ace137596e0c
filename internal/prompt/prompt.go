// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package prompt reads operator input. On a terminal it renders huh forms;
// otherwise (piped stdin, CI, tests) it falls back to a plain line reader.
// Both re-ask until the answer passes validation.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before a valid answer was given.
var ErrNoInput = errors.New("no input available")

// Question describes one free-text prompt.
type Question struct {
	Title       string
	Description string
	Placeholder string
	// Validate rejects an answer; the operator is asked again. Only the line
	// terminator is stripped before validation.
	Validate func(string) error
}

// Prompter asks questions and returns validated answers.
type Prompter interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// ForTerminal returns a huh-backed Prompter when in is a terminal and a line
// reader over in otherwise.
func ForTerminal(in *os.File, out io.Writer) Prompter {
	if term.IsTerminal(int(in.Fd())) {
		return &Form{}
	}
	return NewLine(in, out)
}

// Form prompts with huh inputs.
type Form struct{}

// Ask implements Prompter.
func (*Form) Ask(ctx context.Context, q Question) (string, error) {
	var answer string
	input := huh.NewInput().
		Title(q.Title).
		Description(q.Description).
		Placeholder(q.Placeholder).
		Value(&answer)
	if q.Validate != nil {
		input = input.Validate(q.Validate)
	}
	if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", context.Canceled
		}
		return "", err
	}
	return answer, nil
}

// Line prompts on out and reads answers line by line from in.
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine returns a line-based Prompter.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

// Ask implements Prompter.
func (l *Line) Ask(ctx context.Context, q Question) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if q.Description != "" {
			fmt.Fprintf(l.out, "%s (%s): ", q.Title, q.Description)
		} else {
			fmt.Fprintf(l.out, "%s: ", q.Title)
		}

		line, readErr := l.in.ReadString('\n')
		answer := strings.TrimRight(line, "\r\n")
		if readErr != nil && (readErr != io.EOF || line == "") {
			fmt.Fprintln(l.out)
			if readErr == io.EOF {
				return "", ErrNoInput
			}
			return "", readErr
		}

		if q.Validate != nil {
			if err := q.Validate(answer); err != nil {
				fmt.Fprintf(l.out, "  %v\n", err)
				if readErr == io.EOF {
					return "", ErrNoInput
				}
				continue
			}
		}
		return answer, nil
	}
}
