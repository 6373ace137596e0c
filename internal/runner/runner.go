// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package runner abstracts every external program devboot talks to: the
// package manager, wsl.exe, reg.exe, powershell, ssh-keygen and git. The
// orchestrator only ever sees the Runner interface so tests can script the
// responses of each tool instead of invoking real installers.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result holds the captured output of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports whether the command exited with status zero.
func (r *Result) OK() bool { return r != nil && r.ExitCode == 0 }

// Err converts a non-zero exit into an *ExitError. It returns nil on success.
func (r *Result) Err(name string, args []string) error {
	if r.OK() {
		return nil
	}
	return &ExitError{Command: CommandLine(name, args), Code: r.ExitCode, Stderr: strings.TrimSpace(r.Stderr)}
}

// ExitError describes a command that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Command, e.Code, e.Stderr)
}

// Runner executes external commands. Run returns an error only when the
// program could not be started or ctx was cancelled; a non-zero exit is
// reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts ...Option) (*Result, error)
	LookPath(name string) (string, error)
}

// Options configures a single Run call.
type Options struct {
	Env    map[string]string
	Stream io.Writer
}

// Option modifies Options.
type Option func(*Options)

// WithEnv appends variables to the inherited environment.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithStream tees stdout and stderr to w while still capturing them. Used for
// long-running installers so the operator sees progress.
func WithStream(w io.Writer) Option {
	return func(o *Options) { o.Stream = w }
}

// Apply folds opts into a fresh Options value.
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Exec is the os/exec backed Runner.
type Exec struct{}

// New returns the default Runner.
func New() *Exec { return &Exec{} }

// LookPath resolves name on PATH.
func (*Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run implements Runner.
func (*Exec) Run(ctx context.Context, name string, args []string, opts ...Option) (*Result, error) {
	o := Apply(opts...)

	cmd := exec.CommandContext(ctx, name, args...)
	if len(o.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range o.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	if o.Stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, o.Stream)
		cmd.Stderr = io.MultiWriter(&stderr, o.Stream)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := &Result{
		Stdout: DecodeOutput(stdout.Bytes()),
		Stderr: DecodeOutput(stderr.Bytes()),
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s: %w", CommandLine(name, args), ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("failed to start %s: %w", name, err)
}

// CommandLine renders name and args the way an operator would type them,
// quoting arguments that contain spaces or are empty.
func CommandLine(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
