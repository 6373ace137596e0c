// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/toeirei/devboot/internal/runner"
)

// Git runs the git CLI against one working tree. The CLI (rather than an
// in-process implementation) is used for anything that touches credentials
// or the operator's git configuration, so helpers and hooks behave as they
// would for a manual push.
type Git struct {
	Runner runner.Runner
	Dir    string
	// Scope is "global" or "local" and applies to config writes.
	Scope string
}

func (g *Git) args(args ...string) []string {
	return append([]string{"-C", g.Dir}, args...)
}

func (g *Git) run(ctx context.Context, args ...string) (*runner.Result, error) {
	return g.Runner.Run(ctx, "git", g.args(args...))
}

// must runs git and converts a non-zero exit into an error.
func (g *Git) must(ctx context.Context, args ...string) (*runner.Result, error) {
	res, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	if err := res.Err("git", g.args(args...)); err != nil {
		return res, err
	}
	return res, nil
}

func (g *Git) scopeFlag() string {
	if g.Scope == "local" {
		return "--local"
	}
	return "--global"
}

// ConfigGet returns the value of key in the configured scope, or "" when it
// is unset there. Reading the same scope ConfigSet writes keeps repeated runs
// from fighting a value set in another scope.
func (g *Git) ConfigGet(ctx context.Context, key string) (string, error) {
	args := []string{"config", g.scopeFlag(), "--get", key}
	res, err := g.run(ctx, args...)
	if err != nil {
		return "", err
	}
	switch res.ExitCode {
	case 0:
		return strings.TrimSpace(res.Stdout), nil
	case 1:
		return "", nil
	default:
		return "", res.Err("git", g.args(args...))
	}
}

// ConfigSet writes key in the configured scope.
func (g *Git) ConfigSet(ctx context.Context, key, value string) error {
	_, err := g.must(ctx, "config", g.scopeFlag(), key, value)
	return err
}

// BranchExists reports whether a local branch called name exists.
func (g *Git) BranchExists(ctx context.Context, name string) (bool, error) {
	res, err := g.must(ctx, "branch", "--list", name)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// CurrentBranch returns the checked-out branch; "" on a detached HEAD.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	res, err := g.run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", err
	}
	if res.ExitCode == 1 {
		return "", nil
	}
	if err := res.Err("git", g.args("symbolic-ref", "--short", "-q", "HEAD")); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Checkout switches to an existing branch.
func (g *Git) Checkout(ctx context.Context, name string) error {
	_, err := g.must(ctx, "checkout", name)
	return err
}

// CheckoutNew creates name at the current commit and switches to it.
func (g *Git) CheckoutNew(ctx context.Context, name string) error {
	_, err := g.must(ctx, "checkout", "-b", name)
	return err
}

// Fetch updates the remote-tracking ref for branch. Credential prompts are
// disabled; a fetch that needs them fails instead of blocking the run.
func (g *Git) Fetch(ctx context.Context, remote, branch string) error {
	args := g.args("fetch", remote, branch)
	res, err := g.Runner.Run(ctx, "git", args, runner.WithEnv(map[string]string{"GIT_TERMINAL_PROMPT": "0"}))
	if err != nil {
		return err
	}
	return res.Err("git", args)
}

// RemoteBranchExists reports whether refs/remotes/<remote>/<branch> exists locally.
func (g *Git) RemoteBranchExists(ctx context.Context, remote, branch string) (bool, error) {
	res, err := g.run(ctx, "rev-parse", "--verify", "--quiet", "refs/remotes/"+remote+"/"+branch)
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// AheadBehind counts commits only on local and only on upstream.
func (g *Git) AheadBehind(ctx context.Context, local, upstream string) (ahead, behind int, err error) {
	res, err := g.must(ctx, "rev-list", "--left-right", "--count", local+"..."+upstream)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(res.Stdout)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output %q", strings.TrimSpace(res.Stdout))
	}
	if ahead, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, err
	}
	if behind, err = strconv.Atoi(fields[1]); err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// IsTracked reports whether path is in the index of the current branch.
func (g *Git) IsTracked(ctx context.Context, path string) (bool, error) {
	res, err := g.must(ctx, "ls-files", "--", path)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// Add stages paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	_, err := g.must(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD for paths.
func (g *Git) HasStagedChanges(ctx context.Context, paths ...string) (bool, error) {
	args := append([]string{"diff", "--cached", "--quiet", "--"}, paths...)
	res, err := g.run(ctx, args...)
	if err != nil {
		return false, err
	}
	switch res.ExitCode {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, res.Err("git", g.args(args...))
	}
}

// Commit records only paths with message.
func (g *Git) Commit(ctx context.Context, message string, paths ...string) error {
	_, err := g.must(ctx, append([]string{"commit", "-m", message, "--"}, paths...)...)
	return err
}

// Unpushed counts commits on HEAD missing from <remote>/<branch>. ok is false
// when the remote branch is unknown, meaning everything is unpushed.
func (g *Git) Unpushed(ctx context.Context, remote, branch string) (n int, ok bool, err error) {
	exists, err := g.RemoteBranchExists(ctx, remote, branch)
	if err != nil || !exists {
		return 0, false, err
	}
	res, err := g.must(ctx, "rev-list", "--count", remote+"/"+branch+"..HEAD")
	if err != nil {
		return 0, false, err
	}
	n, err = strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0, false, fmt.Errorf("unexpected rev-list output %q", strings.TrimSpace(res.Stdout))
	}
	return n, true, nil
}

// Push pushes branch and sets upstream tracking.
func (g *Git) Push(ctx context.Context, remote, branch string) error {
	_, err := g.must(ctx, "push", "-u", remote, branch)
	return err
}

// PushCommand is the command an operator can run by hand to retry Push.
func (g *Git) PushCommand(remote, branch string) string {
	return runner.CommandLine("git", g.args("push", "-u", remote, branch))
}
