// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package onboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/afero"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/prompt"
	"github.com/toeirei/devboot/internal/repo"
)

// ErrBranchDiverged is returned when the remote copy of the user's branch
// carries commits the local branch does not.
var ErrBranchDiverged = errors.New("remote branch has diverged from the local branch")

// ErrGitMissing is returned when the git CLI cannot be found on PATH.
var ErrGitMissing = errors.New("git is not available")

func (o *Orchestrator) findRepository(_ context.Context, st *State) (Outcome, error) {
	_, err := o.deps.Runner.LookPath("git")
	st.sawTool(ToolGit, err == nil)
	if err != nil {
		return Outcome{}, fatal(fmt.Errorf("%w: %v", ErrGitMissing, err), i18n.T("hint.git_missing"))
	}

	root, err := repo.FindRoot(repo.Candidates(o.cfg.Repo.Path, o.deps.Executable, o.deps.Workdir))
	if err != nil {
		return Outcome{}, fatal(err, i18n.T("hint.no_repository"))
	}
	st.Root = root
	st.Git = &repo.Git{Runner: o.deps.Runner, Dir: root, Scope: o.cfg.Git.Scope}
	return ok("repository root %s", root), nil
}

func (o *Orchestrator) ensureGitIdentity(ctx context.Context, st *State) (Outcome, error) {
	var changes []string

	name, err := st.Git.ConfigGet(ctx, "user.name")
	if err != nil {
		return warning("reading user.name failed: %v", err), nil
	}
	if name != st.Identity.Username {
		if err := st.Git.ConfigSet(ctx, "user.name", st.Identity.Username); err != nil {
			return warning("setting user.name failed: %v", err), nil
		}
		changes = append(changes, "user.name="+st.Identity.Username)
	}

	email, err := st.Git.ConfigGet(ctx, "user.email")
	if err != nil {
		return warning("reading user.email failed: %v", err), nil
	}
	if email == "" {
		email = strings.TrimSpace(o.cfg.Identity.Email)
		if email == "" {
			email, err = o.askEmail(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return Outcome{}, ctx.Err()
				}
				return warning("no email entered: %v", err), nil
			}
		}
		if err := st.Git.ConfigSet(ctx, "user.email", email); err != nil {
			return warning("setting user.email failed: %v", err), nil
		}
		changes = append(changes, "user.email="+email)
	}

	if len(changes) == 0 {
		return ok("git identity %s <%s> already configured", name, email), nil
	}
	return changed("set %s (%s scope)", strings.Join(changes, ", "), o.cfg.Git.Scope), nil
}

func (o *Orchestrator) askEmail(ctx context.Context) (string, error) {
	if o.deps.Prompter == nil {
		return "", prompt.ErrNoInput
	}
	v, err := o.deps.Prompter.Ask(ctx, prompt.Question{
		Title:       i18n.T("prompt.email.title"),
		Description: i18n.T("prompt.email.description"),
		Placeholder: "name@example.com",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New(i18n.T("prompt.email.empty"))
			}
			return nil
		},
	})
	return strings.TrimSpace(v), err
}

func (o *Orchestrator) selectBranch(ctx context.Context, st *State) (Outcome, error) {
	branch := st.Identity.BranchName()
	g := st.Git

	exists, err := g.BranchExists(ctx, branch)
	if err != nil {
		return Outcome{}, err
	}
	if !exists {
		if err := g.CheckoutNew(ctx, branch); err != nil {
			return Outcome{}, err
		}
		return changed("created branch %s", branch), nil
	}

	remote := o.cfg.Repo.Remote
	if err := g.Fetch(ctx, remote, branch); err != nil {
		o.log.Debug("fetch failed, comparing against last known remote state", "branch", branch, "err", err)
	}
	remoteExists, err := g.RemoteBranchExists(ctx, remote, branch)
	if err != nil {
		return Outcome{}, err
	}
	if remoteExists {
		_, behind, err := g.AheadBehind(ctx, branch, remote+"/"+branch)
		if err != nil {
			return Outcome{}, err
		}
		if behind > 0 {
			return Outcome{}, fatal(
				fmt.Errorf("%s/%s is %d commit(s) ahead of %s: %w", remote, branch, behind, branch, ErrBranchDiverged),
				i18n.T("hint.branch_diverged", map[string]any{"Branch": branch, "Remote": remote}),
			)
		}
	}

	current, err := g.CurrentBranch(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if current == branch {
		return ok("already on %s", branch), nil
	}

	// A key published on another branch is untracked there but tracked on
	// the user branch, and git refuses to overwrite it on checkout.
	parked, err := o.parkPublishedKey(ctx, st)
	if err != nil {
		return Outcome{}, err
	}
	if err := g.Checkout(ctx, branch); err != nil {
		if rerr := o.restorePublishedKey(st, parked); rerr != nil {
			o.log.Error("restoring published key failed", "path", st.Keys.DestinationPublicKeyPath, "err", rerr)
		}
		return Outcome{}, err
	}
	if err := o.restorePublishedKey(st, parked); err != nil {
		return Outcome{}, fatal(err, i18n.T("hint.publish_failed"))
	}
	return changed("switched to %s", branch), nil
}

// parkPublishedKey removes an untracked published key from the working tree
// and returns its content. It returns nil when there is nothing to move.
func (o *Orchestrator) parkPublishedKey(ctx context.Context, st *State) ([]byte, error) {
	dest := st.Keys.DestinationPublicKeyPath
	if dest == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(o.deps.FS, dest)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tracked, err := st.Git.IsTracked(ctx, o.relative(st, dest))
	if err != nil || tracked {
		return nil, err
	}
	if err := o.deps.FS.Remove(dest); err != nil {
		return nil, err
	}
	o.log.Debug("moved untracked public key aside for checkout", "path", dest)
	return data, nil
}

func (o *Orchestrator) restorePublishedKey(st *State, data []byte) error {
	if data == nil {
		return nil
	}
	dest := st.Keys.DestinationPublicKeyPath
	if err := o.deps.FS.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	if err := afero.WriteFile(o.deps.FS, dest, data, 0o644); err != nil {
		return fmt.Errorf("restore %s: %w", dest, err)
	}
	return nil
}

type commitData struct {
	Username string
	KeyName  string
	Branch   string
}

func (o *Orchestrator) commitMessage(st *State) (string, error) {
	tmpl, err := template.New("commit").Option("missingkey=error").Parse(o.cfg.Repo.CommitMessage)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	err = tmpl.Execute(&b, commitData{
		Username: st.Identity.Username,
		KeyName:  st.Identity.KeyName(),
		Branch:   st.Identity.BranchName(),
	})
	return b.String(), err
}

func (o *Orchestrator) commitAndPush(ctx context.Context, st *State) (Outcome, error) {
	g := st.Git
	branch := st.Identity.BranchName()
	remote := o.cfg.Repo.Remote
	path := o.relative(st, st.Keys.DestinationPublicKeyPath)

	exists, err := o.fileExists(st.Keys.DestinationPublicKeyPath)
	if err != nil || !exists {
		return warning("%s is missing; nothing to commit", path), nil
	}

	if err := g.Add(ctx, path); err != nil {
		return warning("staging %s failed: %v", path, err), nil
	}
	staged, err := g.HasStagedChanges(ctx, path)
	if err != nil {
		return warning("checking staged changes failed: %v", err), nil
	}
	committed := false
	if staged {
		msg, err := o.commitMessage(st)
		if err != nil {
			return warning("commit message template: %v", err), nil
		}
		if err := g.Commit(ctx, msg, path); err != nil {
			return warning("commit failed: %v", err), nil
		}
		committed = true
	}

	pending, known, err := g.Unpushed(ctx, remote, branch)
	if err != nil {
		o.log.Debug("could not count unpushed commits", "err", err)
	}
	if err == nil && known && pending == 0 && !committed {
		return ok("%s already committed and pushed", path), nil
	}

	if err := g.Push(ctx, remote, branch); err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		st.Report.PushCommand = g.PushCommand(remote, branch)
		o.log.Warn(i18n.T("push.manual"), "command", st.Report.PushCommand)
		return warning("push to %s failed: %v", remote, err), nil
	}
	if committed {
		return changed("committed %s and pushed %s to %s", path, branch, remote), nil
	}
	return changed("pushed %s to %s", branch, remote), nil
}

func (o *Orchestrator) fileExists(path string) (bool, error) {
	info, err := o.deps.FS.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
