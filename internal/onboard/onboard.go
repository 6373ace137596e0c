// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package onboard runs the onboarding checklist: a fixed, ordered list of
// idempotent steps that each check their own precondition before acting.
// A step either finishes (changed, ok, warning) or fails fatally, which ends
// the run. Re-running after a failure converges to the same end state.
package onboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/toeirei/devboot/internal/config"
	"github.com/toeirei/devboot/internal/identity"
	"github.com/toeirei/devboot/internal/logging"
	"github.com/toeirei/devboot/internal/privilege"
	"github.com/toeirei/devboot/internal/prompt"
	"github.com/toeirei/devboot/internal/repo"
	"github.com/toeirei/devboot/internal/runner"
	"github.com/toeirei/devboot/internal/sshagent"
	"github.com/toeirei/devboot/internal/sshkey"
)

// Step names, in execution order.
const (
	StepPrivilege      = "privilege"
	StepRepository     = "repository"
	StepIdentity       = "identity"
	StepPackageManager = "package-manager"
	StepPowerShell     = "powershell"
	StepWSL            = "wsl"
	StepAnsible        = "ansible"
	StepDocker         = "docker"
	StepRDP            = "rdp"
	StepSSHKey         = "ssh-key"
	StepPublishKey     = "publish-key"
	StepSSHAgent       = "ssh-agent"
	StepClipboard      = "clipboard"
	StepGitIdentity    = "git-identity"
	StepBranch         = "branch"
	StepCommitPush     = "commit-push"
	StepScaffold       = "scaffold"
)

// Tool is an external program whose presence is checked during a run.
type Tool string

const (
	ToolPwsh    Tool = "pwsh"
	ToolWSL     Tool = "wsl"
	ToolAnsible Tool = "ansible"
	ToolDocker  Tool = "docker"
	ToolGit     Tool = "git"
)

// ToolPresence is the result of one presence check. It is never cached
// across runs.
type ToolPresence struct {
	Tool    Tool
	Present bool
}

// KeyPaths locates the key pair and its published copy.
type KeyPaths struct {
	PrivateKeyPath           string
	PublicKeyPath            string
	DestinationPublicKeyPath string
}

// Deps are the collaborators of an Orchestrator. Zero values are replaced by
// the real implementations in New, except Prompter.
type Deps struct {
	Runner    runner.Runner
	Privilege privilege.Checker
	Prompter  prompt.Prompter
	// Resolver overrides the identity strategy selected by configuration.
	Resolver identity.Resolver
	FS       afero.Fs
	Logger   *log.Logger
	// Out receives installer output.
	Out         io.Writer
	Executable  string
	Workdir     string
	HomeDir     string
	AgentDialer sshagent.Dialer
	Clipboard   func(string) error
}

// State carries the values steps hand to later steps.
type State struct {
	Root     string
	Git      *repo.Git
	Identity identity.Identity
	Keys     KeyPaths
	Store    sshkey.Store
	Tools    []ToolPresence
	Report   *Report
}

func (s *State) sawTool(t Tool, present bool) {
	s.Tools = append(s.Tools, ToolPresence{Tool: t, Present: present})
}

// step is one entry of the checklist. Required steps produce state that
// later steps depend on and cannot be skipped.
type step struct {
	name     string
	required bool
	run      func(ctx context.Context, st *State) (Outcome, error)
}

// Orchestrator runs the onboarding checklist.
type Orchestrator struct {
	cfg   config.Config
	deps  Deps
	log   *log.Logger
	steps []step
}

// New builds an Orchestrator for cfg.
func New(cfg config.Config, deps Deps) *Orchestrator {
	if deps.Runner == nil {
		deps.Runner = runner.New()
	}
	if deps.Privilege == nil {
		deps.Privilege = privilege.System()
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Logger == nil {
		deps.Logger = logging.L
	}
	if deps.Out == nil {
		deps.Out = io.Discard
	}
	if deps.AgentDialer == nil {
		deps.AgentDialer = sshagent.System
	}
	o := &Orchestrator{cfg: cfg, deps: deps, log: deps.Logger}
	o.steps = []step{
		{StepPrivilege, true, o.checkPrivilege},
		{StepRepository, true, o.findRepository},
		{StepIdentity, true, o.resolveIdentity},
		{StepPackageManager, false, o.checkPackageManager},
		{StepPowerShell, false, o.ensurePowerShell},
		{StepWSL, false, o.ensureDistro},
		{StepAnsible, false, o.ensureAnsible},
		{StepDocker, false, o.ensureDocker},
		{StepRDP, false, o.enableRemoteDesktop},
		{StepSSHKey, false, o.ensureKeyPair},
		{StepPublishKey, false, o.publishKey},
		{StepSSHAgent, false, o.registerAgent},
		{StepClipboard, false, o.copyToClipboard},
		{StepGitIdentity, false, o.ensureGitIdentity},
		{StepBranch, false, o.selectBranch},
		{StepCommitPush, false, o.commitAndPush},
		{StepScaffold, false, o.generateScaffold},
	}
	return o
}

// StepNames lists every step in execution order.
func StepNames() []string {
	o := New(config.Default(), Deps{})
	names := make([]string, 0, len(o.steps))
	for _, s := range o.steps {
		names = append(names, s.name)
	}
	return names
}

// SkippableStepNames lists the steps accepted by the skip option.
func SkippableStepNames() []string {
	o := New(config.Default(), Deps{})
	var names []string
	for _, s := range o.steps {
		if !s.required {
			names = append(names, s.name)
		}
	}
	return names
}

// ValidateSkip rejects unknown or required step names.
func ValidateSkip(names []string) error {
	allowed := SkippableStepNames()
	for _, n := range names {
		if !slices.Contains(allowed, n) {
			return fmt.Errorf("cannot skip %q; skippable steps: %v", n, allowed)
		}
	}
	return nil
}

// Run executes the checklist. On a fatal failure it returns the partial
// report, carrying whatever identity, key and tool state was reached, and a
// *FatalError.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	rep := &Report{}
	st := &State{Report: rep}
	defer rep.capture(st)

	for _, s := range o.steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !s.required && slices.Contains(o.cfg.Skip, s.name) {
			rep.add(s.name, Outcome{Status: StatusSkipped, Detail: "skipped by configuration"})
			o.log.Info("step skipped", "step", s.name)
			continue
		}

		o.log.Debug("step starting", "step", s.name)
		out, err := s.run(ctx, st)
		if err != nil {
			var fe *FatalError
			if !errors.As(err, &fe) {
				fe = &FatalError{Step: s.name, Err: err}
			}
			if fe.Step == "" {
				fe.Step = s.name
			}
			rep.add(s.name, Outcome{Status: StatusFailed, Detail: fe.Err.Error()})
			o.log.Error("step failed", "step", s.name, "err", fe.Err)
			return rep, fe
		}
		rep.add(s.name, out)
		switch out.Status {
		case StatusWarning:
			o.log.Warn(out.Detail, "step", s.name)
		case StatusSkipped:
			o.log.Info("step skipped", "step", s.name, "reason", out.Detail)
		default:
			o.log.Info(out.Detail, "step", s.name, "status", string(out.Status))
		}
	}
	return rep, nil
}
