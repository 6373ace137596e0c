// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package onboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/runner"
)

var (
	// ErrWSLMissing is returned when wsl.exe is not on PATH.
	ErrWSLMissing = errors.New("wsl is not available")
	// ErrDistroInstalled is returned right after a distro install: it has to
	// be launched once by hand to create the Linux user.
	ErrDistroInstalled = errors.New("distro was just installed and needs first-run initialization")
	// ErrDistroNotInitialized is returned when the distro is listed but does
	// not answer commands.
	ErrDistroNotInitialized = errors.New("distro is not initialized")
)

const readyMarker = "devboot-ready"

// installedDistros returns the names printed by `wsl --list --quiet`. wsl
// exits non-zero when no distro is installed; that is an empty list.
func (o *Orchestrator) installedDistros(ctx context.Context) ([]string, error) {
	res, err := o.deps.Runner.Run(ctx, "wsl", []string{"--list", "--quiet"})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, nil
	}
	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		name := strings.TrimSpace(strings.ReplaceAll(line, "\x00", ""))
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (o *Orchestrator) distroArgs(root bool, script string) []string {
	args := []string{"-d", o.cfg.Distro}
	if root {
		args = append(args, "-u", "root")
	}
	return append(args, "-e", "sh", "-c", script)
}

func (o *Orchestrator) ensureDistro(ctx context.Context, st *State) (Outcome, error) {
	if _, err := o.deps.Runner.LookPath("wsl"); err != nil {
		st.sawTool(ToolWSL, false)
		return Outcome{}, fatal(ErrWSLMissing, i18n.T("hint.wsl_missing"))
	}
	st.sawTool(ToolWSL, true)

	distros, err := o.installedDistros(ctx)
	if err != nil {
		return Outcome{}, err
	}
	hint := i18n.T("hint.distro_init", map[string]any{"Distro": o.cfg.Distro})

	if !containsFold(distros, o.cfg.Distro) {
		o.log.Info("installing distro", "distro", o.cfg.Distro)
		args := []string{"--install", "-d", o.cfg.Distro}
		res, err := o.deps.Runner.Run(ctx, "wsl", args, runner.WithStream(o.deps.Out))
		if err != nil {
			return Outcome{}, err
		}
		if err := res.Err("wsl", args); err != nil {
			return Outcome{}, fatal(fmt.Errorf("install %s: %w", o.cfg.Distro, err), hint)
		}
		return Outcome{}, fatal(fmt.Errorf("%s: %w", o.cfg.Distro, ErrDistroInstalled), hint)
	}

	res, err := o.deps.Runner.Run(ctx, "wsl", o.distroArgs(false, "echo "+readyMarker))
	if err != nil {
		return Outcome{}, err
	}
	if !res.OK() || !strings.Contains(res.Stdout, readyMarker) {
		return Outcome{}, fatal(fmt.Errorf("%s: %w", o.cfg.Distro, ErrDistroNotInitialized), hint)
	}
	return ok("%s is installed and initialized", o.cfg.Distro), nil
}

func (o *Orchestrator) ensureAnsible(ctx context.Context, st *State) (Outcome, error) {
	res, err := o.deps.Runner.Run(ctx, "wsl", o.distroArgs(false, "command -v ansible >/dev/null 2>&1 && ansible --version"))
	if err != nil {
		return warning("checking for ansible failed: %v", err), nil
	}
	if res.OK() {
		st.sawTool(ToolAnsible, true)
		version, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
		return ok("ansible already present in %s: %s", o.cfg.Distro, strings.TrimSpace(version)), nil
	}

	o.log.Info("installing ansible", "distro", o.cfg.Distro)
	script := "apt-get update && DEBIAN_FRONTEND=noninteractive apt-get install -y ansible"
	args := o.distroArgs(true, script)
	res, err = o.deps.Runner.Run(ctx, "wsl", args, runner.WithStream(o.deps.Out))
	if err != nil {
		st.sawTool(ToolAnsible, false)
		return warning("installing ansible failed: %v", err), nil
	}
	if err := res.Err("wsl", args); err != nil {
		st.sawTool(ToolAnsible, false)
		return warning("installing ansible failed: %v", err), nil
	}
	st.sawTool(ToolAnsible, true)
	return changed("installed ansible in %s", o.cfg.Distro), nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
