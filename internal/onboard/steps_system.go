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
	"github.com/toeirei/devboot/internal/identity"
	"github.com/toeirei/devboot/internal/privilege"
	"github.com/toeirei/devboot/internal/runner"
)

// ErrPackageManagerMissing is returned when winget cannot be found.
var ErrPackageManagerMissing = errors.New("winget is not available")

// wingetNoApplicableUpgrade is APPINSTALLER_CLI_ERROR_UPDATE_NOT_APPLICABLE:
// the package is installed but not yet on this process's PATH.
const wingetNoApplicableUpgrade = -1978335189

const (
	rdpKey   = `HKLM\SYSTEM\CurrentControlSet\Control\Terminal Server`
	rdpValue = "fDenyTSConnections"
)

func (o *Orchestrator) checkPrivilege(_ context.Context, _ *State) (Outcome, error) {
	if err := privilege.Require(o.deps.Privilege); err != nil {
		if errors.Is(err, privilege.ErrNotElevated) {
			return Outcome{}, fatal(err, i18n.T("hint.not_elevated"))
		}
		return Outcome{}, err
	}
	return ok("running elevated"), nil
}

func (o *Orchestrator) resolveIdentity(ctx context.Context, st *State) (Outcome, error) {
	resolver := o.deps.Resolver
	if resolver == nil {
		r, err := identity.NewResolver(o.cfg.Identity, o.deps.Prompter, o.log)
		if err != nil {
			return Outcome{}, err
		}
		resolver = r
	}
	id, err := resolver.Resolve(ctx)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAccountMissing), errors.Is(err, identity.ErrHomeNotWritable), errors.Is(err, identity.ErrInvalidUsername):
			return Outcome{}, fatal(err, i18n.T("hint.account", map[string]any{"Account": o.cfg.Identity.Account}))
		default:
			return Outcome{}, err
		}
	}
	st.Identity = id
	if err := o.prepareKeys(st); err != nil {
		return Outcome{}, err
	}
	return ok("onboarding %s (key %s, branch %s)", id.Username, id.KeyName(), id.BranchName()), nil
}

func (o *Orchestrator) checkPackageManager(_ context.Context, _ *State) (Outcome, error) {
	path, err := o.deps.Runner.LookPath("winget")
	if err != nil {
		return Outcome{}, fatal(ErrPackageManagerMissing, i18n.T("hint.winget_missing"))
	}
	return ok("winget found at %s", path), nil
}

func (o *Orchestrator) ensurePowerShell(ctx context.Context, st *State) (Outcome, error) {
	return o.ensureTool(ctx, st, ToolPwsh, "pwsh", o.cfg.Packages.PowerShell), nil
}

func (o *Orchestrator) ensureDocker(ctx context.Context, st *State) (Outcome, error) {
	return o.ensureTool(ctx, st, ToolDocker, "docker", o.cfg.Packages.Docker), nil
}

// ensureTool installs pkg with winget unless command already resolves.
// Install failures are warnings: the rest of the run does not need the tool.
func (o *Orchestrator) ensureTool(ctx context.Context, st *State, tool Tool, command, pkg string) Outcome {
	if path, err := o.deps.Runner.LookPath(command); err == nil {
		st.sawTool(tool, true)
		return ok("%s already installed at %s", tool, path)
	}

	o.log.Info("installing", "tool", string(tool), "package", pkg)
	args := []string{"install", "--id", pkg, "-e", "--source", "winget",
		"--accept-source-agreements", "--accept-package-agreements", "--disable-interactivity"}
	res, err := o.deps.Runner.Run(ctx, "winget", args, runner.WithStream(o.deps.Out))
	if err != nil {
		st.sawTool(tool, false)
		return warning("installing %s failed: %v", pkg, err)
	}
	switch res.ExitCode {
	case 0:
		st.sawTool(tool, true)
		return changed("installed %s", pkg)
	case wingetNoApplicableUpgrade:
		st.sawTool(tool, true)
		return ok("%s is installed but not on PATH yet; open a new terminal", pkg)
	default:
		st.sawTool(tool, false)
		return warning("installing %s failed: %v", pkg, res.Err("winget", args))
	}
}

func (o *Orchestrator) enableRemoteDesktop(ctx context.Context, _ *State) (Outcome, error) {
	if !o.cfg.RDP.Enabled {
		return skipped("remote desktop disabled in configuration"), nil
	}

	var did []string
	queryArgs := []string{"query", rdpKey, "/v", rdpValue}
	res, err := o.deps.Runner.Run(ctx, "reg", queryArgs)
	if err != nil {
		return warning("reading %s failed: %v", rdpValue, err), nil
	}
	if !res.OK() || !regDWORDIsZero(res.Stdout) {
		addArgs := []string{"add", rdpKey, "/v", rdpValue, "/t", "REG_DWORD", "/d", "0", "/f"}
		res, err := o.deps.Runner.Run(ctx, "reg", addArgs)
		if err != nil {
			return warning("enabling remote desktop failed: %v", err), nil
		}
		if err := res.Err("reg", addArgs); err != nil {
			return warning("enabling remote desktop failed: %v", err), nil
		}
		did = append(did, "remote desktop enabled")
	}

	rules, err := o.firewallRules(ctx)
	if err != nil {
		return warning("listing firewall rules failed: %v", err), nil
	}
	if len(rules) == 0 {
		msg := fmt.Sprintf("no firewall rule matches %q; skipped firewall configuration", o.cfg.RDP.FirewallMatch)
		if len(did) > 0 {
			msg = strings.Join(did, ", ") + "; " + msg
		}
		return warning("%s", msg), nil
	}

	var disabled []string
	for _, r := range rules {
		if !r.enabled {
			disabled = append(disabled, r.name)
		}
	}
	if len(disabled) > 0 {
		script := "Enable-NetFirewallRule -Name " + psList(disabled)
		args := []string{"-NoProfile", "-NonInteractive", "-Command", script}
		res, err := o.deps.Runner.Run(ctx, "powershell", args)
		if err != nil {
			return warning("enabling firewall rules failed: %v", err), nil
		}
		if err := res.Err("powershell", args); err != nil {
			return warning("enabling firewall rules failed: %v", err), nil
		}
		did = append(did, fmt.Sprintf("enabled %d firewall rule(s)", len(disabled)))
	}

	if len(did) == 0 {
		return ok("remote desktop already enabled"), nil
	}
	return changed("%s", strings.Join(did, ", ")), nil
}

type firewallRule struct {
	name    string
	enabled bool
}

// firewallRules lists rules whose display name contains the configured match.
func (o *Orchestrator) firewallRules(ctx context.Context) ([]firewallRule, error) {
	script := fmt.Sprintf("Get-NetFirewallRule | Where-Object { $_.DisplayName -like %s } | ForEach-Object { \"{0}`t{1}\" -f $_.Name, $_.Enabled }",
		psQuote("*"+o.cfg.RDP.FirewallMatch+"*"))
	args := []string{"-NoProfile", "-NonInteractive", "-Command", script}
	res, err := o.deps.Runner.Run(ctx, "powershell", args)
	if err != nil {
		return nil, err
	}
	if err := res.Err("powershell", args); err != nil {
		return nil, err
	}

	var rules []firewallRule
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, state, _ := strings.Cut(line, "\t")
		rules = append(rules, firewallRule{
			name:    strings.TrimSpace(name),
			enabled: strings.EqualFold(strings.TrimSpace(state), "true"),
		})
	}
	return rules, nil
}

// regDWORDIsZero reads the value column of `reg query` output.
func regDWORDIsZero(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 3 && strings.EqualFold(fields[0], rdpValue) {
			return fields[2] == "0x0"
		}
	}
	return false
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = psQuote(s)
	}
	return strings.Join(quoted, ",")
}
