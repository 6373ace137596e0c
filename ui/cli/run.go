// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/toeirei/devboot/internal/config"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/logging"
	"github.com/toeirei/devboot/internal/onboard"
	"github.com/toeirei/devboot/internal/prompt"
)

// runChecklist is a package-level variable so tests can replace the
// orchestrator.
var runChecklist = func(ctx context.Context, cfg config.Config, deps onboard.Deps) (*onboard.Report, error) {
	return onboard.New(cfg, deps).Run(ctx)
}

func applyRunFlags(cmd *cobra.Command) {
	// NewRootCmd may be called multiple times in tests; pflag panics on
	// duplicate definitions.
	if cmd.Flags().Lookup("username") != nil {
		return
	}
	cmd.Flags().String("username", "", "Username to onboard (skips the prompt when valid)")
	cmd.Flags().String("email", "", "Git user.email to set when none is configured")
	cmd.Flags().String("mode", config.ModePrompt, `Identity mode: "prompt" or "account"`)
	cmd.Flags().String("distro", "Ubuntu", "WSL distribution to install and use")
	cmd.Flags().String("key-location", config.KeysInDistro, `Where the SSH key lives: "distro" or "host"`)
	cmd.Flags().String("repo", "", "Path to the onboarding repository (default: auto-detect)")
	cmd.Flags().StringSlice("skip", nil, "Optional steps to skip (see 'devboot steps')")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the onboarding checklist",
		Long: `Runs every onboarding step in order. Steps that find their work
already done report "ok"; fatal preconditions stop the run with a hint on
what to fix before running again.`,
		Args: cobra.NoArgs,
		RunE: runOnboarding,
	}
	applyRunFlags(cmd)
	return cmd
}

func runOnboarding(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if runtime.GOOS != "windows" {
		logging.Warnf("%s", i18n.T("run.not_windows", runtime.GOOS))
	}
	logging.Infof("onboarding with distro %s, keys in %s", cfg.Distro, cfg.Keys.Location)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	exe, _ := os.Executable()
	wd, _ := os.Getwd()
	home, _ := os.UserHomeDir()
	deps := onboard.Deps{
		Prompter:   prompt.ForTerminal(os.Stdin, cmd.ErrOrStderr()),
		Logger:     logging.L,
		Out:        cmd.ErrOrStderr(),
		Executable: exe,
		Workdir:    wd,
		HomeDir:    home,
		Clipboard:  clipboard.WriteAll,
	}

	rep, runErr := runChecklist(ctx, cfg, deps)
	renderSummary(cmd.OutOrStdout(), rep)

	var fe *onboard.FatalError
	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("run.cancelled"))
	case errors.As(runErr, &fe) && fe.Hint != "":
		fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("run.hint", fe.Hint))
	}
	return runErr
}
