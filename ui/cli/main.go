// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the devboot command tree: the root command runs the
// onboarding checklist, and subcommands cover scaffolding, config file
// creation and listing the steps.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/devboot/buildvars"
	"github.com/toeirei/devboot/internal/config"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/logging"
	"github.com/toeirei/devboot/internal/onboard"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var showVersionFlag bool

// flagBindings maps config keys to the flags that override them.
var flagBindings = map[string]string{
	"identity.username": "username",
	"identity.email":    "email",
	"identity.mode":     "mode",
	"distro":            "distro",
	"keys.location":     "key-location",
	"repo.path":         "repo",
	"skip":              "skip",
	"language":          "language",
	"verbose":           "verbose",
	"scaffold.root":     "root",
	"scaffold.role":     "role",
}

// Execute runs the CLI entrypoint. The main package calls this and handles
// process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig resolves the configuration for cmd and applies the process-wide
// settings (language, log level) it carries.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), path, flagBindings)
	// Running without a config file is the normal case on a fresh machine.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		logging.Debugf("no config file found, using defaults")
	} else if err != nil {
		return cfg, fmt.Errorf("error loading config: %w", err)
	}

	i18n.Init(cfg.Language)
	logging.SetVerbose(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := onboard.ValidateSkip(cfg.Skip); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	// Make sure the user-provided file exists to avoid silently running on defaults.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. Tests call it
// for isolated command trees.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devboot",
		Short: "devboot onboards a developer onto a Windows workstation.",
		Long: `devboot prepares a Windows machine for development in one run:
WSL with Ansible, PowerShell, Docker Desktop, Remote Desktop, a personal
SSH key published to the onboarding repository on a per-user branch, and
a starter Ansible layout.

Every step checks before it acts, so devboot can be re-run until it
reports nothing left to change. Running without a subcommand is the same
as "devboot run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			return nil
		},
		RunE: runOnboarding,
	}
	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "de")`)
	applyRunFlags(cmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", v)
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		newRunCmd(),
		newScaffoldCmd(),
		newConfigCmd(),
		newStepsCmd(),
		versionCmd,
	)
	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" && resolvedVersion == "dev" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record the module as a dependency.
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/devboot" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort show the commit to aid support.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
