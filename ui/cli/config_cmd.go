// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/devboot/internal/config"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/onboard"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the devboot configuration file",
	}

	var system bool
	var output string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default values",
		Long: `Writes devboot.yaml with every key at its default value, to the user
config directory or, with --system, to the machine-wide location. An
existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			path := output
			var err error
			if path == "" {
				path, err = config.WriteConfigFile(&cfg, system)
			} else {
				err = config.WriteConfigFileTo(&cfg, path)
			}
			if errors.Is(err, os.ErrExist) {
				return errors.New(i18n.T("config.exists", path))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, "Write the machine-wide configuration file")
	initCmd.Flags().StringVarP(&output, "output", "o", "", "Write to this path instead")

	cmd.AddCommand(initCmd)
	return cmd
}

func newStepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the onboarding steps in execution order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			skippable := map[string]bool{}
			for _, s := range onboard.SkippableStepNames() {
				skippable[s] = true
			}
			for i, name := range onboard.StepNames() {
				note := "required"
				if skippable[name] {
					note = "skippable"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-16s %s\n", i+1, name, note)
			}
		},
	}
}
