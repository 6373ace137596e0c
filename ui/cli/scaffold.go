// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/onboard"
	"github.com/toeirei/devboot/internal/repo"
)

// scaffoldFS is the filesystem used by the scaffold command. Tests swap it
// for an in-memory one.
var scaffoldFS afero.Fs = afero.NewOsFs()

func newScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Generate the starter Ansible layout only",
		Long: `Creates the Ansible directory layout and placeholder files without
touching the rest of the machine. Existing files are never overwritten.
A relative --root is resolved against the onboarding repository when one
is found, otherwise against the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			root := cfg.Scaffold.Root
			if !filepath.IsAbs(root) {
				base, err := os.Getwd()
				if err != nil {
					return err
				}
				exe, _ := os.Executable()
				if found, err := repo.FindRoot(repo.Candidates(cfg.Repo.Path, exe, base)); err == nil {
					base = found
				}
				root = filepath.Join(base, root)
			}

			created, err := onboard.RunScaffold(scaffoldFS, root, cfg.Scaffold.Role)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(created) == 0 {
				fmt.Fprintln(out, i18n.T("scaffold.complete", root))
				return nil
			}
			for _, p := range created {
				fmt.Fprintln(out, i18n.T("scaffold.created", filepath.ToSlash(filepath.Join(root, p))))
			}
			return nil
		},
	}
	cmd.Flags().String("root", "ansible", "Directory to generate the layout in")
	cmd.Flags().String("role", "myrole", "Name of the starter role")
	cmd.Flags().String("repo", "", "Path to the onboarding repository (default: auto-detect)")
	return cmd
}
