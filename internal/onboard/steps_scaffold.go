// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package onboard

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/toeirei/devboot/internal/scaffold"
)

// RunScaffold generates the Ansible layout for role under root without
// running the rest of the checklist. It returns the created paths relative
// to root.
func RunScaffold(fs afero.Fs, root, role string) ([]string, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	res, err := scaffold.Generate(fs, root, role)
	created := append(append([]string{}, res.CreatedDirs...), res.CreatedFiles...)
	return created, err
}

func (o *Orchestrator) generateScaffold(_ context.Context, st *State) (Outcome, error) {
	if !o.cfg.Scaffold.Enabled {
		return skipped("scaffold generation disabled"), nil
	}
	root := o.cfg.Scaffold.Root
	if !filepath.IsAbs(root) {
		root = filepath.Join(st.Root, filepath.FromSlash(root))
	}
	res, err := scaffold.Generate(o.deps.FS, root, o.cfg.Scaffold.Role)
	if err != nil {
		return warning("scaffold under %s: %v", root, err), nil
	}
	if !res.Changed() {
		return ok("scaffold under %s already complete (%d files kept)", root, len(res.Kept)), nil
	}
	return changed("scaffold under %s: %d directories, %d files created, %d kept",
		root, len(res.CreatedDirs), len(res.CreatedFiles), len(res.Kept)), nil
}
