// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package repo locates the onboarding repository and drives git inside it.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// ErrNoRepository is returned when no candidate directory holds a git repository.
var ErrNoRepository = errors.New("no git repository found")

// Candidates lists the directories searched for the repository root, in
// order. An explicit path is the only candidate. Otherwise the parent of the
// executable's directory (the binary usually sits in <repo>/bin or
// <repo>/scripts) is tried before the working directory.
func Candidates(explicit, executable, workdir string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	var out []string
	if executable != "" {
		out = append(out, filepath.Dir(filepath.Dir(executable)))
	}
	if workdir != "" {
		out = append(out, workdir)
	}
	return out
}

// FindRoot returns the first candidate that carries a .git marker (a
// directory, or a file for worktrees and submodules) which go-git can open.
func FindRoot(candidates []string) (string, error) {
	var tried []string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			continue
		}
		tried = append(tried, abs)
		if _, err := os.Stat(filepath.Join(abs, git.GitDirName)); err != nil {
			continue
		}
		if _, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{EnableDotGitCommonDir: true}); err != nil {
			continue
		}
		return abs, nil
	}
	if len(tried) == 0 {
		return "", ErrNoRepository
	}
	return "", fmt.Errorf("%w in %s", ErrNoRepository, strings.Join(tried, ", "))
}
