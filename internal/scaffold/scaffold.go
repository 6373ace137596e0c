// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package scaffold lays out a starter Ansible tree. Generation is purely
// additive: missing directories and files are created, existing files are
// never opened for writing.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/spf13/afero"
)

// HeaderNote is the second line of every generated file.
const HeaderNote = "# Placeholder generated by devboot; edit freely."

var roleName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ErrInvalidRole is returned for role names that are not a single path segment.
var ErrInvalidRole = errors.New("invalid role name")

// RoleDirs are the subdirectories of every role.
var RoleDirs = []string{"tasks", "handlers", "templates", "files", "vars", "defaults"}

// File is one placeholder file, relative to the scaffold root.
type File struct {
	Path string
	Body string
}

// Content returns the file's bytes: the two-line header followed by Body.
func (f File) Content() []byte {
	return []byte("# " + f.Path + "\n" + HeaderNote + "\n" + f.Body)
}

// Dirs returns the directories of the layout for role, relative to the root.
func Dirs(role string) []string {
	dirs := []string{"inventories", "group_vars", "host_vars", "playbooks"}
	for _, d := range RoleDirs {
		dirs = append(dirs, path.Join("roles", role, d))
	}
	return dirs
}

// Files returns the placeholder files of the layout for role.
func Files(role string) []File {
	r := func(p string) string { return path.Join("roles", role, p) }
	return []File{
		{Path: "ansible.cfg", Body: "[defaults]\ninventory = inventories/hosts.yml\nroles_path = roles\nhost_key_checking = True\n"},
		{Path: "inventories/hosts.yml", Body: "---\nall:\n  hosts:\n    localhost:\n      ansible_connection: local\n"},
		{Path: "group_vars/all.yml", Body: "---\n# Variables applied to every host.\n"},
		{Path: "host_vars/localhost.yml", Body: "---\n# Variables for localhost only.\n"},
		{Path: "playbooks/site.yml", Body: fmt.Sprintf("---\n- name: Apply %[1]s\n  hosts: all\n  roles:\n    - %[1]s\n", role)},
		{Path: r("tasks/main.yml"), Body: "---\n- name: Placeholder task\n  ansible.builtin.debug:\n    msg: \"" + role + " role is in place\"\n"},
		{Path: r("handlers/main.yml"), Body: "---\n# Handlers notified by tasks in this role.\n"},
		{Path: r("vars/main.yml"), Body: "---\n# High-precedence role variables.\n"},
		{Path: r("defaults/main.yml"), Body: "---\n# Low-precedence role defaults.\n"},
		{Path: r("templates/.gitkeep")},
		{Path: r("files/.gitkeep")},
	}
}

// Result lists what Generate changed, as paths relative to the root.
type Result struct {
	CreatedDirs  []string
	CreatedFiles []string
	Kept         []string
}

// Changed reports whether Generate created anything.
func (r Result) Changed() bool { return len(r.CreatedDirs)+len(r.CreatedFiles) > 0 }

// Generate creates the layout for role under root on fs.
func Generate(fs afero.Fs, root, role string) (Result, error) {
	var res Result
	if !roleName.MatchString(role) || role == "." || role == ".." {
		return res, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	dirs := Dirs(role)
	sort.Strings(dirs)
	for _, d := range dirs {
		full := filepath.Join(root, filepath.FromSlash(d))
		ok, err := afero.DirExists(fs, full)
		if err != nil {
			return res, err
		}
		if ok {
			continue
		}
		if err := fs.MkdirAll(full, 0o755); err != nil {
			return res, fmt.Errorf("create %s: %w", full, err)
		}
		res.CreatedDirs = append(res.CreatedDirs, d)
	}

	for _, f := range Files(role) {
		full := filepath.Join(root, filepath.FromSlash(f.Path))
		created, err := createExclusive(fs, full, f.Content())
		if err != nil {
			return res, err
		}
		if created {
			res.CreatedFiles = append(res.CreatedFiles, f.Path)
		} else {
			res.Kept = append(res.Kept, f.Path)
		}
	}
	return res, nil
}

// createExclusive writes data to a new file and reports false if the path
// already exists.
func createExclusive(fs afero.Fs, name string, data []byte) (bool, error) {
	if _, err := fs.Stat(name); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	if err := fs.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(name), err)
	}
	f, err := fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	return true, f.Close()
}
