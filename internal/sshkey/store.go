// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/toeirei/devboot/internal/runner"
)

// State describes which halves of a key pair exist.
type State int

const (
	Missing State = iota
	// PrivateOnly means the public half can be rebuilt without a new key.
	PrivateOnly
	Complete
)

// Store creates and reads one named key pair in one filesystem.
type Store interface {
	// Paths returns the private and public key paths as the operator sees them.
	Paths() (private, public string)
	State(ctx context.Context) (State, error)
	// Ensure brings the pair to Complete and reports whether anything was written.
	Ensure(ctx context.Context) (bool, error)
	ReadPublic(ctx context.Context) ([]byte, error)
}

// HostStore keeps the key pair on the local filesystem.
type HostStore struct {
	FS      afero.Fs
	Dir     string
	Name    string
	Bits    int
	Comment string
}

// Paths implements Store.
func (s *HostStore) Paths() (string, string) {
	priv := filepath.Join(s.Dir, s.Name)
	return priv, priv + ".pub"
}

// State implements Store.
func (s *HostStore) State(context.Context) (State, error) {
	priv, pub := s.Paths()
	hasPriv, err := afero.Exists(s.FS, priv)
	if err != nil {
		return Missing, err
	}
	hasPub, err := afero.Exists(s.FS, pub)
	if err != nil {
		return Missing, err
	}
	switch {
	case hasPriv && hasPub:
		return Complete, nil
	case hasPriv:
		return PrivateOnly, nil
	default:
		return Missing, nil
	}
}

// Ensure implements Store. An existing complete pair is never touched.
func (s *HostStore) Ensure(ctx context.Context) (bool, error) {
	st, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	priv, pub := s.Paths()

	switch st {
	case Complete:
		return false, nil
	case PrivateOnly:
		data, err := afero.ReadFile(s.FS, priv)
		if err != nil {
			return false, err
		}
		line, err := PublicFromPrivate(data, s.Comment)
		if err != nil {
			return false, fmt.Errorf("%s: %w", priv, err)
		}
		return true, s.write(pub, line, 0o644)
	}

	if err := s.FS.MkdirAll(s.Dir, 0o700); err != nil {
		return false, fmt.Errorf("create key directory: %w", err)
	}
	if err := s.FS.Chmod(s.Dir, 0o700); err != nil {
		return false, fmt.Errorf("restrict key directory: %w", err)
	}
	kp, err := GenerateRSA(s.Bits, s.Comment)
	if err != nil {
		return false, err
	}
	if err := s.write(priv, kp.PrivateKey, 0o600); err != nil {
		return false, err
	}
	return true, s.write(pub, kp.PublicKey, 0o644)
}

func (s *HostStore) write(path string, data []byte, perm os.FileMode) error {
	if err := afero.WriteFile(s.FS, path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile honours the umask; set the mode explicitly.
	if err := s.FS.Chmod(path, perm); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// ReadPublic implements Store.
func (s *HostStore) ReadPublic(context.Context) ([]byte, error) {
	_, pub := s.Paths()
	return afero.ReadFile(s.FS, pub)
}

// ReadPrivate returns the private key PEM.
func (s *HostStore) ReadPrivate() ([]byte, error) {
	priv, _ := s.Paths()
	return afero.ReadFile(s.FS, priv)
}

// DistroStore keeps the key pair inside a WSL distro and drives ssh-keygen
// there. Dir may start with "~/"; empty means ~/.ssh of the default user.
type DistroStore struct {
	Runner  runner.Runner
	Distro  string
	Dir     string
	Name    string
	Bits    int
	Comment string
}

// Paths implements Store.
func (s *DistroStore) Paths() (string, string) {
	dir := s.Dir
	if dir == "" {
		dir = "~/.ssh"
	}
	priv := strings.TrimSuffix(dir, "/") + "/" + s.Name
	return priv, priv + ".pub"
}

// dirExpr returns a shell expression for the key directory.
func (s *DistroStore) dirExpr() string {
	dir := s.Dir
	if dir == "" || dir == "~" || dir == "~/" {
		dir = "~/.ssh"
	}
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		return `"$HOME"/` + ShellQuote(strings.TrimSuffix(rest, "/"))
	}
	return ShellQuote(strings.TrimSuffix(dir, "/"))
}

func (s *DistroStore) sh(ctx context.Context, script string) (*runner.Result, error) {
	return s.Runner.Run(ctx, "wsl", []string{"-d", s.Distro, "-e", "sh", "-c", script})
}

// State implements Store.
func (s *DistroStore) State(ctx context.Context) (State, error) {
	d := s.dirExpr()
	name := ShellQuote(s.Name)
	script := fmt.Sprintf(`if [ -f %[1]s/%[2]s ] && [ -f %[1]s/%[2]s.pub ]; then echo complete; elif [ -f %[1]s/%[2]s ]; then echo private; else echo missing; fi`, d, name)
	res, err := s.sh(ctx, script)
	if err != nil {
		return Missing, err
	}
	if !res.OK() {
		return Missing, res.Err("wsl", []string{"-d", s.Distro, "-e", "sh", "-c", script})
	}
	switch strings.TrimSpace(res.Stdout) {
	case "complete":
		return Complete, nil
	case "private":
		return PrivateOnly, nil
	case "missing":
		return Missing, nil
	default:
		return Missing, fmt.Errorf("unexpected key probe output %q", strings.TrimSpace(res.Stdout))
	}
}

// Ensure implements Store.
func (s *DistroStore) Ensure(ctx context.Context) (bool, error) {
	st, err := s.State(ctx)
	if err != nil {
		return false, err
	}
	if st == Complete {
		return false, nil
	}

	d := s.dirExpr()
	path := d + "/" + ShellQuote(s.Name)
	bits := s.Bits
	if bits == 0 {
		bits = DefaultBits
	}

	var script string
	if st == PrivateOnly {
		script = fmt.Sprintf(`ssh-keygen -y -f %[1]s > %[1]s.pub && chmod 644 %[1]s.pub`, path)
	} else {
		script = fmt.Sprintf(`mkdir -p %[1]s && chmod 700 %[1]s && rm -f %[2]s.pub && ssh-keygen -q -t rsa -b %[3]d -N '' -C %[4]s -f %[2]s </dev/null && chmod 600 %[2]s && chmod 644 %[2]s.pub`,
			d, path, bits, ShellQuote(s.Comment))
	}
	res, err := s.sh(ctx, script)
	if err != nil {
		return false, err
	}
	if !res.OK() {
		return false, res.Err("ssh-keygen", []string{path})
	}
	return true, nil
}

// ReadPublic implements Store.
func (s *DistroStore) ReadPublic(ctx context.Context) ([]byte, error) {
	script := "cat " + s.dirExpr() + "/" + ShellQuote(s.Name+".pub")
	res, err := s.sh(ctx, script)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, res.Err("cat", []string{s.Name + ".pub"})
	}
	if strings.TrimSpace(res.Stdout) == "" {
		return nil, errors.New("public key is empty")
	}
	return []byte(res.Stdout), nil
}

// ShellQuote single-quotes s for POSIX sh.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
