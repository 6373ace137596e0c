// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package onboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/toeirei/devboot/internal/config"
	"github.com/toeirei/devboot/internal/i18n"
	"github.com/toeirei/devboot/internal/sshagent"
	"github.com/toeirei/devboot/internal/sshkey"
)

// ErrPublishUnverified is returned when the published key cannot be read
// back from the repository.
var ErrPublishUnverified = errors.New("published public key could not be verified")

// prepareKeys derives KeyPaths and picks the key store for the identity.
func (o *Orchestrator) prepareKeys(st *State) error {
	name := st.Identity.KeyName()
	switch o.cfg.Keys.Location {
	case config.KeysOnHost:
		dir := o.cfg.Keys.Dir
		if dir == "" {
			home := st.Identity.Home
			if home == "" {
				home = o.deps.HomeDir
			}
			if home == "" {
				return errors.New("cannot determine the home directory for the key pair")
			}
			dir = filepath.Join(home, ".ssh")
		}
		st.Store = &sshkey.HostStore{FS: o.deps.FS, Dir: dir, Name: name, Bits: o.cfg.Keys.Bits, Comment: name}
	default:
		st.Store = &sshkey.DistroStore{Runner: o.deps.Runner, Distro: o.cfg.Distro, Dir: o.cfg.Keys.Dir, Name: name, Bits: o.cfg.Keys.Bits, Comment: name}
	}

	priv, pub := st.Store.Paths()
	st.Keys = KeyPaths{
		PrivateKeyPath:           priv,
		PublicKeyPath:            pub,
		DestinationPublicKeyPath: filepath.Join(st.Root, filepath.FromSlash(o.cfg.Repo.PubkeyDir), name+".pub"),
	}
	return nil
}

func (o *Orchestrator) ensureKeyPair(ctx context.Context, st *State) (Outcome, error) {
	created, err := st.Store.Ensure(ctx)
	if err != nil {
		return Outcome{}, fatal(fmt.Errorf("key pair %s: %w", st.Keys.PrivateKeyPath, err), i18n.T("hint.key_failed"))
	}
	if !created {
		return ok("key pair already exists at %s", st.Keys.PrivateKeyPath), nil
	}
	return changed("generated RSA key pair %s", st.Keys.PrivateKeyPath), nil
}

func (o *Orchestrator) publishKey(ctx context.Context, st *State) (Outcome, error) {
	pub, err := st.Store.ReadPublic(ctx)
	if err != nil {
		return Outcome{}, fatal(fmt.Errorf("read %s: %w", st.Keys.PublicKeyPath, err), i18n.T("hint.key_failed"))
	}
	line := append(bytes.TrimSpace(pub), '\n')
	dest := st.Keys.DestinationPublicKeyPath

	current, err := afero.ReadFile(o.deps.FS, dest)
	if err == nil && sshkey.SamePublicKey(current, line) {
		return ok("%s is up to date", o.relative(st, dest)), nil
	}

	if err := o.deps.FS.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Outcome{}, fatal(fmt.Errorf("create %s: %w", filepath.Dir(dest), err), i18n.T("hint.publish_failed"))
	}
	if err := afero.WriteFile(o.deps.FS, dest, line, 0o644); err != nil {
		return Outcome{}, fatal(fmt.Errorf("write %s: %w", dest, err), i18n.T("hint.publish_failed"))
	}

	written, err := afero.ReadFile(o.deps.FS, dest)
	if err != nil || !sshkey.SamePublicKey(written, line) {
		return Outcome{}, fatal(fmt.Errorf("%s: %w", dest, ErrPublishUnverified), i18n.T("hint.publish_failed"))
	}
	fp, err := sshkey.Fingerprint(line)
	if err != nil {
		return Outcome{}, fatal(fmt.Errorf("%s: %w", st.Keys.PublicKeyPath, err), i18n.T("hint.key_failed"))
	}
	if current != nil {
		return changed("replaced stale %s (%s)", o.relative(st, dest), fp), nil
	}
	return changed("published %s (%s)", o.relative(st, dest), fp), nil
}

func (o *Orchestrator) registerAgent(_ context.Context, st *State) (Outcome, error) {
	if !o.cfg.Agent.Enabled {
		return skipped("ssh-agent registration disabled in configuration"), nil
	}
	hs, isHost := st.Store.(*sshkey.HostStore)
	if !isHost {
		return skipped("key lives in %s; register it with the agent there", o.cfg.Distro), nil
	}
	priv, err := hs.ReadPrivate()
	if err != nil {
		return warning("reading private key failed: %v", err), nil
	}
	added, err := sshagent.Register(o.deps.AgentDialer, priv, st.Identity.KeyName())
	if errors.Is(err, sshagent.ErrNoAgent) {
		return warning("no ssh-agent running; key not loaded"), nil
	}
	if err != nil {
		return warning("loading key into ssh-agent failed: %v", err), nil
	}
	if !added {
		return ok("ssh-agent already holds %s", st.Identity.KeyName()), nil
	}
	return changed("loaded %s into ssh-agent", st.Identity.KeyName()), nil
}

func (o *Orchestrator) copyToClipboard(ctx context.Context, st *State) (Outcome, error) {
	if !o.cfg.Clipboard.Enabled || o.deps.Clipboard == nil {
		return skipped("clipboard copy disabled"), nil
	}
	pub, err := st.Store.ReadPublic(ctx)
	if err != nil {
		return warning("reading public key failed: %v", err), nil
	}
	if err := o.deps.Clipboard(string(bytes.TrimSpace(pub))); err != nil {
		return warning("copying public key to clipboard failed: %v", err), nil
	}
	return ok("public key copied to clipboard"), nil
}

// relative renders path relative to the repository root with forward slashes.
func (o *Orchestrator) relative(st *State, path string) string {
	rel, err := filepath.Rel(st.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
