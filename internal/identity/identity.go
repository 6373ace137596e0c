// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package identity resolves who is being onboarded and derives the names
// that depend on it: the SSH key name and the per-user git branch.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/toeirei/devboot/internal/config"
	"github.com/toeirei/devboot/internal/prompt"
)

var (
	// ErrInvalidUsername is returned for anything but a non-empty run of ASCII letters and digits.
	ErrInvalidUsername = errors.New("username must contain only letters A-Z, a-z and digits 0-9")
	// ErrAccountMissing is returned when the fixed account does not exist.
	ErrAccountMissing = errors.New("account does not exist")
	// ErrHomeNotWritable is returned when the fixed account's home directory cannot be written.
	ErrHomeNotWritable = errors.New("account home directory is not writable")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Identity is the operator being onboarded.
type Identity struct {
	Username string
	// Home is the account's home directory. Only the account strategy fills it.
	Home string
}

// KeyName returns "<username>-key".
func (i Identity) KeyName() string { return KeyName(i.Username) }

// BranchName returns "user-<username>".
func (i Identity) BranchName() string { return BranchName(i.Username) }

// KeyName derives the SSH key file name for username.
func KeyName(username string) string { return username + "-key" }

// BranchName derives the per-user git branch for username.
func BranchName(username string) string { return "user-" + username }

// ValidateUsername returns ErrInvalidUsername unless s matches ^[A-Za-z0-9]+$.
func ValidateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}

// Resolver produces the Identity for this run.
type Resolver interface {
	Resolve(ctx context.Context) (Identity, error)
}

// NewResolver picks the strategy named by cfg.Mode.
func NewResolver(cfg config.IdentityConfig, p prompt.Prompter, logger *log.Logger) (Resolver, error) {
	switch cfg.Mode {
	case config.ModeAccount:
		return &AccountResolver{Account: cfg.Account}, nil
	case config.ModePrompt, "":
		return &PromptResolver{Preset: cfg.Username, Prompter: p, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
}

// PromptResolver asks the operator for a username. A valid Preset (from the
// config file or --username) skips the prompt.
type PromptResolver struct {
	Preset   string
	Prompter prompt.Prompter
	Logger   *log.Logger
}

// Resolve implements Resolver. Invalid input is re-requested, never fatal.
func (r *PromptResolver) Resolve(ctx context.Context) (Identity, error) {
	if r.Preset != "" {
		if err := ValidateUsername(r.Preset); err == nil {
			return Identity{Username: r.Preset}, nil
		}
		if r.Logger != nil {
			r.Logger.Warn("configured username rejected, asking instead", "username", r.Preset)
		}
	}
	if r.Prompter == nil {
		return Identity{}, errors.New("no prompter configured for interactive identity")
	}
	name, err := r.Prompter.Ask(ctx, prompt.Question{
		Title:       promptTitle(),
		Description: promptDescription(),
		Placeholder: "alice",
		Validate:    ValidateUsername,
	})
	if err != nil {
		return Identity{}, fmt.Errorf("read username: %w", err)
	}
	return Identity{Username: name}, nil
}

// AccountResolver uses a fixed local account, such as a shared provisioning
// user created by an image build.
type AccountResolver struct {
	Account string
	// Lookup defaults to os/user.Lookup.
	Lookup func(name string) (*user.User, error)
}

// Resolve implements Resolver.
func (r *AccountResolver) Resolve(context.Context) (Identity, error) {
	if err := ValidateUsername(r.Account); err != nil {
		return Identity{}, fmt.Errorf("account %q: %w", r.Account, err)
	}
	lookup := r.Lookup
	if lookup == nil {
		lookup = user.Lookup
	}
	u, err := lookup(r.Account)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s: %v", ErrAccountMissing, r.Account, err)
	}
	if u.HomeDir == "" {
		return Identity{}, fmt.Errorf("%w: %s has no home directory", ErrHomeNotWritable, r.Account)
	}
	if err := probeWritable(u.HomeDir); err != nil {
		return Identity{}, fmt.Errorf("%w: %s: %v", ErrHomeNotWritable, u.HomeDir, err)
	}
	return Identity{Username: r.Account, Home: u.HomeDir}, nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".devboot-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
