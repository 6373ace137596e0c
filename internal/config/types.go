// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"slices"
)

// Identity modes.
const (
	ModePrompt  = "prompt"
	ModeAccount = "account"
)

// Key locations.
const (
	KeysInDistro = "distro"
	KeysOnHost   = "host"
)

// Git config scopes.
const (
	ScopeGlobal = "global"
	ScopeLocal  = "local"
)

// Config is the full devboot configuration. It is built once by the CLI and
// passed into the orchestrator; nothing reads it from global state.
type Config struct {
	Identity  IdentityConfig `mapstructure:"identity" yaml:"identity"`
	Distro    string         `mapstructure:"distro" yaml:"distro"`
	Keys      KeysConfig     `mapstructure:"keys" yaml:"keys"`
	Repo      RepoConfig     `mapstructure:"repo" yaml:"repo"`
	Git       GitConfig      `mapstructure:"git" yaml:"git"`
	Packages  PackagesConfig `mapstructure:"packages" yaml:"packages"`
	RDP       RDPConfig      `mapstructure:"rdp" yaml:"rdp"`
	Scaffold  ScaffoldConfig `mapstructure:"scaffold" yaml:"scaffold"`
	Agent     ToggleConfig   `mapstructure:"agent" yaml:"agent"`
	Clipboard ToggleConfig   `mapstructure:"clipboard" yaml:"clipboard"`
	Skip      []string       `mapstructure:"skip" yaml:"skip"`
	Language  string         `mapstructure:"language" yaml:"language"`
	Verbose   bool           `mapstructure:"verbose" yaml:"verbose"`
}

// IdentityConfig selects how the operator's username is resolved.
type IdentityConfig struct {
	// Mode is "prompt" (ask the operator) or "account" (use a fixed local account).
	Mode     string `mapstructure:"mode" yaml:"mode"`
	Account  string `mapstructure:"account" yaml:"account"`
	Username string `mapstructure:"username" yaml:"username"`
	Email    string `mapstructure:"email" yaml:"email"`
}

// KeysConfig controls where the SSH key pair lives.
type KeysConfig struct {
	// Location is "distro" (inside the WSL distro) or "host" (Windows profile).
	Location string `mapstructure:"location" yaml:"location"`
	// Dir overrides the key directory; empty means ~/.ssh of the chosen filesystem.
	Dir  string `mapstructure:"dir" yaml:"dir"`
	Bits int    `mapstructure:"bits" yaml:"bits"`
}

type RepoConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	PubkeyDir     string `mapstructure:"pubkey_dir" yaml:"pubkey_dir"`
	Remote        string `mapstructure:"remote" yaml:"remote"`
	CommitMessage string `mapstructure:"commit_message" yaml:"commit_message"`
}

type GitConfig struct {
	Scope string `mapstructure:"scope" yaml:"scope"`
}

// PackagesConfig holds winget package identifiers.
type PackagesConfig struct {
	PowerShell string `mapstructure:"powershell" yaml:"powershell"`
	Docker     string `mapstructure:"docker" yaml:"docker"`
}

type RDPConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	FirewallMatch string `mapstructure:"firewall_match" yaml:"firewall_match"`
}

type ScaffoldConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Root    string `mapstructure:"root" yaml:"root"`
	Role    string `mapstructure:"role" yaml:"role"`
}

type ToggleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Defaults returns the default value of every key, in viper's dotted form.
func Defaults() map[string]any {
	return map[string]any{
		"identity.mode":       ModePrompt,
		"identity.account":    "devops",
		"identity.username":   "",
		"identity.email":      "",
		"distro":              "Ubuntu",
		"keys.location":       KeysInDistro,
		"keys.dir":            "",
		"keys.bits":           2048,
		"repo.path":           "",
		"repo.pubkey_dir":     "pubkey",
		"repo.remote":         "origin",
		"repo.commit_message": "Add SSH public key for {{.Username}}",
		"git.scope":           ScopeGlobal,
		"packages.powershell": "Microsoft.PowerShell",
		"packages.docker":     "Docker.DockerDesktop",
		"rdp.enabled":         true,
		"rdp.firewall_match":  "Remote Desktop",
		"scaffold.enabled":    true,
		"scaffold.root":       "ansible",
		"scaffold.role":       "myrole",
		"agent.enabled":       false,
		"clipboard.enabled":   false,
		"skip":                []string{},
		"language":            "en",
		"verbose":             false,
	}
}

// Default returns a Config populated from Defaults.
func Default() Config {
	return Config{
		Identity: IdentityConfig{Mode: ModePrompt, Account: "devops"},
		Distro:   "Ubuntu",
		Keys:     KeysConfig{Location: KeysInDistro, Bits: 2048},
		Repo: RepoConfig{
			PubkeyDir:     "pubkey",
			Remote:        "origin",
			CommitMessage: "Add SSH public key for {{.Username}}",
		},
		Git:      GitConfig{Scope: ScopeGlobal},
		Packages: PackagesConfig{PowerShell: "Microsoft.PowerShell", Docker: "Docker.DockerDesktop"},
		RDP:      RDPConfig{Enabled: true, FirewallMatch: "Remote Desktop"},
		Scaffold: ScaffoldConfig{Enabled: true, Root: "ansible", Role: "myrole"},
		Language: "en",
	}
}

// Validate rejects values the orchestrator cannot act on.
func (c *Config) Validate() error {
	if !slices.Contains([]string{ModePrompt, ModeAccount}, c.Identity.Mode) {
		return fmt.Errorf("identity.mode must be %q or %q, got %q", ModePrompt, ModeAccount, c.Identity.Mode)
	}
	if c.Identity.Mode == ModeAccount && c.Identity.Account == "" {
		return fmt.Errorf("identity.account is required when identity.mode is %q", ModeAccount)
	}
	if !slices.Contains([]string{KeysInDistro, KeysOnHost}, c.Keys.Location) {
		return fmt.Errorf("keys.location must be %q or %q, got %q", KeysInDistro, KeysOnHost, c.Keys.Location)
	}
	if c.Keys.Bits < 2048 {
		return fmt.Errorf("keys.bits must be at least 2048, got %d", c.Keys.Bits)
	}
	if !slices.Contains([]string{ScopeGlobal, ScopeLocal}, c.Git.Scope) {
		return fmt.Errorf("git.scope must be %q or %q, got %q", ScopeGlobal, ScopeLocal, c.Git.Scope)
	}
	if c.Distro == "" {
		return fmt.Errorf("distro must not be empty")
	}
	if c.Repo.PubkeyDir == "" || c.Repo.Remote == "" {
		return fmt.Errorf("repo.pubkey_dir and repo.remote must not be empty")
	}
	return nil
}
