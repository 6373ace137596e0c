// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cfg "github.com/toeirei/devboot/internal/config"
)

// isolate points the user config dir and the working directory at an empty
// temp dir so no real devboot.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("APPDATA", tmp)
	t.Setenv("HOME", tmp)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return tmp
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), nil, nil)
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ConfigFileNotFoundError, got: %T %v", err, err)
	}
	if got.Distro != "Ubuntu" || got.Keys.Bits != 2048 || got.Scaffold.Role != "myrole" {
		t.Fatalf("defaults not applied: %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	yaml := "identity:\n  mode: account\n  account: builder\ndistro: Debian\nkeys:\n  location: host\nskip: [docker, rdp]\nlanguage: de\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](&cobra.Command{}, cfg.Defaults(), &file, nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Identity.Mode != cfg.ModeAccount || got.Identity.Account != "builder" {
		t.Fatalf("identity not read: %+v", got.Identity)
	}
	if got.Distro != "Debian" || got.Keys.Location != cfg.KeysOnHost || got.Language != "de" {
		t.Fatalf("unexpected values: %+v", got)
	}
	if len(got.Skip) != 2 || got.Skip[0] != "docker" {
		t.Fatalf("skip not read: %v", got.Skip)
	}
	// Untouched keys keep their defaults.
	if got.Repo.Remote != "origin" {
		t.Fatalf("expected default remote, got %q", got.Repo.Remote)
	}
}

func TestLoadConfig_EnvAndFlagPrecedence(t *testing.T) {
	isolate(t)
	t.Setenv("DEVBOOT_DISTRO", "Ubuntu-24.04")
	t.Setenv("DEVBOOT_IDENTITY_USERNAME", "fromenv")

	cmd := &cobra.Command{}
	cmd.Flags().String("username", "", "")
	if err := cmd.Flags().Set("username", "fromflag"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	got, _ := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil, map[string]string{
		"identity.username": "username",
		"identity.email":    "email", // not defined on cmd, ignored
	})
	if got.Distro != "Ubuntu-24.04" {
		t.Fatalf("env not applied, distro = %q", got.Distro)
	}
	if got.Identity.Username != "fromflag" {
		t.Fatalf("flag should win over env, got %q", got.Identity.Username)
	}
}

func TestWriteConfigFileTo_DoesNotOverwrite(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "devboot.yaml")
	c := cfg.Default()

	if err := cfg.WriteConfigFileTo(&c, path); err != nil {
		t.Fatalf("WriteConfigFileTo failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty config file")
	}

	err = cfg.WriteConfigFileTo(&c, path)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist on second write, got %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &path, nil)
	if err != nil {
		t.Fatalf("reload written file: %v", err)
	}
	if got.Repo.CommitMessage != c.Repo.CommitMessage || got.RDP.FirewallMatch != "Remote Desktop" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cfg.Config)
		ok     bool
	}{
		{"default", func(*cfg.Config) {}, true},
		{"bad mode", func(c *cfg.Config) { c.Identity.Mode = "ldap" }, false},
		{"account without name", func(c *cfg.Config) { c.Identity.Mode = cfg.ModeAccount; c.Identity.Account = "" }, false},
		{"bad location", func(c *cfg.Config) { c.Keys.Location = "usb" }, false},
		{"weak key", func(c *cfg.Config) { c.Keys.Bits = 1024 }, false},
		{"bad scope", func(c *cfg.Config) { c.Git.Scope = "system" }, false},
		{"empty distro", func(c *cfg.Config) { c.Distro = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cfg.Default()
			tt.mutate(&c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
