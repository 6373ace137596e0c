// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads devboot's configuration from defaults, a YAML file,
// DEVBOOT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	fileName  = "devboot"
	envPrefix = "devboot"
)

// GetConfigPath returns the full path of the user or system config file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "devboot")
		default:
			configDir = "/etc/devboot"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "devboot")
	}

	return filepath.Join(configDir, fileName+".yaml"), nil
}

// LoadConfig resolves T from defaults, the first devboot.yaml found (or
// configFile when non-nil), the environment and the flags of cmd. bindings
// maps config keys to flag names; flags that cmd does not define are
// ignored.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string, bindings map[string]string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	if configFile != nil {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	var notFound viper.ConfigFileNotFoundError
	readErr := v.ReadInConfig()
	if readErr != nil && !errors.As(readErr, &notFound) {
		return c, fmt.Errorf("read config: %w", readErr)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for key, flag := range bindings {
			f := cmd.Flags().Lookup(flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return c, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}

	// The not-found error is passed through so callers can offer to write a
	// default file; the decoded value is still valid.
	if readErr != nil {
		return c, readErr
	}
	return c, nil
}

// WriteConfigFile marshals c to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo marshals c to path, creating parent directories. An
// existing file is left untouched and reported through os.ErrExist.
func WriteConfigFileTo[T any](c *T, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, os.ErrExist)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0o644)
}
