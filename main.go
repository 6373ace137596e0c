// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for devboot.
//
// Usage:
//
//	go run . [flags]
//	devboot.exe [command] [flags]
//
// Without a command devboot runs the onboarding checklist. See --help.
package main

import (
	"os"

	"github.com/toeirei/devboot/internal/logging"
	"github.com/toeirei/devboot/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
