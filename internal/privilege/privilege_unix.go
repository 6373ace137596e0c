//go:build !windows

// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package privilege

import "os"

func isElevated() (bool, error) {
	return os.Geteuid() == 0, nil
}
