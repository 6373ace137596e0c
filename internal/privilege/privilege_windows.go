//go:build windows

// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package privilege

import "golang.org/x/sys/windows"

// isElevated inspects the process token. A member of Administrators running
// without UAC elevation gets a filtered token and reports false here.
func isElevated() (bool, error) {
	return windows.GetCurrentProcessToken().IsElevated(), nil
}
