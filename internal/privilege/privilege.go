// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package privilege reports whether the current process runs in an elevated
// (administrator-equivalent) context.
package privilege

import "errors"

// ErrNotElevated is returned by Require when the process is not elevated.
var ErrNotElevated = errors.New("administrator privileges are required")

// Checker reports whether the current process is elevated.
type Checker interface {
	IsElevated() (bool, error)
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func() (bool, error)

// IsElevated calls f.
func (f CheckerFunc) IsElevated() (bool, error) { return f() }

// System returns the Checker for the running operating system.
func System() Checker { return CheckerFunc(isElevated) }

// Require returns ErrNotElevated unless c reports an elevated context.
func Require(c Checker) error {
	ok, err := c.IsElevated()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotElevated
	}
	return nil
}
