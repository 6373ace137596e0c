// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the devboot command line using Cobra. It resolves
// configuration, builds the real collaborators and hands them to the
// onboarding orchestrator. CLI code stays thin: everything that changes the
// machine lives in internal/onboard.
package cli
