// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package identity

import "github.com/toeirei/devboot/internal/i18n"

func promptTitle() string       { return i18n.T("prompt.username.title") }
func promptDescription() string { return i18n.T("prompt.username.description") }
