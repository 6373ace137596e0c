// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package runner

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// DecodeOutput returns b as a string, converting it from UTF-16LE first when
// it looks like UTF-16. wsl.exe writes its own messages (including the
// distro list) in UTF-16LE regardless of the console code page.
func DecodeOutput(b []byte) string {
	if !looksUTF16LE(b) {
		return string(b)
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(b)
	if err != nil {
		return string(bytes.ReplaceAll(b, []byte{0}, nil))
	}
	return string(out)
}

func looksUTF16LE(b []byte) bool {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE {
		return true
	}
	if len(b) < 2 || len(b)%2 != 0 {
		return false
	}
	// ASCII text encoded as UTF-16LE has a zero in every odd byte.
	zeros := 0
	for i := 1; i < len(b); i += 2 {
		if b[i] == 0 {
			zeros++
		}
	}
	return zeros*2 >= len(b)/2
}
