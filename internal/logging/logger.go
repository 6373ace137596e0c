// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package logging holds the process-wide logger used by devboot. Steps get a
// *log.Logger injected; code without one uses L through the helpers below.
package logging

import (
	"fmt"
	"io"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger.
var L = New(os.Stderr)

// New returns a logger in the format devboot uses everywhere: timestamps
// off, a short prefix, and info level.
func New(w io.Writer) *clog.Logger {
	return clog.NewWithOptions(w, clog.Options{
		Prefix:          "devboot",
		ReportTimestamp: false,
		Level:           clog.InfoLevel,
	})
}

// SetVerbose switches L between info and debug level.
func SetVerbose(enabled bool) {
	if enabled {
		L.SetLevel(clog.DebugLevel)
		return
	}
	L.SetLevel(clog.InfoLevel)
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...any) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...any) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...any) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...any) {
	L.Error(fmt.Sprintf(format, v...))
}
