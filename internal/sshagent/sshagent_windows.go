//go:build windows

// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package sshagent

import (
	"io"
	"os"

	"github.com/Microsoft/go-winio"
	"github.com/davidmz/go-pageant"
	"golang.org/x/crypto/ssh/agent"
)

const openSSHPipe = `\\.\pipe\openssh-ssh-agent`

// System tries Pageant-compatible agents first, then the OpenSSH for Windows
// named pipe (SSH_AUTH_SOCK or the default pipe name).
func System() (agent.Agent, io.Closer, error) {
	if pageant.Available() {
		return pageant.New(), nil, nil
	}

	pipe := os.Getenv("SSH_AUTH_SOCK")
	if pipe == "" {
		pipe = openSSHPipe
	}
	conn, err := winio.DialPipe(pipe, nil)
	if err != nil {
		return nil, nil, ErrNoAgent
	}
	return agent.NewClient(conn), conn, nil
}
