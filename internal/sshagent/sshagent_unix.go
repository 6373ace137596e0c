//go:build !windows

// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package sshagent

import (
	"io"
	"net"
	"os"

	"golang.org/x/crypto/ssh/agent"
)

// System connects to the agent socket named by SSH_AUTH_SOCK.
func System() (agent.Agent, io.Closer, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, ErrNoAgent
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, ErrNoAgent
	}
	return agent.NewClient(conn), conn, nil
}
