// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshagent loads the freshly generated key into a running ssh-agent
// so the first git push works without further setup.
package sshagent

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// ErrNoAgent is returned when no ssh-agent could be reached.
var ErrNoAgent = errors.New("no ssh-agent available")

// Dialer connects to an agent. The returned Closer may be nil.
type Dialer func() (agent.Agent, io.Closer, error)

// Register adds the unencrypted private key to the agent reached by dial.
// It reports false when the agent already holds the key.
func Register(dial Dialer, privatePEM []byte, comment string) (bool, error) {
	ag, closer, err := dial()
	if err != nil {
		return false, err
	}
	if ag == nil {
		return false, ErrNoAgent
	}
	if closer != nil {
		defer closer.Close()
	}

	raw, err := ssh.ParseRawPrivateKey(privatePEM)
	if err != nil {
		return false, fmt.Errorf("parse private key: %w", err)
	}
	signer, err := ssh.NewSignerFromKey(raw)
	if err != nil {
		return false, fmt.Errorf("load private key: %w", err)
	}
	want := signer.PublicKey().Marshal()

	loaded, err := ag.List()
	if err != nil {
		return false, fmt.Errorf("list agent keys: %w", err)
	}
	for _, k := range loaded {
		if bytes.Equal(k.Marshal(), want) {
			return false, nil
		}
	}

	if err := ag.Add(agent.AddedKey{PrivateKey: raw, Comment: comment}); err != nil {
		return false, fmt.Errorf("add key to agent: %w", err)
	}
	return true, nil
}
