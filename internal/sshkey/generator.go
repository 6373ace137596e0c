// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey creates and inspects the operator's SSH key pair, either on
// the Windows host or inside the WSL distro.
package sshkey

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA modulus size used when none is configured.
const DefaultBits = 2048

// KeyPair is a marshalled key pair: an OpenSSH private key PEM and a public
// key line in authorized_keys format ending with a newline.
type KeyPair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// GenerateRSA creates an unencrypted RSA key pair of the given size.
func GenerateRSA(bits int, comment string) (*KeyPair, error) {
	if bits == 0 {
		bits = DefaultBits
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate rsa key pair: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("generated rsa key is invalid: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(privateKey, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  publicLine(sshPub, comment),
	}, nil
}

// PublicFromPrivate rebuilds the public key line of an unencrypted private key.
func PublicFromPrivate(privatePEM []byte, comment string) ([]byte, error) {
	signer, err := ssh.ParsePrivateKey(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return publicLine(signer.PublicKey(), comment), nil
}

func publicLine(k ssh.PublicKey, comment string) []byte {
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(k)))
	if comment != "" {
		line += " " + comment
	}
	return []byte(line + "\n")
}
