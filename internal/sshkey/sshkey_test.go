// Copyright (c) 2026 Devboot Team
// Devboot - developer workstation onboarding
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/toeirei/devboot/internal/runner"
	"github.com/toeirei/devboot/internal/testutil"
	"golang.org/x/crypto/ssh"
)

func TestGenerateRSA(t *testing.T) {
	kp, err := GenerateRSA(2048, "alice-key")
	if err != nil {
		t.Fatalf("GenerateRSA: %v", err)
	}
	pub, comment, _, _, err := ssh.ParseAuthorizedKey(kp.PublicKey)
	if err != nil {
		t.Fatalf("parse public key: %v", err)
	}
	if pub.Type() != ssh.KeyAlgoRSA {
		t.Fatalf("key type = %s, want ssh-rsa", pub.Type())
	}
	if comment != "alice-key" {
		t.Fatalf("comment = %q", comment)
	}
	signer, err := ssh.ParsePrivateKey(kp.PrivateKey)
	if err != nil {
		t.Fatalf("private key must parse without a passphrase: %v", err)
	}
	if !bytes.Equal(signer.PublicKey().Marshal(), pub.Marshal()) {
		t.Fatalf("private and public halves do not match")
	}
	if !bytes.HasSuffix(kp.PublicKey, []byte("\n")) {
		t.Fatalf("public key line should end with a newline")
	}
}

func TestParse(t *testing.T) {
	alg, data, comment, err := Parse(`from="10.0.0.1" ssh-rsa AAAAB3Nza bob key`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if alg != "ssh-rsa" || data != "AAAAB3Nza" || comment != "bob key" {
		t.Fatalf("Parse() = %q %q %q", alg, data, comment)
	}
	if _, _, _, err := Parse("   "); err == nil {
		t.Fatalf("expected error for empty line")
	}
	if _, _, _, err := Parse("not-a-key AAAA"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
	if _, _, _, err := Parse("ssh-ed25519"); err == nil {
		t.Fatalf("expected error for missing key data")
	}
}

func TestSamePublicKey(t *testing.T) {
	a, err := GenerateRSA(2048, "one")
	if err != nil {
		t.Fatalf("GenerateRSA: %v", err)
	}
	b, err := GenerateRSA(2048, "two")
	if err != nil {
		t.Fatalf("GenerateRSA: %v", err)
	}
	recommented := bytes.Replace(a.PublicKey, []byte(" one"), []byte(" other comment"), 1)

	if !SamePublicKey(a.PublicKey, recommented) {
		t.Fatalf("comment change must not make keys differ")
	}
	if SamePublicKey(a.PublicKey, b.PublicKey) {
		t.Fatalf("different keys reported equal")
	}
	if !SamePublicKey([]byte("garbage\n"), []byte("garbage")) {
		t.Fatalf("unparsable input should compare trimmed bytes")
	}
	if _, err := Fingerprint(a.PublicKey); err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
}

func TestHostStore_EnsureIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := &HostStore{FS: fs, Dir: "/home/alice/.ssh", Name: "alice-key", Bits: 2048, Comment: "alice-key"}

	st, err := s.State(context.Background())
	if err != nil || st != Missing {
		t.Fatalf("State() = %v, %v", st, err)
	}
	created, err := s.Ensure(context.Background())
	if err != nil || !created {
		t.Fatalf("Ensure() = %v, %v", created, err)
	}

	priv, pub := s.Paths()
	if priv != "/home/alice/.ssh/alice-key" && !strings.HasSuffix(priv, "alice-key") {
		t.Fatalf("unexpected private path %q", priv)
	}
	for path, mode := range map[string]uint32{priv: 0o600, pub: 0o644} {
		fi, err := fs.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if uint32(fi.Mode().Perm()) != mode {
			t.Fatalf("%s mode = %o, want %o", path, fi.Mode().Perm(), mode)
		}
	}
	first, _ := s.ReadPublic(context.Background())

	created, err = s.Ensure(context.Background())
	if err != nil || created {
		t.Fatalf("second Ensure() = %v, %v; want no change", created, err)
	}
	second, _ := s.ReadPublic(context.Background())
	if !bytes.Equal(first, second) {
		t.Fatalf("second run replaced the key")
	}
}

func TestHostStore_RebuildsMissingPublicHalf(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := &HostStore{FS: fs, Dir: "/k", Name: "bob-key", Comment: "bob-key"}
	kp, err := GenerateRSA(2048, "bob-key")
	if err != nil {
		t.Fatalf("GenerateRSA: %v", err)
	}
	priv, _ := s.Paths()
	if err := afero.WriteFile(fs, priv, kp.PrivateKey, 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if st, _ := s.State(context.Background()); st != PrivateOnly {
		t.Fatalf("State() = %v, want PrivateOnly", st)
	}
	if _, err := s.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	got, _ := s.ReadPublic(context.Background())
	if !SamePublicKey(got, kp.PublicKey) {
		t.Fatalf("rebuilt public key does not match the existing private key")
	}
	stored, _ := s.ReadPrivate()
	if !bytes.Equal(stored, kp.PrivateKey) {
		t.Fatalf("private key must not be replaced")
	}
}

func TestDistroStore(t *testing.T) {
	f := testutil.NewFakeRunner()
	state := "missing"
	f.OnFunc("wsl -d Ubuntu -e sh -c if [ -f", func(testutil.Call) (*runner.Result, error) {
		return &runner.Result{Stdout: state + "\n"}, nil
	})
	f.OnFunc("wsl -d Ubuntu -e sh -c mkdir -p", func(testutil.Call) (*runner.Result, error) {
		state = "complete"
		return &runner.Result{}, nil
	})
	f.On("wsl -d Ubuntu -e sh -c cat", runner.Result{Stdout: "ssh-rsa AAAA alice-key\n"})

	s := &DistroStore{Runner: f, Distro: "Ubuntu", Name: "alice-key", Comment: "alice-key"}
	priv, pub := s.Paths()
	if priv != "~/.ssh/alice-key" || pub != "~/.ssh/alice-key.pub" {
		t.Fatalf("Paths() = %q, %q", priv, pub)
	}

	created, err := s.Ensure(context.Background())
	if err != nil || !created {
		t.Fatalf("Ensure() = %v, %v", created, err)
	}
	var keygen string
	for _, c := range f.Calls() {
		if strings.Contains(c.Line(), "ssh-keygen") {
			keygen = c.Args[len(c.Args)-1]
		}
	}
	for _, want := range []string{"-t rsa", "-b 2048", "-N ''", `"$HOME"/'.ssh'/'alice-key'`, "chmod 700", "chmod 600", "chmod 644"} {
		if !strings.Contains(keygen, want) {
			t.Fatalf("keygen script missing %q: %s", want, keygen)
		}
	}

	created, err = s.Ensure(context.Background())
	if err != nil || created {
		t.Fatalf("second Ensure() = %v, %v; want no change", created, err)
	}
	if n := f.Count("wsl -d Ubuntu -e sh -c mkdir -p"); n != 1 {
		t.Fatalf("ssh-keygen ran %d times, want 1", n)
	}

	got, err := s.ReadPublic(context.Background())
	if err != nil || !strings.HasPrefix(string(got), "ssh-rsa") {
		t.Fatalf("ReadPublic() = %q, %v", got, err)
	}
}

func TestDistroStore_KeygenFailure(t *testing.T) {
	f := testutil.NewFakeRunner().
		On("wsl -d Ubuntu -e sh -c if", runner.Result{Stdout: "missing"}).
		On("wsl -d Ubuntu -e sh -c mkdir", runner.Result{ExitCode: 1, Stderr: "ssh-keygen: not found"})
	s := &DistroStore{Runner: f, Distro: "Ubuntu", Name: "bob-key"}
	if _, err := s.Ensure(context.Background()); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected keygen failure, got %v", err)
	}
}

func TestShellQuote(t *testing.T) {
	if got := ShellQuote("it's"); got != `'it'\''s'` {
		t.Fatalf("ShellQuote() = %s", got)
	}
}
