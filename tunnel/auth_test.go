package tunnel

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestBuildAuthMethods_ExplicitKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_test")
	writeTestKey(t, keyPath, "")

	methods, err := BuildAuthMethods(&SSHConfig{KeyPath: keyPath})
	if err != nil {
		t.Fatalf("BuildAuthMethods: %v", err)
	}
	if len(methods) != 1 {
		t.Fatalf("expected 1 auth method, got %d", len(methods))
	}
}

func TestBuildAuthMethods_EncryptedKeyPrompts(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_enc")
	writeTestKey(t, keyPath, "hunter2")

	var asked string
	cfg := &SSHConfig{
		KeyPath: keyPath,
		Prompt: func(label string) ([]byte, error) {
			asked = label
			return []byte("hunter2"), nil
		},
	}
	if _, err := BuildAuthMethods(cfg); err != nil {
		t.Fatalf("BuildAuthMethods: %v", err)
	}
	if asked == "" {
		t.Error("expected a passphrase prompt")
	}
}

func TestBuildAuthMethods_PasswordPromptError(t *testing.T) {
	cfg := &SSHConfig{
		PromptPass: true,
		Prompt: func(string) ([]byte, error) {
			return nil, errors.New("no tty")
		},
	}
	if _, err := BuildAuthMethods(cfg); err == nil {
		t.Fatal("expected prompt error to surface")
	}
}

func TestBuildAuthMethods_MissingKey(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	_, err := BuildAuthMethods(&SSHConfig{KeyPath: "/nonexistent/key"})
	if err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestBuildAuthMethods_NoMethods(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	t.Setenv("HOME", t.TempDir())

	_, err := BuildAuthMethods(&SSHConfig{})
	if err == nil {
		t.Fatal("expected error when nothing is configured")
	}
}

func TestHostKeyCallback_Insecure(t *testing.T) {
	cb, err := hostKeyCallback(&SSHConfig{StrictHostKey: false})
	if err != nil {
		t.Fatal(err)
	}
	if cb == nil {
		t.Fatal("callback should not be nil")
	}
}

func TestHostKeyCallback_StrictMissingFile(t *testing.T) {
	cfg := &SSHConfig{StrictHostKey: true, KnownHosts: filepath.Join(t.TempDir(), "absent")}
	if _, err := hostKeyCallback(cfg); err == nil {
		t.Fatal("expected error for missing known_hosts")
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func newSigner(t *testing.T) (ssh.Signer, ed25519.PrivateKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	return signer, priv
}

// writeTestKey writes a fresh ed25519 key in OpenSSH format, encrypted
// when passphrase is non-empty.
func writeTestKey(t *testing.T, path, passphrase string) ssh.Signer {
	t.Helper()
	signer, priv := newSigner(t)

	var block *pem.Block
	var err error
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "craftlink-test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "craftlink-test", []byte(passphrase))
	}
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	return signer
}
