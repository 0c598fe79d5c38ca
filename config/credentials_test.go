package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestCredentialStorePlainText(t *testing.T) {
	dataDir := t.TempDir()

	store := NewCredentialStore(SecurityPlainText, "")
	require.NoError(t, store.Load(dataDir))
	require.Empty(t, store.Get(KeyClaude))

	require.NoError(t, store.Set(KeyClaude, "sk-ant-test"))
	require.NoError(t, store.Set(KeyGemini, ""))
	require.Error(t, store.Set("", "value"))
	require.NoError(t, store.Save(dataDir))

	info, err := os.Stat(credentialsPath(dataDir))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded := NewCredentialStore(SecurityPlainText, "")
	require.NoError(t, reloaded.Load(dataDir))
	require.Equal(t, "sk-ant-test", reloaded.Get(KeyClaude))
	require.Equal(t, []string{KeyClaude}, reloaded.Keys())

	require.NoError(t, reloaded.Delete(KeyClaude))
	require.Empty(t, reloaded.Get(KeyClaude))
}

func TestCredentialStoreSSHKey(t *testing.T) {
	dataDir := t.TempDir()
	keyPath := writeTestSSHKey(t)

	store := NewCredentialStore(SecuritySSHKey, keyPath)
	require.NoError(t, store.Load(dataDir))
	require.NoError(t, store.Set(KeyOpenAI, "sk-openai-test"))
	require.NoError(t, store.Save(dataDir))

	raw, err := os.ReadFile(encryptedCredentialsPath(dataDir))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "sk-openai-test")

	reloaded := NewCredentialStore(SecuritySSHKey, keyPath)
	require.NoError(t, reloaded.Load(dataDir))
	require.Equal(t, "sk-openai-test", reloaded.Get(KeyOpenAI))
	require.Equal(t, SecuritySSHKey, reloaded.GetMethod())
}

func TestCredentialStoreUnknownMethod(t *testing.T) {
	store := NewCredentialStore("vault", "")
	require.Error(t, store.Load(t.TempDir()))
	require.Error(t, store.Save(t.TempDir()))
}

func writeTestSSHKey(t *testing.T) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0600))
	return path
}

func TestCredentialStoreEncryptedSSHKey(t *testing.T) {
	dataDir := t.TempDir()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte("hunter2"))
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(block), 0600))

	store := NewCredentialStore(SecuritySSHKey, keyPath)
	require.NoError(t, store.Set(KeyClaude, "sk-ant-test"))
	require.ErrorIs(t, store.Save(dataDir), ErrPassphraseRequired)

	store.SetPassphrase("hunter2")
	require.NoError(t, store.Save(dataDir))

	reloaded := NewCredentialStore(SecuritySSHKey, keyPath)
	reloaded.SetPassphrase("hunter2")
	require.NoError(t, reloaded.Load(dataDir))
	require.Equal(t, "sk-ant-test", reloaded.Get(KeyClaude))
}
