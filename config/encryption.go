package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// keyDerivationMessage is signed to derive the credential key. Changing it
// makes every existing credentials.enc unreadable.
const keyDerivationMessage = "baselinedev-encryption-key-derivation-v1"

// ErrPassphraseRequired is returned when the SSH key is encrypted and no
// passphrase was supplied.
var ErrPassphraseRequired = errors.New("SSH key is encrypted - passphrase required")

// credentialCipher seals the credentials file with AES-256-GCM under a key
// derived from an SSH signature. The same SSH key always yields the same key.
type credentialCipher struct {
	aead cipher.AEAD
}

func newCredentialCipher(keyPath, passphrase string) (*credentialCipher, error) {
	signer, err := loadSigner(keyPath, passphrase)
	if err != nil {
		return nil, err
	}

	key, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &credentialCipher{aead: aead}, nil
}

func loadSigner(keyPath, passphrase string) (ssh.Signer, error) {
	encrypted, err := IsSSHKeyEncrypted(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check SSH key: %w", err)
	}
	Debugf("[Credentials] SSH key encrypted=%v", encrypted)

	var signer ssh.Signer
	switch {
	case encrypted && passphrase == "":
		return nil, ErrPassphraseRequired
	case encrypted:
		signer, err = LoadSSHPrivateKeyWithPassphrase(keyPath, passphrase)
	default:
		signer, err = LoadSSHPrivateKey(keyPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return signer, nil
}

// seal returns nonce || ciphertext+tag.
func (c *credentialCipher) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *credentialCipher) open(sealed []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("ciphertext too short")
	}

	plaintext, err := c.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

// DeriveAESKeyFromSSH hashes the signature of a fixed message into a 32-byte
// key. It relies on the key type producing deterministic signatures
// (ed25519, RSA PKCS#1 v1.5).
func DeriveAESKeyFromSSH(signer ssh.Signer) ([]byte, error) {
	signature, err := signer.Sign(rand.Reader, []byte(keyDerivationMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to sign message: %w", err)
	}

	sum := sha256.Sum256(signature.Blob)
	return sum[:], nil
}
