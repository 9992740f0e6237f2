// File: internal/infra/security/encryption_service.go
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/razavioo/notimetolie.com/internal/domain"
)

const (
	vaultSalt       = "notimetolie-vault-v1"
	kdfIterations   = 100_000
	derivedKeyBytes = 32
)

// EncryptionService is the secret vault for provider API keys at rest.
// A 32-byte AES key is derived from the server-wide secret with
// PBKDF2-SHA256 and a fixed domain salt, then payloads are sealed with
// AES-GCM using a random nonce per message. Format: base64(nonce || ct).
type EncryptionService struct {
	gcm cipher.AEAD
}

func NewEncryptionService(secret string) (*EncryptionService, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret must not be empty")
	}
	key := pbkdf2.Key([]byte(secret), []byte(vaultSalt), kdfIterations, derivedKeyBytes, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &EncryptionService{gcm: gcm}, nil
}

// Encrypt seals plaintext. An empty plaintext is a no-op and maps to ""
// so absent credentials stay absent.
func (e *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}
	ct := e.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Malformed or tampered ciphertext yields
// ("", domain.ErrDecryptionFailed): callers must treat that as "no usable
// credential", never as a valid empty key.
func (e *EncryptionService) Decrypt(b64 string) (string, error) {
	if b64 == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	ns := e.gcm.NonceSize()
	if len(data) < ns {
		return "", domain.ErrDecryptionFailed
	}
	nonce, ct := data[:ns], data[ns:]
	pt, err := e.gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", domain.ErrDecryptionFailed
	}
	return string(pt), nil
}
