// Package crypto provides the authenticated encryption used for secrets at
// rest: AES-256-GCM with a fresh nonce per encryption and a key derived from
// the master secret via PBKDF2-SHA256 with a per-record salt.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the per-record PBKDF2 salt length in bytes.
	SaltSize = 16
	// KeySize is the derived AES-256 key length in bytes.
	KeySize = 32
	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000
)

// DecryptionError indicates a wrong key or tampered ciphertext. It is
// always surfaced instead of returning garbage plaintext.
type DecryptionError struct {
	Err error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %v", e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// NewSalt generates a random PBKDF2 salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches the master secret into an AES-256 key.
func DeriveKey(master string, salt []byte) []byte {
	return pbkdf2.Key([]byte(master), salt, Iterations, KeySize, sha256.New)
}

// Encrypt seals plaintext with AES-256-GCM and returns nonce+ciphertext.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, ciphertext...), nil
}

// Decrypt opens nonce+ciphertext produced by Encrypt. Any integrity or key
// failure is reported as a DecryptionError.
func Decrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}

	ns := aesgcm.NonceSize()
	if len(data) < ns {
		return nil, &DecryptionError{Err: fmt.Errorf("ciphertext too short")}
	}
	nonce, ciphertext := data[:ns], data[ns:]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &DecryptionError{Err: err}
	}
	return plaintext, nil
}

// NewToken generates an unguessable opaque token for sessions.
func NewToken(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
