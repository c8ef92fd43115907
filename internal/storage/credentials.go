package storage

import (
	"database/sql"
	"fmt"

	"github.com/nhoffmann/punchout/internal/crypto"
	"github.com/nhoffmann/punchout/internal/models"
)

// StoreCredential encrypts and upserts the secret for a service. One row
// per service name; storing again replaces the stored identity and secret
// with a fresh salt and nonce.
func (s *Store) StoreCredential(service, identity, secret string) error {
	if service == "" {
		return fmt.Errorf("service name is required")
	}

	db, err := s.Handle()
	if err != nil {
		return err
	}

	master, err := s.resolveMasterKey()
	if err != nil {
		return fmt.Errorf("failed to resolve master key: %w", err)
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return err
	}
	ciphertext, err := crypto.Encrypt(crypto.DeriveKey(master, salt), []byte(secret))
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	ts := now()
	_, err = db.Exec(`
		INSERT INTO credentials (service, email, salt, secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			email = excluded.email,
			salt = excluded.salt,
			secret = excluded.secret,
			updated_at = excluded.updated_at`,
		service, identity, salt, ciphertext, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// GetCredential decrypts and returns the credential for a service. The
// second return value is false when no credential is stored; a wrong key or
// tampered ciphertext surfaces as a *crypto.DecryptionError, never as
// garbage plaintext.
func (s *Store) GetCredential(service string) (models.Credential, bool, error) {
	db, err := s.Handle()
	if err != nil {
		return models.Credential{}, false, err
	}

	var cred models.Credential
	var salt, ciphertext []byte
	err = db.QueryRow(`
		SELECT service, email, salt, secret, created_at, updated_at
		FROM credentials WHERE service = ?`, service).
		Scan(&cred.Service, &cred.Identity, &salt, &ciphertext, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Credential{}, false, nil
		}
		return models.Credential{}, false, fmt.Errorf("failed to get credential: %w", err)
	}

	master, err := s.resolveMasterKey()
	if err != nil {
		return models.Credential{}, false, fmt.Errorf("failed to resolve master key: %w", err)
	}

	plaintext, err := crypto.Decrypt(crypto.DeriveKey(master, salt), ciphertext)
	if err != nil {
		return models.Credential{}, false, err
	}
	cred.Secret = string(plaintext)
	return cred, true, nil
}

// ListCredentials returns service and identity metadata for all stored
// credentials. Secrets are never included.
func (s *Store) ListCredentials() ([]models.CredentialInfo, error) {
	db, err := s.Handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT service, email, created_at, updated_at
		FROM credentials ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var infos []models.CredentialInfo
	for rows.Next() {
		var info models.CredentialInfo
		if err := rows.Scan(&info.Service, &info.Identity, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteCredential removes the stored credential for a service. Returns
// false when nothing was stored.
func (s *Store) DeleteCredential(service string) (bool, error) {
	db, err := s.Handle()
	if err != nil {
		return false, err
	}

	res, err := db.Exec("DELETE FROM credentials WHERE service = ?", service)
	if err != nil {
		return false, fmt.Errorf("failed to delete credential: %w", err)
	}
	changes, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return changes > 0, nil
}
