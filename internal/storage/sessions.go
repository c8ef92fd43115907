package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/crypto"
	"github.com/nhoffmann/punchout/internal/models"
)

// CreateSession issues a new session with an unguessable random token.
// Persistent sessions expire after thirty days; non-persistent sessions
// carry no expiry and live until explicitly cleared.
func (s *Store) CreateSession(identity string, persistent, isAdmin bool) (models.Session, error) {
	if identity == "" {
		return models.Session{}, fmt.Errorf("identity is required")
	}

	db, err := s.Handle()
	if err != nil {
		return models.Session{}, err
	}

	token, err := crypto.NewToken(constants.SessionTokenBytes)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := models.Session{
		Token:     token,
		Identity:  identity,
		Admin:     isAdmin,
		CreatedAt: now(),
	}
	var expiresAt sql.NullString
	if persistent {
		exp := time.Now().UTC().Add(constants.PersistentSessionTTL).Format(time.RFC3339)
		session.ExpiresAt = &exp
		expiresAt = sql.NullString{String: exp, Valid: true}
	}

	_, err = db.Exec(`
		INSERT INTO sessions (token, email, is_admin, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.Identity, session.Admin, expiresAt, session.CreatedAt,
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks a token and returns the session when valid. The
// boolean is the only signal the caller gets; unknown and expired tokens
// look identical, so the result cannot be used as a token-guessing oracle.
// Expired rows are deleted on detection.
func (s *Store) ValidateSession(token string) (models.Session, bool, error) {
	db, err := s.Handle()
	if err != nil {
		return models.Session{}, false, err
	}

	var session models.Session
	var expiresAt sql.NullString
	err = db.QueryRow(`
		SELECT token, email, is_admin, expires_at, created_at
		FROM sessions WHERE token = ?`, token).
		Scan(&session.Token, &session.Identity, &session.Admin, &expiresAt, &session.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, fmt.Errorf("failed to look up session: %w", err)
	}

	if expiresAt.Valid {
		exp, err := time.Parse(time.RFC3339, expiresAt.String)
		if err != nil || time.Now().UTC().After(exp) {
			// Expired (or unreadable) sessions are cleaned up lazily
			_, _ = db.Exec("DELETE FROM sessions WHERE token = ?", token)
			return models.Session{}, false, nil
		}
		session.ExpiresAt = &expiresAt.String
	}

	return session, true, nil
}

// ClearSession deletes a session token. Clearing an unknown token is not
// an error.
func (s *Store) ClearSession(token string) error {
	db, err := s.Handle()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ClearSessionsForIdentity deletes every session belonging to an identity.
func (s *Store) ClearSessionsForIdentity(identity string) error {
	db, err := s.Handle()
	if err != nil {
		return err
	}
	if _, err := db.Exec("DELETE FROM sessions WHERE email = ?", identity); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
