package storage

import (
	"testing"
	"time"
)

func TestSessionPersistentValidates(t *testing.T) {
	store := setupTestStore(t)

	session, err := store.CreateSession("user@example.com", true, false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ExpiresAt == nil {
		t.Fatal("expected persistent session to carry an expiry")
	}

	got, ok, err := store.ValidateSession(session.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh persistent session to validate")
	}
	if got.Identity != "user@example.com" {
		t.Errorf("expected identity to round-trip, got %q", got.Identity)
	}
}

func TestSessionNonPersistentHasNoExpiry(t *testing.T) {
	store := setupTestStore(t)

	session, err := store.CreateSession("user@example.com", false, false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ExpiresAt != nil {
		t.Error("expected non-persistent session to have no expiry")
	}

	_, ok, err := store.ValidateSession(session.Token)
	if err != nil || !ok {
		t.Fatalf("expected session to validate, ok=%v err=%v", ok, err)
	}
}

func TestSessionExpiryRemovesRow(t *testing.T) {
	store := setupTestStore(t)

	session, err := store.CreateSession("user@example.com", false, false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Back-date the expiry to simulate an expired session
	db, err := store.Handle()
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	if _, err := db.Exec("UPDATE sessions SET expires_at = ? WHERE token = ?", past, session.Token); err != nil {
		t.Fatalf("failed to back-date session: %v", err)
	}

	_, ok, err := store.ValidateSession(session.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if ok {
		t.Fatal("expected expired session to be invalid")
	}

	// The expired row was deleted on detection
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sessions WHERE token = ?", session.Token).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Error("expected expired session row to be removed")
	}
}

func TestSessionUnknownTokenInvalid(t *testing.T) {
	store := setupTestStore(t)

	_, ok, err := store.ValidateSession("no-such-token")
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if ok {
		t.Error("expected unknown token to be invalid")
	}
}

func TestSessionAdminFlag(t *testing.T) {
	store := setupTestStore(t)

	session, err := store.CreateSession("admin@example.com", false, true)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, ok, err := store.ValidateSession(session.Token)
	if err != nil || !ok {
		t.Fatalf("expected session to validate, ok=%v err=%v", ok, err)
	}
	if !got.Admin {
		t.Error("expected admin flag to round-trip")
	}
}

func TestClearSessions(t *testing.T) {
	store := setupTestStore(t)

	a, err := store.CreateSession("user@example.com", false, false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	b, err := store.CreateSession("user@example.com", true, false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := store.ClearSession(a.Token); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if _, ok, _ := store.ValidateSession(a.Token); ok {
		t.Error("expected cleared session to be invalid")
	}
	if _, ok, _ := store.ValidateSession(b.Token); !ok {
		t.Error("expected other session to survive")
	}

	if err := store.ClearSessionsForIdentity("user@example.com"); err != nil {
		t.Fatalf("ClearSessionsForIdentity failed: %v", err)
	}
	if _, ok, _ := store.ValidateSession(b.Token); ok {
		t.Error("expected all sessions for identity to be cleared")
	}

	// Clearing an unknown token is not an error
	if err := store.ClearSession("no-such-token"); err != nil {
		t.Errorf("ClearSession on unknown token failed: %v", err)
	}
}
