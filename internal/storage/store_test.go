package storage

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Setenv(constants.EnvMasterKey, "test-master-key")

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := New(dbPath)
	if _, err := store.Handle(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testEntry(date string, startMin, endMin int, project, task string) models.Entry {
	return models.Entry{
		Date:     date,
		StartMin: startMin,
		EndMin:   endMin,
		Project:  project,
		Task:     task,
	}
}

func mustInsert(t *testing.T, store *Store, e models.Entry) int64 {
	t.Helper()
	result, err := store.Insert(e)
	if err != nil {
		t.Fatalf("failed to insert entry: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected insert to succeed, got %+v", result)
	}
	return result.ID
}

func TestConcurrentInitialization(t *testing.T) {
	t.Setenv(constants.EnvMasterKey, "test-master-key")

	dbPath := filepath.Join(t.TempDir(), "race.db")
	store := New(dbPath)
	defer store.Close()

	// All first callers must serialize through a single init critical
	// section so schema setup runs exactly once
	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Handle()
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent Handle %d failed: %v", i, err)
		}
	}

	db, err := store.Handle()
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var version int
	if err := db.QueryRow("SELECT version FROM schema_info").Scan(&version); err != nil {
		t.Fatalf("schema_info unreadable: %v", err)
	}
	if version < 1 {
		t.Errorf("expected migrated schema, version %d", version)
	}
}

func TestSetPathRebootstraps(t *testing.T) {
	store := setupTestStore(t)
	mustInsert(t, store, testEntry("2026-08-24", 540, 600, "ACME", "first db"))

	otherPath := filepath.Join(t.TempDir(), "other.db")
	if err := store.SetPath(otherPath); err != nil {
		t.Fatalf("SetPath failed: %v", err)
	}

	// The new file starts empty and gets its own schema
	pending, err := store.GetPending()
	if err != nil {
		t.Fatalf("GetPending after SetPath failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty database after SetPath, got %d entries", len(pending))
	}
	if store.Path() != otherPath {
		t.Errorf("expected path %s, got %s", otherPath, store.Path())
	}
}

func TestCloseIdempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	// The store reopens transparently on next use
	if _, err := store.GetPending(); err != nil {
		t.Fatalf("operation after Close failed: %v", err)
	}
}

func TestConnectionErrorCarriesPath(t *testing.T) {
	// A directory is not a valid database file
	dir := t.TempDir()
	store := New(dir)
	defer store.Close()

	_, err := store.Handle()
	if err == nil {
		t.Fatal("expected error opening a directory as database")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T: %v", err, err)
	}
	if connErr.Path != dir {
		t.Errorf("expected path %s in error, got %s", dir, connErr.Path)
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	t.Setenv(constants.EnvMasterKey, "test-master-key")

	dbPath := filepath.Join(t.TempDir(), "durable.db")
	store := New(dbPath)

	id := mustInsert(t, store, testEntry("2026-08-24", 540, 1020, "ACME", "durable work"))
	if err := store.MarkSubmitted([]int64{id}); err != nil {
		t.Fatalf("MarkSubmitted failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := New(dbPath)
	defer reopened.Close()

	complete, err := reopened.GetForExport()
	if err != nil {
		t.Fatalf("GetForExport after reopen failed: %v", err)
	}
	if len(complete) != 1 {
		t.Fatalf("expected 1 complete entry after reopen, got %d", len(complete))
	}
	if complete[0].Status != models.StatusComplete {
		t.Errorf("expected status complete, got %q", complete[0].Status)
	}
	if complete[0].SubmittedAt == nil {
		t.Error("expected submitted_at to survive reopen")
	}
}
