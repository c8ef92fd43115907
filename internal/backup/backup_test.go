package backup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateSkipsMissingSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")
	manager := NewManager(dbPath)

	path, err := manager.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path when nothing exists to back up, got %q", path)
	}
}

func TestCreateAndList(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "punchout.db")
	if err := os.WriteFile(dbPath, []byte("database contents"), 0600); err != nil {
		t.Fatalf("failed to write test database: %v", err)
	}

	manager := NewManager(dbPath)
	path, err := manager.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected a backup path")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(content) != "database contents" {
		t.Errorf("backup content mismatch: %q", content)
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup, got %d", len(backups))
	}
	if backups[0].Path != path {
		t.Errorf("expected listed path %q, got %q", path, backups[0].Path)
	}
	if backups[0].Size == 0 {
		t.Error("expected nonzero backup size")
	}
}

func TestCreateGeneratesUniqueNames(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "punchout.db")
	if err := os.WriteFile(dbPath, []byte("contents"), 0600); err != nil {
		t.Fatalf("failed to write test database: %v", err)
	}

	manager := NewManager(dbPath)
	first, err := manager.Create()
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := manager.Create()
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first == second {
		t.Error("expected distinct backup filenames for back-to-back backups")
	}

	backups, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups, got %d", len(backups))
	}
}
