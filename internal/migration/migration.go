// Package migration applies versioned, forward-only schema migrations from
// an fs.FS of NNN_name.sql files. The applied version is tracked in the
// single-row schema_info table. Each step executes inside one transaction
// that also bumps the version, so a crash can never leave the recorded
// version behind the applied DDL.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nhoffmann/punchout/internal/backup"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Result summarizes one migration run.
type Result struct {
	Applied     int
	FromVersion int
	ToVersion   int
	// BackupPath is the file copy taken before the first applied step, or
	// empty when nothing was applied or nothing existed to back up.
	BackupPath string
}

// Runner manages database schema migrations
type Runner struct {
	db      *sql.DB
	fs      fs.FS
	backups *backup.Manager
}

// NewRunner creates a migration runner. The backup manager may be nil when
// pre-migration backups are not wanted (tests).
func NewRunner(db *sql.DB, migrationFS fs.FS, backups *backup.Manager) *Runner {
	return &Runner{
		db:      db,
		fs:      migrationFS,
		backups: backups,
	}
}

// EnsureVersionTable creates the schema_info table if it doesn't exist
func (r *Runner) EnsureVersionTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_info (
			version INTEGER PRIMARY KEY
		)
	`)
	return err
}

// CurrentVersion returns the applied schema version, or 0 for a fresh
// database with no marker row.
func (r *Runner) CurrentVersion() (int, error) {
	if err := r.EnsureVersionTable(); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_info table: %w", err)
	}

	var version int
	err := r.db.QueryRow("SELECT version FROM schema_info").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// ReadMigrationFiles reads and parses migration files, sorted by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	files, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		// Parse version from filename (e.g., "001_init.sql" -> 1)
		parts := strings.SplitN(file.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", file.Name())
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in filename %s: %w", file.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s: version must be at least 1", file.Name())
		}

		content, err := fs.ReadFile(r.fs, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

// LatestVersion returns the highest migration version available.
func (r *Runner) LatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}

	if len(migrations) == 0 {
		return 0, nil
	}

	return migrations[len(migrations)-1].Version, nil
}

// Apply runs all pending migrations up to the latest version. Any failing
// step aborts the whole run with no partial version bump; the caller must
// treat that as fatal, the schema cannot be trusted afterwards.
func (r *Runner) Apply(logFn func(string)) (Result, error) {
	if logFn == nil {
		logFn = func(s string) {}
	}

	currentVersion, err := r.CurrentVersion()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get current version: %w", err)
	}

	result := Result{FromVersion: currentVersion, ToVersion: currentVersion}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return result, fmt.Errorf("failed to read migrations: %w", err)
	}

	if len(migrations) == 0 {
		logFn("No migration files found")
		return result, nil
	}

	latestVersion := migrations[len(migrations)-1].Version

	if currentVersion > latestVersion {
		return result, fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", currentVersion, latestVersion)
	}

	var pending []Migration
	for _, m := range migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", currentVersion))
		return result, nil
	}

	logFn(fmt.Sprintf("Current schema version: %d", currentVersion))
	logFn(fmt.Sprintf("Target schema version: %d", latestVersion))

	for _, m := range pending {
		if r.backups != nil {
			backupPath, err := r.backups.Create()
			if err != nil {
				return result, fmt.Errorf("failed to back up database before migration %d: %w", m.Version, err)
			}
			if backupPath != "" && result.BackupPath == "" {
				result.BackupPath = backupPath
			}
		}

		logFn(fmt.Sprintf("  Applying migration %d: %s", m.Version, m.Name))

		if err := r.applyStep(m); err != nil {
			return result, err
		}

		result.Applied++
		result.ToVersion = m.Version
	}

	logFn(fmt.Sprintf("Applied %d migration(s)", result.Applied))

	return result, nil
}

// applyStep executes one migration and the version bump in a single
// transaction.
func (r *Runner) applyStep(m Migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}

	if _, err := tx.Exec("DELETE FROM schema_info"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear version in migration %d: %w", m.Version, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_info (version) VALUES (?)", m.Version); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to set version in migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}

	return nil
}

// ValidateVersion checks that the database version does not exceed what
// this build of the application supports.
func (r *Runner) ValidateVersion() error {
	currentVersion, err := r.CurrentVersion()
	if err != nil {
		return err
	}

	latestVersion, err := r.LatestVersion()
	if err != nil {
		return err
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d) - please upgrade the application", currentVersion, latestVersion)
	}

	return nil
}
