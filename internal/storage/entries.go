package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nhoffmann/punchout/internal/logger"
	"github.com/nhoffmann/punchout/internal/models"
	"github.com/nhoffmann/punchout/internal/validation"
)

const entryColumns = "id, date, start_min, end_min, hours, project, task, tool, charge_code, status, submitted_at, created_at"

// Insert validates and stores a single entry. A natural-key conflict
// (same date, start, project, task) is not an error: the insert no-ops and
// the result reports Duplicate. Hours are derived by the store; the caller
// value is ignored.
func (s *Store) Insert(e models.Entry) (models.InsertResult, error) {
	if err := validation.ValidateEntry(e); err != nil {
		return models.InsertResult{}, err
	}

	db, err := s.Handle()
	if err != nil {
		return models.InsertResult{}, err
	}

	res, err := db.Exec(`
		INSERT INTO timesheet (date, start_min, end_min, hours, project, task, tool, charge_code, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
		ON CONFLICT(date, start_min, project, task) DO NOTHING`,
		e.Date, e.StartMin, e.EndMin, e.DerivedHours(), e.Project, e.Task,
		nullable(e.Tool), nullable(e.ChargeCode), now(),
	)
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if changes == 0 {
		return models.InsertResult{Success: false, Duplicate: true}, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.InsertResult{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return models.InsertResult{Success: true, ID: id, Changes: changes}, nil
}

// InsertBatch stores entries in one transaction, deduplicating per entry.
// Every entry is validated before anything is written; one malformed entry
// rejects the whole batch rather than committing partial counts.
func (s *Store) InsertBatch(entries []models.Entry) (models.BatchResult, error) {
	result := models.BatchResult{Total: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	for i, e := range entries {
		if err := validation.ValidateEntry(e); err != nil {
			return models.BatchResult{Total: len(entries)}, fmt.Errorf("entry %d rejected: %w", i, err)
		}
	}

	db, err := s.Handle()
	if err != nil {
		return result, err
	}

	tx, err := db.Begin()
	if err != nil {
		return result, fmt.Errorf("failed to begin batch insert: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO timesheet (date, start_min, end_min, hours, project, task, tool, charge_code, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
		ON CONFLICT(date, start_min, project, task) DO NOTHING`)
	if err != nil {
		_ = tx.Rollback()
		return result, fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	createdAt := now()
	for _, e := range entries {
		res, err := stmt.Exec(e.Date, e.StartMin, e.EndMin, e.DerivedHours(), e.Project, e.Task,
			nullable(e.Tool), nullable(e.ChargeCode), createdAt)
		if err != nil {
			_ = tx.Rollback()
			return models.BatchResult{Total: len(entries)}, fmt.Errorf("batch insert failed: %w", err)
		}
		changes, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return models.BatchResult{Total: len(entries)}, fmt.Errorf("batch insert failed: %w", err)
		}
		if changes == 0 {
			result.Duplicates++
		} else {
			result.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return models.BatchResult{Total: len(entries)}, fmt.Errorf("failed to commit batch insert: %w", err)
	}
	return result, nil
}

// GetPending returns all entries awaiting submission, ordered by date then
// start time. The ordering is stable so the UI and the submission
// orchestrator see the same sequence.
func (s *Store) GetPending() ([]models.Entry, error) {
	db, err := s.Handle()
	if err != nil {
		return nil, err
	}
	return queryEntries(db, `
		SELECT `+entryColumns+` FROM timesheet
		WHERE status IS NULL
		ORDER BY date, start_min`)
}

// GetByIDs returns the entries with the given ids, in date/start order.
func (s *Store) GetByIDs(ids []int64) ([]models.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db, err := s.Handle()
	if err != nil {
		return nil, err
	}
	query := `
		SELECT ` + entryColumns + ` FROM timesheet
		WHERE id IN (` + placeholders(len(ids)) + `)
		ORDER BY date, start_min`
	return queryEntries(db, query, idArgs(ids)...)
}

// GetForExport returns all complete entries ordered for reporting.
func (s *Store) GetForExport() ([]models.Entry, error) {
	db, err := s.Handle()
	if err != nil {
		return nil, err
	}
	return queryEntries(db, `
		SELECT `+entryColumns+` FROM timesheet
		WHERE status = ?
		ORDER BY date, start_min`, string(models.StatusComplete))
}

// MarkInProgress claims pending entries for a submission attempt so they
// are not treated as orphans while the external call runs. Entries already
// in another state are skipped; a count short-read is logged as a sign of
// concurrent interference but is not fatal. Returns the number of entries
// actually claimed.
func (s *Store) MarkInProgress(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db, err := s.Handle()
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(`
		UPDATE timesheet SET status = ?
		WHERE id IN (`+placeholders(len(ids))+`) AND status IS NULL`,
		append([]interface{}{string(models.StatusInProgress)}, idArgs(ids)...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark entries in progress: %w", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if changes != int64(len(ids)) {
		logger.Warn("claimed fewer entries than requested", "requested", len(ids), "claimed", changes)
	}
	return changes, nil
}

// MarkSubmitted transitions entries to complete and stamps submitted_at.
// The caller has already told the external service these entries are done,
// so local state must match exactly: the update runs in a transaction that
// requires rows-affected to equal len(ids) and rolls back on any mismatch.
// Re-marking an already complete entry therefore fails loudly instead of
// silently no-opping.
func (s *Store) MarkSubmitted(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := s.Handle()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin mark-submitted: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE timesheet SET status = ?, submitted_at = ?
		WHERE id IN (`+placeholders(len(ids))+`) AND (status IS NULL OR status = ?)`,
		append([]interface{}{string(models.StatusComplete), now()},
			append(idArgs(ids), string(models.StatusInProgress))...)...)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to mark entries submitted: %w", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if changes != int64(len(ids)) {
		_ = tx.Rollback()
		return &MismatchError{Op: "mark submitted", Expected: int64(len(ids)), Affected: changes}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mark-submitted: %w", err)
	}

	// Flush the WAL into the main file so the completion survives anything
	// short of disk loss. The data is durable in the WAL either way, so a
	// checkpoint failure is logged rather than failing the operation.
	if _, err := db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		logger.Warn("wal checkpoint failed after mark-submitted", "error", err)
	}
	return nil
}

// RevertFailed returns claimed entries to pending after a failed or
// cancelled submission attempt. Entries are never deleted on failure.
// Still-pending ids match too (setting status to NULL again is a no-op),
// so a caller reverting ids it claimed but that were already healed back
// to pending still satisfies the strict count. The same all-or-nothing
// count rule as MarkSubmitted applies; complete entries cannot be
// reverted.
func (s *Store) RevertFailed(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := s.Handle()
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin revert: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE timesheet SET status = NULL, submitted_at = NULL
		WHERE id IN (`+placeholders(len(ids))+`) AND (status IS NULL OR status = ?)`,
		append(idArgs(ids), string(models.StatusInProgress))...)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to revert entries: %w", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if changes != int64(len(ids)) {
		_ = tx.Rollback()
		return &MismatchError{Op: "revert failed", Expected: int64(len(ids)), Affected: changes}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit revert: %w", err)
	}
	return nil
}

// ResetAllInProgress reverts every in-progress entry back to pending.
// In-progress is never a terminal state, so finding any at startup means a
// prior run was interrupted mid-submission. Idempotent.
func (s *Store) ResetAllInProgress() (int64, error) {
	db, err := s.Handle()
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(`UPDATE timesheet SET status = NULL WHERE status = ?`,
		string(models.StatusInProgress))
	if err != nil {
		return 0, fmt.Errorf("failed to reset in-progress entries: %w", err)
	}

	changes, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if changes > 0 {
		logger.Info("recovered entries left in progress by a previous run", "count", changes)
	}
	return changes, nil
}

// DeletePending removes a draft entry. Only pending entries may be
// deleted; anything claimed or submitted stays.
func (s *Store) DeletePending(id int64) error {
	db, err := s.Handle()
	if err != nil {
		return err
	}

	var status sql.NullString
	err = db.QueryRow("SELECT status FROM timesheet WHERE id = ?", id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("entry %d not found", id)
		}
		return fmt.Errorf("failed to check entry status: %w", err)
	}
	if status.Valid {
		return fmt.Errorf("entry %d is %s and cannot be deleted", id, status.String)
	}

	_, err = db.Exec("DELETE FROM timesheet WHERE id = ? AND status IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return nil
}

func queryEntries(db *sql.DB, query string, args ...interface{}) ([]models.Entry, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		var tool, chargeCode, status, submittedAt sql.NullString

		if err := rows.Scan(
			&e.ID, &e.Date, &e.StartMin, &e.EndMin, &e.Hours, &e.Project, &e.Task,
			&tool, &chargeCode, &status, &submittedAt, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		e.Tool = tool.String
		e.ChargeCode = chargeCode.String
		if status.Valid {
			e.Status = models.Status(status.String)
		}
		if submittedAt.Valid {
			e.SubmittedAt = &submittedAt.String
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func idArgs(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
