package models

import "fmt"

// Status is the submission lifecycle state of a timesheet entry.
// The zero value means pending (stored as NULL).
type Status string

const (
	StatusPending    Status = ""
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// Entry is one unit of billable time. The (Date, StartMin, Project, Task)
// tuple is the natural key used for deduplication; ID is the surrogate key
// assigned on insert.
type Entry struct {
	ID          int64
	Date        string // YYYY-MM-DD
	StartMin    int    // minutes since midnight
	EndMin      int    // minutes since midnight
	Hours       float64
	Project     string
	Task        string
	Tool        string
	ChargeCode  string
	Status      Status
	SubmittedAt *string // RFC3339, set only when status is complete
	CreatedAt   string
}

// DerivedHours computes the stored duration from the start/end minutes.
func (e Entry) DerivedHours() float64 {
	return float64(e.EndMin-e.StartMin) / 60.0
}

// StartClock returns the start time as HH:MM for display.
func (e Entry) StartClock() string {
	return fmt.Sprintf("%02d:%02d", e.StartMin/60, e.StartMin%60)
}

// EndClock returns the end time as HH:MM for display.
func (e Entry) EndClock() string {
	return fmt.Sprintf("%02d:%02d", e.EndMin/60, e.EndMin%60)
}

// InsertResult reports the outcome of a single-entry insert. A natural-key
// conflict is not an error; it is reported here as Duplicate.
type InsertResult struct {
	Success   bool
	Duplicate bool
	ID        int64
	Changes   int64
}

// BatchResult aggregates the outcome of a batch insert. There is no error
// count: a malformed entry rejects the whole batch through the error return,
// so a returned BatchResult only ever describes inserted and duplicate rows.
type BatchResult struct {
	Total      int
	Inserted   int
	Duplicates int
}
