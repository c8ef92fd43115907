package validation

import (
	"fmt"
	"time"

	"github.com/nhoffmann/punchout/internal/constants"
	"github.com/nhoffmann/punchout/internal/models"
)

// ValidationError reports a rejected entry field. Invariant violations
// reject the write outright; nothing is coerced.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidateEntry checks the timesheet entry invariants: a parseable date,
// required project/task, start in [0,1439], end in [1,1400], end after
// start, and quarter-hour granularity on both.
func ValidateEntry(e models.Entry) error {
	if _, err := time.Parse(constants.DateFormat, e.Date); err != nil {
		return &ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a valid YYYY-MM-DD date", e.Date)}
	}
	if e.Project == "" {
		return &ValidationError{Field: "project", Message: "project is required"}
	}
	if e.Task == "" {
		return &ValidationError{Field: "task", Message: "task description is required"}
	}
	if e.StartMin < constants.MinStartMinute || e.StartMin > constants.MaxStartMinute {
		return &ValidationError{Field: "start", Message: fmt.Sprintf("start minute %d out of range [%d,%d]", e.StartMin, constants.MinStartMinute, constants.MaxStartMinute)}
	}
	if e.EndMin < constants.MinEndMinute || e.EndMin > constants.MaxEndMinute {
		return &ValidationError{Field: "end", Message: fmt.Sprintf("end minute %d out of range [%d,%d]", e.EndMin, constants.MinEndMinute, constants.MaxEndMinute)}
	}
	if e.EndMin <= e.StartMin {
		return &ValidationError{Field: "end", Message: fmt.Sprintf("end minute %d must be after start minute %d", e.EndMin, e.StartMin)}
	}
	if e.StartMin%constants.SlotMinutes != 0 {
		return &ValidationError{Field: "start", Message: fmt.Sprintf("start minute %d is not on a %d-minute boundary", e.StartMin, constants.SlotMinutes)}
	}
	if e.EndMin%constants.SlotMinutes != 0 {
		return &ValidationError{Field: "end", Message: fmt.Sprintf("end minute %d is not on a %d-minute boundary", e.EndMin, constants.SlotMinutes)}
	}
	return nil
}

// ParseClock converts an HH:MM string to minutes since midnight.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse(constants.ClockFormat, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}
