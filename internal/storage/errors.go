package storage

import "fmt"

// ConnectionError indicates the database engine or file could not be
// opened. It carries the attempted path so callers can report it.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot open database at %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// MismatchError indicates a batch status transition affected a different
// number of rows than requested. The enclosing transaction is rolled back;
// partial success is never committed.
type MismatchError struct {
	Op       string
	Expected int64
	Affected int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: expected to update %d rows, updated %d - transaction rolled back", e.Op, e.Expected, e.Affected)
}
