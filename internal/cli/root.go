package cli

import (
	"github.com/nhoffmann/punchout/internal/storage"
	"github.com/nhoffmann/punchout/internal/submit"
)

// Context carries the shared dependencies into every command.
type Context struct {
	Store *storage.Store
	// Submitter is the external timesheet submission service. Nil when the
	// build ships without one configured.
	Submitter submit.Service
	Debug     bool
}
