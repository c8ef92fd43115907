// Package submit drives the submission handoff: claim pending entries,
// hand them to the external timesheet service, and reconcile local status
// with whatever the service reports. The service itself (browser
// automation) lives outside this codebase.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhoffmann/punchout/internal/logger"
	"github.com/nhoffmann/punchout/internal/models"
	"github.com/nhoffmann/punchout/internal/storage"
)

// ProgressFunc reports submission progress to the caller.
type ProgressFunc func(done, total int, message string)

// Result is what the external service reports for one submission attempt.
// SubmittedIDs feed MarkSubmitted; RemovedIDs feed RevertFailed.
type Result struct {
	OK             bool
	SubmittedIDs   []int64
	RemovedIDs     []int64
	TotalProcessed int
	SuccessCount   int
	RemovedCount   int
	Err            string
}

// Service is the external timesheet submission mechanism.
type Service interface {
	Submit(ctx context.Context, entries []models.Entry, cred models.Credential, progress ProgressFunc) (Result, error)
}

// Summary is the user-facing outcome of one orchestrator run.
type Summary struct {
	RunID     string
	Claimed   int
	Submitted int
	Reverted  int
	OK        bool
}

// ErrNoCredential is returned when no credential is stored for the target
// service.
var ErrNoCredential = errors.New("no credential stored for submission service")

// Orchestrator owns the mark-in-progress / external-call /
// mark-complete-or-revert protocol around the entry store.
type Orchestrator struct {
	store       *storage.Store
	service     Service
	serviceName string
}

// New creates an orchestrator submitting through the given service, using
// the credential stored under serviceName.
func New(store *storage.Store, service Service, serviceName string) *Orchestrator {
	return &Orchestrator{
		store:       store,
		service:     service,
		serviceName: serviceName,
	}
}

// Run submits all pending entries. The one contract that matters most:
// success is never reported while local state disagrees with what the
// external service was told. If marking entries complete fails after the
// service accepted them, those entries are reverted to pending for retry
// and the run reports failure.
func (o *Orchestrator) Run(ctx context.Context, progress ProgressFunc) (Summary, error) {
	summary := Summary{RunID: uuid.New().String()}

	// Heal anything a crashed prior run left claimed
	if _, err := o.store.ResetAllInProgress(); err != nil {
		return summary, err
	}

	pending, err := o.store.GetPending()
	if err != nil {
		return summary, err
	}
	if len(pending) == 0 {
		summary.OK = true
		return summary, nil
	}

	cred, ok, err := o.store.GetCredential(o.serviceName)
	if err != nil {
		return summary, err
	}
	if !ok {
		return summary, fmt.Errorf("%w: %s", ErrNoCredential, o.serviceName)
	}

	ids := make([]int64, len(pending))
	for i, e := range pending {
		ids[i] = e.ID
	}

	claimed, err := o.store.MarkInProgress(ids)
	if err != nil {
		return summary, err
	}
	summary.Claimed = int(claimed)
	logger.Info("submission started", "run", summary.RunID, "entries", len(ids), "claimed", claimed)

	result, err := o.service.Submit(ctx, pending, cred, progress)
	if err != nil || ctx.Err() != nil {
		// The external attempt failed or was aborted; release every claim
		if revertErr := o.store.RevertFailed(ids); revertErr != nil {
			logger.Error("failed to revert claimed entries", "run", summary.RunID, "error", revertErr)
			return summary, revertErr
		}
		summary.Reverted = len(ids)
		if err == nil {
			err = ctx.Err()
		}
		logger.Warn("submission failed, entries reverted to pending", "run", summary.RunID, "error", err)
		return summary, fmt.Errorf("submission failed: %w", err)
	}

	return o.reconcile(summary, ids, result)
}

// reconcile applies the service's verdict to local state. Claimed entries
// the service did not mention are reverted so nothing is ever stranded
// in progress.
func (o *Orchestrator) reconcile(summary Summary, claimed []int64, result Result) (Summary, error) {
	mentioned := make(map[int64]bool, len(result.SubmittedIDs)+len(result.RemovedIDs))

	if len(result.SubmittedIDs) > 0 {
		if err := o.store.MarkSubmitted(result.SubmittedIDs); err != nil {
			// The service accepted these entries but we could not record it.
			// Revert them so they are retried rather than lost, and report
			// the run as failed even though the external side succeeded.
			logger.Error("failed to record submitted entries, reverting", "run", summary.RunID, "error", err)
			if revertErr := o.store.RevertFailed(result.SubmittedIDs); revertErr != nil {
				logger.Error("failed to revert after mark-submitted failure", "run", summary.RunID, "error", revertErr)
			}
			_, _ = o.revertRemainder(claimed, mentioned, summary.RunID)
			return summary, fmt.Errorf("submission succeeded externally but local state could not be updated: %w", err)
		}
		summary.Submitted = len(result.SubmittedIDs)
		for _, id := range result.SubmittedIDs {
			mentioned[id] = true
		}
	}

	if len(result.RemovedIDs) > 0 {
		if err := o.store.RevertFailed(result.RemovedIDs); err != nil {
			return summary, err
		}
		summary.Reverted += len(result.RemovedIDs)
		for _, id := range result.RemovedIDs {
			mentioned[id] = true
		}
	}

	reverted, err := o.revertRemainder(claimed, mentioned, summary.RunID)
	if err != nil {
		return summary, err
	}
	summary.Reverted += reverted

	summary.OK = result.OK
	logger.Info("submission finished", "run", summary.RunID,
		"submitted", summary.Submitted, "reverted", summary.Reverted, "ok", summary.OK)
	if !result.OK && result.Err != "" {
		return summary, fmt.Errorf("submission service reported failure: %s", result.Err)
	}
	return summary, nil
}

func (o *Orchestrator) revertRemainder(claimed []int64, mentioned map[int64]bool, runID string) (int, error) {
	var leftover []int64
	for _, id := range claimed {
		if !mentioned[id] {
			leftover = append(leftover, id)
		}
	}
	if len(leftover) == 0 {
		return 0, nil
	}
	logger.Warn("service did not account for all claimed entries, reverting remainder",
		"run", runID, "count", len(leftover))
	if err := o.store.RevertFailed(leftover); err != nil {
		return 0, err
	}
	return len(leftover), nil
}
