package engine

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/internal/ingest"
	"github.com/gcbaptista/card-catalog/model"
)

// ImportCardsAsync upserts cards in a background job and returns its ID.
// The job result is the import report.
func (e *Engine) ImportCardsAsync(cards []model.Card) (string, error) {
	if len(cards) == 0 {
		return "", internalErrors.NewValidationError("cards", "at least one card is required")
	}

	jobID := e.jobManager.CreateJob(model.JobTypeImportCards, catalogTarget, map[string]string{
		"operation":  "import_cards",
		"card_count": strconv.Itoa(len(cards)),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		e.jobManager.UpdateJobProgress(id, 0, len(cards), "Starting import")
		report, err := e.Import(ctx, cards, e.progressFor(id, "Importing cards"))
		if err != nil {
			return report, err
		}
		e.jobManager.UpdateJobProgress(id, report.Total, report.Total, importSummary(report.Upserted, len(report.Failed)))
		return report, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start import job: %w", err)
	}
	return jobID, nil
}

// SyncAsync runs a catalog sync in a background job and returns its ID. While
// a sync job is pending or running, its ID is returned instead of starting
// another one.
func (e *Engine) SyncAsync(force bool) (string, error) {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	if e.activeSync != "" {
		if job, err := e.jobManager.GetJob(e.activeSync); err == nil && !job.Status.IsTerminal() {
			e.logger.Info("sync already in progress", zap.String("job_id", e.activeSync))
			return e.activeSync, nil
		}
	}

	jobID := e.jobManager.CreateJob(model.JobTypeSyncCatalog, catalogTarget, map[string]string{
		"operation": "sync_catalog",
		"force":     strconv.FormatBool(force),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		e.jobManager.UpdateJobProgress(id, 0, 0, "Checking catalog version")
		report, err := e.Sync(ctx, force, e.progressFor(id, "Importing feed"))
		if err != nil {
			return report, err
		}
		switch {
		case report.Import == nil:
			e.jobManager.UpdateJobProgress(id, 0, 0, "Catalog is up to date")
		default:
			e.jobManager.UpdateJobProgress(id, report.Import.Total, report.Import.Total,
				importSummary(report.Import.Upserted, len(report.Import.Failed)))
		}
		return report, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start sync job: %w", err)
	}
	e.activeSync = jobID
	return jobID, nil
}

// SnapshotAsync writes a catalog snapshot in a background job and returns its ID.
func (e *Engine) SnapshotAsync() (string, error) {
	if e.settings.Storage.SnapshotPath == "" {
		return "", internalErrors.NewValidationError("storage.snapshot_path", "is not configured")
	}

	jobID := e.jobManager.CreateJob(model.JobTypeSnapshot, catalogTarget, map[string]string{
		"operation": "snapshot",
		"path":      e.settings.Storage.SnapshotPath,
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		path, err := e.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]string{"path": path}, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start snapshot job: %w", err)
	}
	return jobID, nil
}

// progressFor reports import progress on a job.
func (e *Engine) progressFor(jobID, message string) ingest.ProgressFunc {
	return func(done, total int) {
		e.jobManager.UpdateJobProgress(jobID, done, total, message)
	}
}

func importSummary(upserted, failed int) string {
	if failed == 0 {
		return fmt.Sprintf("Imported %d cards", upserted)
	}
	return fmt.Sprintf("Imported %d cards, %d failed", upserted, failed)
}

// GetJob returns the job with the given ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs lists jobs for target, newest first.
func (e *Engine) ListJobs(target string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(target, status)
}

// CancelJob asks a pending or running job to stop.
func (e *Engine) CancelJob(jobID string) error {
	return e.jobManager.CancelJob(jobID)
}

// JobStats returns the job statistics.
func (e *Engine) JobStats() model.JobStats {
	return e.jobManager.Stats()
}
