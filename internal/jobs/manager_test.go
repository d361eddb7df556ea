package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/model"
)

func newTestManager(workers int) *Manager {
	return NewManager(workers, time.Hour, zap.NewNop())
}

// waitForStatus polls until the job reaches status or the deadline passes.
func waitForStatus(t *testing.T, m *Manager, jobID string, status model.JobStatus) *model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		job, err := m.GetJob(jobID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if job.Status == status {
			return job
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected job status %s, still %s", status, job.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := newTestManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeImportCards, "cards", map[string]string{
		"records": "3",
	})
	if jobID == "" {
		t.Fatal("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}
	if job.Type != model.JobTypeImportCards {
		t.Errorf("Expected job type %s, got %s", model.JobTypeImportCards, job.Type)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}
	if job.Target != "cards" {
		t.Errorf("Expected target 'cards', got %s", job.Target)
	}
	if job.Metadata["records"] != "3" {
		t.Errorf("Expected metadata records=3, got %v", job.Metadata)
	}
}

func TestJobManager_GetJobReturnsCopy(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeSyncCatalog, "cards", map[string]string{"force": "false"})
	manager.UpdateJobProgress(jobID, 1, 2, "half")

	job, _ := manager.GetJob(jobID)
	job.Status = model.JobStatusFailed
	job.Progress.Current = 99
	job.Metadata["force"] = "true"

	again, _ := manager.GetJob(jobID)
	if again.Status != model.JobStatusPending {
		t.Errorf("Expected stored status to be unchanged, got %s", again.Status)
	}
	if again.Progress.Current != 1 {
		t.Errorf("Expected stored progress to be unchanged, got %d", again.Progress.Current)
	}
	if again.Metadata["force"] != "false" {
		t.Errorf("Expected stored metadata to be unchanged, got %v", again.Metadata)
	}
}

func TestJobManager_GetJobNotFound(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	_, err := manager.GetJob("missing")
	if !errors.Is(err, internalErrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := newTestManager(2)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeImportCards, "cards", nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		manager.UpdateJobProgress(id, 50, 100, "Halfway done")
		manager.UpdateJobProgress(id, 100, 100, "Completed")
		return map[string]int{"upserted": 100}, nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitForStatus(t, manager, jobID, model.JobStatusCompleted)
	if job.Progress == nil {
		t.Fatal("Expected job progress to be set")
	}
	if job.Progress.Current != 100 || job.Progress.Total != 100 {
		t.Errorf("Expected progress 100/100, got %d/%d", job.Progress.Current, job.Progress.Total)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}
	result, ok := job.Result.(map[string]int)
	if !ok || result["upserted"] != 100 {
		t.Errorf("Expected job result to be stored, got %#v", job.Result)
	}
}

func TestJobManager_ExecuteJobFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	manager := NewManager(1, time.Hour, zap.New(core))
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeSyncCatalog, "cards", nil)
	_ = manager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		return nil, errors.New("feed unavailable")
	})

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	if job.Error != "feed unavailable" {
		t.Errorf("Expected error message 'feed unavailable', got %q", job.Error)
	}
	if logs.FilterMessage("job failed").Len() != 1 {
		t.Errorf("Expected one 'job failed' log entry, got %d", logs.FilterMessage("job failed").Len())
	}
}

func TestJobManager_ExecuteJobPanic(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeSnapshot, "cards", nil)
	_ = manager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		panic("boom")
	})

	job := waitForStatus(t, manager, jobID, model.JobStatusFailed)
	if job.Error != "job panicked: boom" {
		t.Errorf("Expected panic to be reported, got %q", job.Error)
	}
}

func TestJobManager_ExecuteJobTwice(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	release := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	fn := func(ctx context.Context, id string) (any, error) {
		<-release
		return nil, nil
	}
	if err := manager.ExecuteJob(jobID, fn); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}
	if err := manager.ExecuteJob(jobID, fn); err == nil {
		t.Error("Expected second execution of the same job to fail")
	}
	close(release)
	waitForStatus(t, manager, jobID, model.JobStatusCompleted)

	if err := manager.ExecuteJob("missing", fn); !errors.Is(err, internalErrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestJobManager_WorkerLimit(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	release := make(chan struct{})
	first := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	second := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	block := func(ctx context.Context, id string) (any, error) {
		<-release
		return nil, nil
	}

	_ = manager.ExecuteJob(first, block)
	waitForStatus(t, manager, first, model.JobStatusRunning)
	_ = manager.ExecuteJob(second, block)

	time.Sleep(20 * time.Millisecond)
	job, _ := manager.GetJob(second)
	if job.Status != model.JobStatusPending {
		t.Errorf("Expected second job to wait for a worker, got %s", job.Status)
	}
	if got := manager.Stats().Workload; got != 2 {
		t.Errorf("Expected workload 2, got %d", got)
	}

	close(release)
	waitForStatus(t, manager, first, model.JobStatusCompleted)
	waitForStatus(t, manager, second, model.JobStatusCompleted)
}

func TestJobManager_CancelRunningJob(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeSyncCatalog, "cards", nil)
	_ = manager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started

	if err := manager.CancelJob(jobID); err != nil {
		t.Fatalf("Failed to cancel job: %v", err)
	}
	waitForStatus(t, manager, jobID, model.JobStatusCancelled)

	err := manager.CancelJob(jobID)
	if !errors.Is(err, internalErrors.ErrInvalidInput) {
		t.Errorf("Expected cancelling a finished job to be rejected, got %v", err)
	}
}

func TestJobManager_CancelPendingJob(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	if err := manager.CancelJob(jobID); err != nil {
		t.Fatalf("Failed to cancel job: %v", err)
	}
	job, _ := manager.GetJob(jobID)
	if job.Status != model.JobStatusCancelled {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCancelled, job.Status)
	}
	if err := manager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) { return nil, nil }); err == nil {
		t.Error("Expected a cancelled job not to run")
	}
	if err := manager.CancelJob("missing"); !errors.Is(err, internalErrors.ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := newTestManager(1)

	started := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	_ = manager.ExecuteJob(jobID, func(ctx context.Context, id string) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	<-started

	manager.Stop()
	manager.Stop()

	job, _ := manager.GetJob(jobID)
	if job.Status != model.JobStatusCancelled {
		t.Errorf("Expected job status %s after stop, got %s", model.JobStatusCancelled, job.Status)
	}

	late := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	if err := manager.ExecuteJob(late, func(ctx context.Context, id string) (any, error) { return nil, nil }); err == nil {
		t.Error("Expected execution after stop to fail")
	}
}

func TestJobManager_StopWhileScheduling(t *testing.T) {
	manager := NewManager(4, 0, zap.NewNop())
	manager.Start()

	const jobCount = 50
	ids := make([]string, jobCount)
	for i := range ids {
		ids[i] = manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = manager.ExecuteJob(id, func(ctx context.Context, id string) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			})
		}(id)
	}
	manager.Stop()
	wg.Wait()

	for _, id := range ids {
		job, err := manager.GetJob(id)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if job.Status == model.JobStatusRunning || job.Status == model.JobStatusCancelling {
			t.Errorf("Expected job %s to be settled after stop, got %s", id, job.Status)
		}
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	a := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	time.Sleep(time.Millisecond)
	b := manager.CreateJob(model.JobTypeSnapshot, "snapshot", nil)
	time.Sleep(time.Millisecond)
	c := manager.CreateJob(model.JobTypeSyncCatalog, "cards", nil)
	_ = manager.CancelJob(b)

	all := manager.ListJobs("", nil)
	if len(all) != 3 {
		t.Fatalf("Expected 3 jobs, got %d", len(all))
	}
	if all[0].ID != c || all[2].ID != a {
		t.Errorf("Expected newest job first, got %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	cards := manager.ListJobs("cards", nil)
	if len(cards) != 2 {
		t.Errorf("Expected 2 jobs for target 'cards', got %d", len(cards))
	}

	pending := model.JobStatusPending
	if got := manager.ListJobs("", &pending); len(got) != 2 {
		t.Errorf("Expected 2 pending jobs, got %d", len(got))
	}
	cancelled := model.JobStatusCancelled
	if got := manager.ListJobs("cards", &cancelled); len(got) != 0 {
		t.Errorf("Expected no cancelled jobs for 'cards', got %d", len(got))
	}
}

func TestJobManager_CleanupOldJobs(t *testing.T) {
	manager := newTestManager(1)
	defer manager.Stop()

	done := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	open := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	_ = manager.ExecuteJob(done, func(ctx context.Context, id string) (any, error) { return nil, nil })
	waitForStatus(t, manager, done, model.JobStatusCompleted)

	if n := manager.CleanupOldJobs(time.Hour); n != 0 {
		t.Errorf("Expected recent jobs to be kept, removed %d", n)
	}
	if n := manager.CleanupOldJobs(0); n != 1 {
		t.Errorf("Expected one finished job to be removed, removed %d", n)
	}
	if _, err := manager.GetJob(done); err == nil {
		t.Error("Expected removed job to be gone")
	}
	if _, err := manager.GetJob(open); err != nil {
		t.Errorf("Expected pending job to survive cleanup: %v", err)
	}
}

func TestJobManager_Stats(t *testing.T) {
	manager := newTestManager(2)
	defer manager.Stop()

	ok := manager.CreateJob(model.JobTypeImportCards, "cards", nil)
	bad := manager.CreateJob(model.JobTypeSyncCatalog, "cards", nil)
	_ = manager.ExecuteJob(ok, func(ctx context.Context, id string) (any, error) { return nil, nil })
	_ = manager.ExecuteJob(bad, func(ctx context.Context, id string) (any, error) { return nil, errors.New("nope") })
	waitForStatus(t, manager, ok, model.JobStatusCompleted)
	waitForStatus(t, manager, bad, model.JobStatusFailed)

	stats := manager.Stats()
	if stats.Created != 2 || stats.Completed != 1 || stats.Failed != 1 {
		t.Errorf("Unexpected totals: %+v", stats)
	}
	if stats.SuccessRate != 0.5 {
		t.Errorf("Expected success rate 0.5, got %f", stats.SuccessRate)
	}
	if stats.Workload != 0 {
		t.Errorf("Expected no active jobs, got %d", stats.Workload)
	}
	if stats.ByType[model.JobTypeImportCards].Completed != 1 {
		t.Errorf("Expected one completed import, got %+v", stats.ByType[model.JobTypeImportCards])
	}
	if stats.ByType[model.JobTypeSyncCatalog].Failed != 1 {
		t.Errorf("Expected one failed sync, got %+v", stats.ByType[model.JobTypeSyncCatalog])
	}
	if stats.ByStatus[model.JobStatusCompleted] != 1 || stats.ByStatus[model.JobStatusFailed] != 1 {
		t.Errorf("Unexpected status counts: %v", stats.ByStatus)
	}
}

func TestJobManager_StatsWithoutJobs(t *testing.T) {
	stats := newTestManager(1).Stats()
	if stats.SuccessRate != 1.0 {
		t.Errorf("Expected success rate 1.0 without jobs, got %f", stats.SuccessRate)
	}
	if stats.Created != 0 || len(stats.ByType) != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}
