// Package jobs runs long catalog operations (imports, syncs, snapshots) in the
// background and keeps their status queryable for a while after they finish.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/card-catalog/internal/errors"
	"github.com/gcbaptista/card-catalog/model"
)

// Func is the body of a job. The returned value is stored as the job result.
type Func func(ctx context.Context, jobID string) (any, error)

// Manager handles background job execution and tracking
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*model.Job
	cancels   map[string]context.CancelFunc
	workers   chan struct{} // limits concurrent jobs
	retention time.Duration
	logger    *zap.Logger
	stats     *statsCollector

	ctx      context.Context
	stop     context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a job manager running at most maxWorkers jobs at once.
// Finished jobs are forgotten once they are older than retention.
func NewManager(maxWorkers int, retention time.Duration, logger *zap.Logger) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		jobs:      make(map[string]*model.Job),
		cancels:   make(map[string]context.CancelFunc),
		workers:   make(chan struct{}, maxWorkers),
		retention: retention,
		logger:    logger,
		stats:     newStatsCollector(),
		ctx:       ctx,
		stop:      stop,
	}
}

// Start begins background cleanup of finished jobs.
func (m *Manager) Start() {
	m.logger.Info("job manager started",
		zap.Int("max_workers", cap(m.workers)),
		zap.Duration("retention", m.retention))

	if m.retention <= 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return. It is safe to call
// more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		// no job can be scheduled once the context is cancelled under the lock
		m.mu.Lock()
		m.stop()
		m.mu.Unlock()
		m.wg.Wait()
		m.logger.Info("job manager stopped")
	})
}

// CreateJob registers a pending job and returns its ID.
func (m *Manager) CreateJob(jobType model.JobType, target string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Target:    target,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.stats.created(jobType)
	m.logger.Info("job created",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("target", job.Target))
	return job.ID
}

// GetJob returns a copy of the job.
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, internalErrors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns copies of the jobs for target, newest first. An empty
// target matches every job; a nil status matches every status.
func (m *Manager) ListJobs(target string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if target != "" && job.Target != target {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// ExecuteJob schedules fn for a pending job and returns immediately. The job
// waits for a free worker, then runs with a context that is cancelled by
// CancelJob or Stop.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return internalErrors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	if _, scheduled := m.cancels[jobID]; scheduled {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is already scheduled", jobID)
	}
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		m.finish(jobID, model.JobStatusCancelled, "job manager is shutting down", nil, 0)
		return errors.New("job manager is shutting down")
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancels[jobID] = cancel
	jobType := job.Type
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx, cancel, jobID, jobType, fn)
	return nil
}

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, jobID string, jobType model.JobType, fn Func) {
	defer m.wg.Done()
	defer cancel()

	select {
	case m.workers <- struct{}{}:
	case <-ctx.Done():
		m.finish(jobID, model.JobStatusCancelled, "cancelled before start", nil, 0)
		return
	}
	defer func() { <-m.workers }()

	if !m.markRunning(jobID) {
		m.finish(jobID, model.JobStatusCancelled, "cancelled before start", nil, 0)
		return
	}

	start := time.Now()
	result, err := call(ctx, jobID, fn)
	took := time.Since(start)

	switch {
	case err == nil:
		m.finish(jobID, model.JobStatusCompleted, "", result, took)
		m.logger.Info("job completed",
			zap.String("job_id", jobID),
			zap.String("type", string(jobType)),
			zap.Duration("took", took))
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		m.finish(jobID, model.JobStatusCancelled, err.Error(), result, took)
		m.logger.Warn("job cancelled",
			zap.String("job_id", jobID),
			zap.String("type", string(jobType)),
			zap.Duration("took", took))
	default:
		m.finish(jobID, model.JobStatusFailed, err.Error(), result, took)
		m.logger.Error("job failed",
			zap.String("job_id", jobID),
			zap.String("type", string(jobType)),
			zap.Duration("took", took),
			zap.Error(err))
	}
}

// call runs fn, turning a panic into an error.
func call(ctx context.Context, jobID string, fn Func) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx, jobID)
}

// CancelJob asks a pending or running job to stop. A running job ends as
// cancelled once its function returns.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return internalErrors.NewJobNotFoundError(jobID)
	}
	if job.Status.IsTerminal() {
		m.mu.Unlock()
		return internalErrors.NewValidationError("job_id", fmt.Sprintf("job is already %s", job.Status))
	}

	cancel, scheduled := m.cancels[jobID]
	if !scheduled {
		m.mu.Unlock()
		m.finish(jobID, model.JobStatusCancelled, "cancelled before start", nil, 0)
		return nil
	}
	old := job.Status
	job.Status = model.JobStatusCancelling
	m.stats.transition(old, job.Status)
	m.mu.Unlock()

	cancel()
	m.logger.Info("job cancellation requested", zap.String("job_id", jobID))
	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) markRunning(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists || job.Status != model.JobStatusPending {
		return false
	}
	now := time.Now()
	job.Status = model.JobStatusRunning
	job.StartedAt = &now
	m.stats.transition(model.JobStatusPending, model.JobStatusRunning)
	return true
}

func (m *Manager) finish(jobID string, status model.JobStatus, errMsg string, result any, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.cancels, jobID)
	job, exists := m.jobs[jobID]
	if !exists || job.Status.IsTerminal() {
		return
	}

	old := job.Status
	now := time.Now()
	job.Status = status
	job.Error = errMsg
	job.Result = result
	job.CompletedAt = &now
	m.stats.transition(old, status)
	m.stats.finished(job.Type, status, took)
}

func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	interval := min(m.retention, time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.retention)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago
// and returns how many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			m.stats.removed(job.Status)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Info("cleaned up finished jobs", zap.Int("count", cleaned))
	}
	return cleaned
}

// Stats returns the current job statistics.
func (m *Manager) Stats() model.JobStats {
	return m.stats.snapshot()
}

func copyJob(job *model.Job) *model.Job {
	c := *job
	if job.Progress != nil {
		p := *job.Progress
		c.Progress = &p
	}
	if job.Metadata != nil {
		c.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
