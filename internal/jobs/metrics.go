package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/card-catalog/model"
)

// durationWindow is how many recent run times are kept per job type.
const durationWindow = 100

type typeCounters struct {
	created, completed, failed, cancelled int64
	durations                             []time.Duration
}

func (c *typeCounters) average() time.Duration {
	if len(c.durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range c.durations {
		total += d
	}
	return total / time.Duration(len(c.durations))
}

// statsCollector counts job lifecycle events.
type statsCollector struct {
	mu            sync.Mutex
	byType        map[model.JobType]*typeCounters
	byStatus      map[model.JobStatus]int64
	totalDuration time.Duration
	lastUpdated   time.Time
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		byType:      make(map[model.JobType]*typeCounters),
		byStatus:    make(map[model.JobStatus]int64),
		lastUpdated: time.Now(),
	}
}

func (s *statsCollector) counters(jobType model.JobType) *typeCounters {
	c, ok := s.byType[jobType]
	if !ok {
		c = &typeCounters{}
		s.byType[jobType] = c
	}
	return c
}

func (s *statsCollector) created(jobType model.JobType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters(jobType).created++
	s.byStatus[model.JobStatusPending]++
	s.lastUpdated = time.Now()
}

func (s *statsCollector) transition(from, to model.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from != "" && s.byStatus[from] > 0 {
		s.byStatus[from]--
	}
	s.byStatus[to]++
	s.lastUpdated = time.Now()
}

// removed forgets a job that was dropped by cleanup.
func (s *statsCollector) removed(status model.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.byStatus[status] > 0 {
		s.byStatus[status]--
	}
}

func (s *statsCollector) finished(jobType model.JobType, status model.JobStatus, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.counters(jobType)
	switch status {
	case model.JobStatusCompleted:
		c.completed++
		s.totalDuration += took
		c.durations = append(c.durations, took)
		if len(c.durations) > durationWindow {
			c.durations = c.durations[len(c.durations)-durationWindow:]
		}
	case model.JobStatusFailed:
		c.failed++
	case model.JobStatusCancelled:
		c.cancelled++
	}
	s.lastUpdated = time.Now()
}

func (s *statsCollector) snapshot() model.JobStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := model.JobStats{
		ByType:      make(map[model.JobType]model.JobTypeStats, len(s.byType)),
		ByStatus:    make(map[model.JobStatus]int64, len(s.byStatus)),
		LastUpdated: s.lastUpdated,
	}
	for t, c := range s.byType {
		out.Created += c.created
		out.Completed += c.completed
		out.Failed += c.failed
		out.Cancelled += c.cancelled
		out.ByType[t] = model.JobTypeStats{
			Created:         c.created,
			Completed:       c.completed,
			Failed:          c.failed,
			Cancelled:       c.cancelled,
			AverageDuration: c.average(),
		}
	}
	for st, n := range s.byStatus {
		out.ByStatus[st] = n
	}
	if out.Completed > 0 {
		out.AverageDuration = s.totalDuration / time.Duration(out.Completed)
	}
	out.SuccessRate = 1.0
	if finished := out.Completed + out.Failed; finished > 0 {
		out.SuccessRate = float64(out.Completed) / float64(finished)
	}
	out.Workload = s.byStatus[model.JobStatusPending] + s.byStatus[model.JobStatusRunning] + s.byStatus[model.JobStatusCancelling]
	return out
}
