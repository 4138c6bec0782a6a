package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baileyeubanks/coedit/internal/progress"
)

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrInvalidState = errors.New("invalid job state")
)

// Status represents the current state of an export job.
type Status struct {
	ID         string           `json:"id"`
	Status     string           `json:"status"`
	Progress   float64          `json:"progress"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
	OutputPath string           `json:"output_path,omitempty"`
	Events     []progress.Event `json:"events"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	cancelFunc context.CancelFunc
}

// Response represents a page of job statuses.
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalJobs  int       `json:"total_jobs"`
	TotalPages int       `json:"total_pages"`
}

// Manager tracks export jobs and their cancellation contexts.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*Status
}

// NewManager creates a new job manager
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Status),
	}
}

// CreateJob registers a new pending job and returns its status together
// with the context the export run must observe.
func (m *Manager) CreateJob(outputPath string) (*Status, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())

	job := &Status{
		ID:         uuid.NewString(),
		Status:     StatusPending,
		Progress:   0,
		Message:    "Job created",
		OutputPath: outputPath,
		StartTime:  time.Now(),
		cancelFunc: cancel,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job, ctx
}

// snapshot deep-copies a job so readers never share state with the
// export goroutine. Caller holds m.mu.
func snapshot(job *Status) *Status {
	cp := *job
	cp.cancelFunc = nil
	cp.Events = append([]progress.Event(nil), job.Events...)
	if job.EndTime != nil {
		end := *job.EndTime
		cp.EndTime = &end
	}
	return &cp
}

// GetJob retrieves a copy of a job by ID.
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return snapshot(job), nil
}

// CancelJob cancels a pending or processing job.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}

	if job.Status != StatusProcessing && job.Status != StatusPending {
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}

	job.cancelFunc()
	job.Status = StatusCancelled
	job.Message = "Job cancelled by user"
	endTime := time.Now()
	job.EndTime = &endTime

	return nil
}

// MarkProcessing transitions a job into the processing state.
func (m *Manager) MarkProcessing(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[jobID]; ok && job.Status == StatusPending {
		job.Status = StatusProcessing
		job.Message = "Export in progress"
	}
}

// Complete records the final state of a job. A nil err marks completion;
// a job already cancelled stays cancelled.
func (m *Manager) Complete(jobID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || job.Status == StatusCancelled {
		return
	}

	endTime := time.Now()
	job.EndTime = &endTime
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.Message = "Export failed"
		return
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.Message = "Export complete"
}

// Record appends a progress event to a job and mirrors its percentage.
func (m *Manager) Record(jobID string, event progress.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	job.Events = append(job.Events, event)
	if event.Progress > job.Progress {
		job.Progress = event.Progress
	}
	if event.Message != "" {
		job.Message = event.Message
	}
}

// ListJobs lists copies of all jobs with pagination, oldest first.
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, snapshot(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].StartTime.Equal(jobs[j].StartTime) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})

	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: (len(jobs) + pageSize - 1) / pageSize,
		}
	}

	if end > len(jobs) {
		end = len(jobs)
	}

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: (len(jobs) + pageSize - 1) / pageSize,
	}
}
