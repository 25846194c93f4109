// Package jobs runs scaling of stored archives in the background.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/adventure-scaler/scaler/internal/adventure"
	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/models"
)

// Status represents the job processing status.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusScaling  Status = "scaling"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Job represents an async scaling job.
type Job struct {
	ID          string                `json:"id"`
	SourceID    string                `json:"sourceId"`
	FileName    string                `json:"fileName"`
	Scale       string                `json:"scale"`
	Status      Status                `json:"status"`
	FileInfo    *models.FileInfo      `json:"fileInfo,omitempty"`
	Scenes      []models.SceneSummary `json:"scenes,omitempty"`
	Error       string                `json:"error,omitempty"`
	ErrorCode   string                `json:"errorCode,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	CompletedAt *time.Time            `json:"completedAt,omitempty"`
}

// Request describes the scaling of one stored archive.
type Request struct {
	SourceID string
	Ratio    decimal.Decimal
	Options  adventure.Options
}

// Store defines the interface needed from storage layer.
type Store interface {
	Get(id string) (*models.FileInfo, error)
	GetFilePath(id string) (string, error)
	Produce(name string, origin models.FileOrigin, write func(path string) error) (*models.FileInfo, error)
}

// CompleteFunc is called with the produced archive after a job succeeds.
type CompleteFunc func(info *models.FileInfo, scenes []models.SceneSummary)

// Manager handles async scaling jobs.
type Manager struct {
	jobs       map[string]*Job
	mu         sync.RWMutex
	store      Store
	log        logrus.FieldLogger
	onComplete CompleteFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a new job manager. onComplete may be nil.
func NewManager(store Store, log logrus.FieldLogger, onComplete CompleteFunc) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:       make(map[string]*Job),
		store:      store,
		log:        log,
		onComplete: onComplete,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// StartJob checks the request and begins scaling in the background.
func (m *Manager) StartJob(req Request) (Job, error) {
	if err := adventure.ValidateRatio(req.Ratio); err != nil {
		return Job{}, err
	}
	source, err := m.store.Get(req.SourceID)
	if err != nil {
		return Job{}, err
	}
	if source.Kind != models.FileKindUpload {
		return Job{}, fmt.Errorf("file %s is not an uploaded archive", req.SourceID)
	}

	job := &Job{
		ID:        uuid.New().String(),
		SourceID:  source.ID,
		FileName:  adventure.ScaledName(source.Name, req.Ratio),
		Scale:     req.Ratio.String(),
		Status:    StatusQueued,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.processJob(job, req)
	}()

	return snapshot, nil
}

// GetJob returns a snapshot of the job.
func (m *Manager) GetJob(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown cancels running jobs and waits for them to stop.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) processJob(job *Job, req Request) {
	log := m.log.WithFields(logrus.Fields{"job": job.ID, "source": job.SourceID})
	log.Info("starting scale job")

	m.updateJobStatus(job, StatusScaling)

	inputPath, err := m.store.GetFilePath(job.SourceID)
	if err != nil {
		m.markJobError(job, log, err)
		return
	}

	scaler := adventure.NewScaler(req.Options, log)
	origin := models.FileOrigin{SourceID: job.SourceID, Scale: job.Scale}

	var result *adventure.Result
	info, err := m.store.Produce(job.FileName, origin, func(path string) error {
		var err error
		result, err = scaler.PerformScaling(m.ctx, inputPath, path, req.Ratio)
		return err
	})
	if err != nil {
		m.markJobError(job, log, err)
		return
	}

	if m.onComplete != nil {
		m.onComplete(info, result.Scenes)
	}
	m.markJobComplete(job, info, result.Scenes)
	log.WithField("output", info.ID).Info("scale job complete")
}

// updateJobStatus updates job status (thread-safe).
func (m *Manager) updateJobStatus(job *Job, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job.Status = status
}

// markJobComplete marks job as complete (thread-safe).
func (m *Manager) markJobComplete(job *Job, info *models.FileInfo, scenes []models.SceneSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusComplete
	job.FileInfo = info
	job.Scenes = scenes
	now := time.Now()
	job.CompletedAt = &now
}

// markJobError marks job as failed (thread-safe).
func (m *Manager) markJobError(job *Job, log logrus.FieldLogger, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Status = StatusError
	job.Error = err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		job.ErrorCode = string(appErr.Code)
	}
	now := time.Now()
	job.CompletedAt = &now
	log.WithError(err).Error("scale job failed")
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how
// many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusComplete || job.Status == StatusError {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(m.jobs, id)
				removed++
			}
		}
	}
	return removed
}
