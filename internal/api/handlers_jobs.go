// handlers_jobs.go - Background scaling job handlers
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/adventure-scaler/scaler/internal/adventure"
	apperrors "github.com/adventure-scaler/scaler/internal/errors"
	"github.com/adventure-scaler/scaler/internal/jobs"
	"github.com/adventure-scaler/scaler/internal/storage"
)

// JobHandlerImpl implements the JobHandler interface
type JobHandlerImpl struct {
	manager  *jobs.Manager
	defaults ScaleDefaults
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(manager *jobs.Manager, defaults ScaleDefaults) JobHandler {
	return &JobHandlerImpl{
		manager:  manager,
		defaults: defaults,
	}
}

// HandleStartJob queues the scaling of an uploaded archive
func (h *JobHandlerImpl) HandleStartJob(c echo.Context) error {
	var req startJobRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	ratio, err := adventure.ParseRatio(req.Scale.String())
	if err != nil {
		return FromDomainError(err)
	}

	fixNav := h.defaults.FixNavigation
	if req.FixNavigation != nil {
		fixNav = *req.FixNavigation
	}
	drawingSize := h.defaults.ScaleDrawingSize
	if req.ScaleDrawingSize != nil {
		drawingSize = *req.ScaleDrawingSize
	}

	job, err := h.manager.StartJob(jobs.Request{
		SourceID: req.FileID,
		Ratio:    ratio,
		Options:  h.defaults.options(fixNav, drawingSize),
	})
	if err != nil {
		var domainErr *apperrors.Error
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return NewNotFoundError("file", req.FileID)
		case errors.As(err, &domainErr):
			return FromDomainError(err)
		default:
			return NewBadRequestError("cannot scale file", err)
		}
	}

	return c.JSON(http.StatusAccepted, job)
}

// HandleGetJob returns the current state of a job
func (h *JobHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	job, ok := h.manager.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}

	return c.JSON(http.StatusOK, job)
}

// HandleJobStream streams job state via Server-Sent Events until the job
// finishes
func (h *JobHandlerImpl) HandleJobStream(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.manager.GetJob(id); !ok {
		return NewNotFoundError("job", id)
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	c.Response().WriteHeader(http.StatusOK)

	return watchJob(c.Request().Context(), h.manager, id, jobPollInterval, func(job jobs.Job) error {
		data, err := gojson.Marshal(job)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
			return err
		}
		c.Response().Flush()
		return nil
	})
}

const jobPollInterval = 100 * time.Millisecond

// watchJob calls send whenever the job's status changes, ending after a
// finished state has been sent or when ctx is done.
func watchJob(ctx context.Context, manager *jobs.Manager, id string, interval time.Duration, send func(jobs.Job) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last jobs.Status
	for {
		job, ok := manager.GetJob(id)
		if !ok {
			return NewNotFoundError("job", id)
		}
		if job.Status != last {
			if err := send(job); err != nil {
				return err
			}
			last = job.Status
		}
		if job.Status == jobs.StatusComplete || job.Status == jobs.StatusError {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

type startJobRequest struct {
	FileID           string      `json:"fileId"`
	Scale            json.Number `json:"scale"` // number or numeric string
	FixNavigation    *bool       `json:"fixNavigation"`
	ScaleDrawingSize *bool       `json:"scaleDrawingSize"`
}

func (r *startJobRequest) validate() error {
	if r.FileID == "" {
		return NewValidationError("fileId")
	}
	if r.Scale == "" {
		return NewValidationError("scale")
	}
	return nil
}
