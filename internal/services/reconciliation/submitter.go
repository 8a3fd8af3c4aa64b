package reconciliation

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
)

// TaskGateway posts a reconciliation task to the backend.
type TaskGateway interface {
	Submit(ctx context.Context, req models.TaskRequest) (models.Ack, error)
}

// ReadinessSource is the upload state the submitter depends on.
type ReadinessSource interface {
	IsReady() bool
	Bundle() (models.UploadEndpointBundle, bool)
}

// TaskForm is what the user filled in. Empty dates are left out of the request.
type TaskForm struct {
	BankName  string
	StartDate string
	EndDate   string
}

// TaskSubmitter validates the form and submits the task. At most one
// submission is in flight; the guard is released on every return path.
type TaskSubmitter struct {
	gateway  TaskGateway
	uploads  ReadinessSource
	location *time.Location
	logger   *slog.Logger
	inFlight atomic.Bool
}

func NewTaskSubmitter(gateway TaskGateway, uploads ReadinessSource, location *time.Location, logger *slog.Logger) *TaskSubmitter {
	if logger == nil {
		logger = logging.Discard()
	}
	if location == nil {
		location = time.Local
	}
	return &TaskSubmitter{gateway: gateway, uploads: uploads, location: location, logger: logger}
}

// InFlight reports whether a submission is running, for disabling triggers.
func (s *TaskSubmitter) InFlight() bool {
	return s.inFlight.Load()
}

// BuildRequest validates form against the current upload state and returns
// the request Submit would send. It performs no I/O.
func (s *TaskSubmitter) BuildRequest(form TaskForm) (models.TaskRequest, error) {
	bundle, ok := s.uploads.Bundle()
	if !ok || !s.uploads.IsReady() {
		return models.TaskRequest{}, models.ValidationError("please upload both files first")
	}
	bankName := strings.TrimSpace(form.BankName)
	if bankName == "" {
		return models.TaskRequest{}, models.ValidationError("please enter a bank name")
	}

	req := models.TaskRequest{TaskID: bundle.TaskID, BankName: bankName}

	var start, end time.Time
	if strings.TrimSpace(form.StartDate) != "" {
		t, err := StartOfDay(form.StartDate, s.location)
		if err != nil {
			return models.TaskRequest{}, err
		}
		start = t
		req.StartDate = FormatTimestamp(t)
	}
	if strings.TrimSpace(form.EndDate) != "" {
		t, err := EndOfDay(form.EndDate, s.location)
		if err != nil {
			return models.TaskRequest{}, err
		}
		end = t
		req.EndDate = FormatTimestamp(t)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return models.TaskRequest{}, models.ValidationError("start date is after end date")
	}
	return req, nil
}

// Submit sends the task. Local validation failures issue no request. On
// transport failure the upload state is left as is so the user can retry.
func (s *TaskSubmitter) Submit(ctx context.Context, form TaskForm) (models.Ack, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return models.Ack{}, models.ErrSubmissionInProgress
	}
	defer s.inFlight.Store(false)

	req, err := s.BuildRequest(form)
	if err != nil {
		return models.Ack{}, err
	}

	s.logger.Info("submitting reconciliation", "task_id", req.TaskID, "bank", req.BankName,
		"start_date", req.StartDate, "end_date", req.EndDate)

	ack, err := s.gateway.Submit(ctx, req)
	if err != nil {
		s.logger.Warn("submission failed", "task_id", req.TaskID, "error", err)
		return models.Ack{}, &models.SubmissionFailedError{Reason: err.Error()}
	}
	return ack, nil
}
