// Package reconciliation runs the upload, submit and browse workflow of the
// reconciliation portal.
package reconciliation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/repository"
	"reconciliation-portal/internal/services/listing"
	"reconciliation-portal/internal/services/upload"
)

// Notifier shows a titled message to the user.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

const (
	TitleError   = "Error"
	TitleSuccess = "Success"
)

// Views are the render delegates of the two list views. Nil fields render nothing.
type Views struct {
	Summaries    listing.Delegate[models.ReconciliationSummary]
	Transactions listing.Delegate[models.DetailRecord]
	BankEntries  listing.Delegate[models.DetailRecord]
}

// Options tune a service built by NewReconciliationServiceFromAPI.
type Options struct {
	PageSize int
	Location *time.Location
}

// ReconciliationService ties the upload coordinator, the task submitter
// and both list controllers into one workflow.
type ReconciliationService struct {
	uploads   *upload.Coordinator
	submitter *TaskSubmitter
	summaries *listing.Controller[models.ReconciliationSummary]
	details   *listing.DetailsController
	notifier  Notifier
	logger    *slog.Logger
}

func NewReconciliationService(
	uploads *upload.Coordinator,
	submitter *TaskSubmitter,
	summaries *listing.Controller[models.ReconciliationSummary],
	details *listing.DetailsController,
	notifier Notifier,
	logger *slog.Logger,
) *ReconciliationService {
	if notifier == nil {
		notifier = NotifierFunc(func(string, string) {})
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &ReconciliationService{
		uploads:   uploads,
		submitter: submitter,
		summaries: summaries,
		details:   details,
		notifier:  notifier,
		logger:    logger,
	}
}

// NewReconciliationServiceFromAPI wires repositories over api into a service.
func NewReconciliationServiceFromAPI(api *repository.APIClient, views Views, notifier Notifier, opts Options, logger *slog.Logger) *ReconciliationService {
	uploadRepo := repository.NewUploadRepository(api)
	summaryRepo := repository.NewSummaryRepository(api)
	taskRepo := repository.NewTaskRepository(api)

	coordinator := upload.NewCoordinator(uploadRepo, uploadRepo, logger)
	submitter := NewTaskSubmitter(taskRepo, coordinator, opts.Location, logger)
	summaries := listing.NewController[models.ReconciliationSummary]("reconciliation summaries", opts.PageSize, summaryRepo.ListSummaries, views.Summaries, logger)
	details := listing.NewDetailsController(opts.PageSize, []listing.Variant{
		{
			Category: models.CategoryTransaction,
			Name:     "unmatched transaction details",
			Fetch:    listing.AsDetails(summaryRepo.ListUnmatchedTransactions),
			Delegate: views.Transactions,
		},
		{
			Category: models.CategoryBank,
			Name:     "unmatched bank details",
			Fetch:    listing.AsDetails(summaryRepo.ListUnmatchedBankEntries),
			Delegate: views.BankEntries,
		},
	}, logger)

	return NewReconciliationService(coordinator, submitter, summaries, details, notifier, logger)
}

func (s *ReconciliationService) Uploads() *upload.Coordinator { return s.uploads }

func (s *ReconciliationService) Submitter() *TaskSubmitter { return s.submitter }

// Start fetches the first endpoint bundle.
func (s *ReconciliationService) Start(ctx context.Context) error {
	if err := s.uploads.Initialize(ctx); err != nil {
		s.notifier.Notify(TitleError, "Failed to get upload URLs: "+err.Error())
		return err
	}
	return nil
}

// Upload sends file through the slot for kind and announces failures.
func (s *ReconciliationService) Upload(ctx context.Context, kind upload.Kind, file upload.File) (string, error) {
	id, err := s.uploads.UploadTo(ctx, kind, file)
	if err != nil {
		s.notifier.Notify(TitleError, uploadMessage(kind, err))
		return "", err
	}
	return id, nil
}

// Ready reports whether a task may be submitted.
func (s *ReconciliationService) Ready() bool {
	return s.uploads.IsReady() && !s.submitter.InFlight()
}

// Submit posts the task. On success the upload state is reset, a new bundle
// is fetched, the details view is cleared and summaries reload from the
// first page; failures in those follow-ups are announced but do not turn
// the accepted submission into an error.
func (s *ReconciliationService) Submit(ctx context.Context, form TaskForm) (models.Ack, error) {
	ack, err := s.submitter.Submit(ctx, form)
	if err != nil {
		s.notifier.Notify(TitleError, submitMessage(err))
		return models.Ack{}, err
	}

	s.notifier.Notify(TitleSuccess, "Reconciliation has been initiated successfully!")

	s.uploads.Reset()
	if err := s.Start(ctx); err != nil {
		s.logger.Warn("re-initialize after submit failed", "error", err)
	}
	s.details.Clear()
	s.summaries.Rewind()
	if err := s.summaries.Load(ctx); err != nil {
		s.logger.Warn("summary refresh after submit failed", "error", err)
	}
	return ack, nil
}

func (s *ReconciliationService) LoadSummaries(ctx context.Context) error {
	return s.summaries.Load(ctx)
}

func (s *ReconciliationService) NextSummaries(ctx context.Context) (bool, error) {
	return s.summaries.Next(ctx)
}

func (s *ReconciliationService) PreviousSummaries(ctx context.Context) (bool, error) {
	return s.summaries.Previous(ctx)
}

func (s *ReconciliationService) Summaries() listing.Snapshot[models.ReconciliationSummary] {
	return s.summaries.Snapshot()
}

// DrillIn shows the unmatched records of one category of a run.
func (s *ReconciliationService) DrillIn(ctx context.Context, taskID string, category models.Category) error {
	return s.details.Select(ctx, models.DetailSelector{TaskID: taskID, Category: category})
}

func (s *ReconciliationService) LoadDetails(ctx context.Context) error {
	return s.details.Load(ctx)
}

func (s *ReconciliationService) NextDetails(ctx context.Context) (bool, error) {
	return s.details.Next(ctx)
}

func (s *ReconciliationService) PreviousDetails(ctx context.Context) (bool, error) {
	return s.details.Previous(ctx)
}

func (s *ReconciliationService) Details() (models.DetailSelector, listing.Snapshot[models.DetailRecord]) {
	sel, _ := s.details.Selector()
	return sel, s.details.Snapshot()
}

func uploadMessage(kind upload.Kind, err error) string {
	switch {
	case errors.Is(err, models.ErrMissingFile):
		return "Please select a " + kind.Label() + " file first."
	case errors.Is(err, models.ErrEndpointUnavailable), errors.Is(err, models.ErrEndpointMissing):
		return "Upload URL not available. Please try refreshing the page. (" + err.Error() + ")"
	default:
		return "Failed to upload " + kind.Label() + " file: " + err.Error()
	}
}

func submitMessage(err error) string {
	if errors.Is(err, models.ErrSubmissionInProgress) {
		return "A submission is already in progress."
	}
	return err.Error()
}
