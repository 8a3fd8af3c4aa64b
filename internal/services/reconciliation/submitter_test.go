package reconciliation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
)

type fakeUploads struct {
	ready  bool
	bundle models.UploadEndpointBundle
}

func (f fakeUploads) IsReady() bool { return f.ready }

func (f fakeUploads) Bundle() (models.UploadEndpointBundle, bool) {
	return f.bundle, f.bundle.TaskID != ""
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []models.TaskRequest
	err     error
	entered chan struct{}
	release chan struct{}
}

func (g *fakeGateway) Submit(ctx context.Context, req models.TaskRequest) (models.Ack, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	if g.entered != nil {
		g.entered <- struct{}{}
		<-g.release
	}
	if g.err != nil {
		return models.Ack{}, g.err
	}
	return models.Ack{Message: "ok"}, nil
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func readyUploads() fakeUploads {
	return fakeUploads{ready: true, bundle: models.UploadEndpointBundle{TaskID: "abc123"}}
}

func newSubmitter(g TaskGateway, u ReadinessSource, loc *time.Location) *TaskSubmitter {
	return NewTaskSubmitter(g, u, loc, logging.Discard())
}

func TestSubmitRequiresBothUploads(t *testing.T) {
	for _, u := range []fakeUploads{
		{},
		{ready: false, bundle: models.UploadEndpointBundle{TaskID: "abc123"}},
	} {
		g := &fakeGateway{}
		_, err := newSubmitter(g, u, time.UTC).Submit(context.Background(), TaskForm{BankName: "BCA"})

		require.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "please upload both files first")
		assert.Zero(t, g.callCount())
	}
}

func TestSubmitRejectsBlankBankName(t *testing.T) {
	g := &fakeGateway{}
	_, err := newSubmitter(g, readyUploads(), time.UTC).Submit(context.Background(), TaskForm{BankName: "   "})

	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "please enter a bank name")
	assert.Zero(t, g.callCount())
}

func TestBuildRequestNormalisesDates(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)
	s := newSubmitter(&fakeGateway{}, readyUploads(), wib)

	req, err := s.BuildRequest(TaskForm{BankName: " BCA ", StartDate: "2024-01-15", EndDate: "2024-01-20"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskRequest{
		TaskID:    "abc123",
		BankName:  "BCA",
		StartDate: "2024-01-15T00:00:00.000+07:00",
		EndDate:   "2024-01-20T23:59:59.999+07:00",
	}, req)

	utc := newSubmitter(&fakeGateway{}, readyUploads(), time.UTC)
	req, err = utc.BuildRequest(TaskForm{BankName: "BCA", StartDate: "2024-01-15", EndDate: "2024-01-15"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15T00:00:00.000Z", req.StartDate)
	assert.Equal(t, "2024-01-15T23:59:59.999Z", req.EndDate)
}

func TestBuildRequestOmitsEmptyDates(t *testing.T) {
	s := newSubmitter(&fakeGateway{}, readyUploads(), time.UTC)

	req, err := s.BuildRequest(TaskForm{BankName: "BCA", EndDate: "2024-01-20"})
	require.NoError(t, err)
	assert.Empty(t, req.StartDate)
	assert.Equal(t, "2024-01-20T23:59:59.999Z", req.EndDate)
}

func TestBuildRequestDateErrors(t *testing.T) {
	s := newSubmitter(&fakeGateway{}, readyUploads(), time.UTC)

	tests := []struct {
		name string
		form TaskForm
	}{
		{"bad start", TaskForm{BankName: "BCA", StartDate: "15/01/2024"}},
		{"bad end", TaskForm{BankName: "BCA", EndDate: "2024-13-01"}},
		{"reversed", TaskForm{BankName: "BCA", StartDate: "2024-01-20", EndDate: "2024-01-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.BuildRequest(tt.form)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestSubmitSendsRequest(t *testing.T) {
	g := &fakeGateway{}
	s := newSubmitter(g, readyUploads(), time.UTC)

	ack, err := s.Submit(context.Background(), TaskForm{BankName: "BCA"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ack.Message)
	require.Equal(t, 1, g.callCount())
	assert.Equal(t, "abc123", g.calls[0].TaskID)
	assert.False(t, s.InFlight())
}

func TestSubmitFailureIsWrapped(t *testing.T) {
	g := &fakeGateway{err: errors.New("HTTP error! Status: 500")}
	s := newSubmitter(g, readyUploads(), time.UTC)

	_, err := s.Submit(context.Background(), TaskForm{BankName: "BCA"})

	require.ErrorIs(t, err, models.ErrSubmissionFailed)
	var sf *models.SubmissionFailedError
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, "failed to initiate reconciliation: HTTP error! Status: 500", err.Error())
	assert.False(t, s.InFlight(), "guard released after failure")

	g.err = nil
	_, err = s.Submit(context.Background(), TaskForm{BankName: "BCA"})
	assert.NoError(t, err, "retry is allowed")
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	g := &fakeGateway{entered: make(chan struct{}), release: make(chan struct{})}
	s := newSubmitter(g, readyUploads(), time.UTC)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), TaskForm{BankName: "BCA"})
		done <- err
	}()
	<-g.entered
	assert.True(t, s.InFlight())

	_, err := s.Submit(context.Background(), TaskForm{BankName: "BCA"})
	assert.ErrorIs(t, err, models.ErrSubmissionInProgress)

	close(g.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, g.callCount())
	assert.False(t, s.InFlight())
}

func TestStartAndEndOfDay(t *testing.T) {
	loc := time.FixedZone("EST", -5*60*60)

	start, err := StartOfDay(" 2024-02-29 ", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T00:00:00.000-05:00", FormatTimestamp(start))

	end, err := EndOfDay("2024-02-29", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29T23:59:59.999-05:00", FormatTimestamp(end))

	_, err = EndOfDay("2023-02-29", loc)
	assert.ErrorIs(t, err, models.ErrValidation)
}
