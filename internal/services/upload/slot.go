// Package upload tracks the two file uploads a reconciliation task needs and
// gates submission on both having succeeded.
package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"path"
	"sync"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/repository"
)

// Kind names one of the two required uploads.
type Kind string

const (
	KindTransaction   Kind = "transaction"
	KindBankStatement Kind = "bank_statement"
)

// Kinds lists both slots in display order.
var Kinds = []Kind{KindTransaction, KindBankStatement}

func (k Kind) Label() string {
	if k == KindBankStatement {
		return "bank statement"
	}
	return "transaction"
}

type Status int

const (
	StatusIdle Status = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Transport moves a file body to an upload URL.
type Transport interface {
	Upload(ctx context.Context, target, contentType string, body io.Reader, size int64) error
}

// SlotState is a point-in-time copy of a slot.
type SlotState struct {
	Kind         Kind
	Status       Status
	ErrorMessage string
	Identifier   string
	Sent         int64
	Total        int64
}

// Slot runs one upload at a time from the caller's point of view. Overlapping
// Begin calls are not serialised; whichever finishes last decides the status.
type Slot struct {
	kind      Kind
	transport Transport
	logger    *slog.Logger

	mu         sync.Mutex
	state      SlotState
	onChange   func(SlotState)
	onProgress func(SlotState)
}

func NewSlot(kind Kind, transport Transport, logger *slog.Logger) *Slot {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Slot{
		kind:      kind,
		transport: transport,
		logger:    logger.With("slot", string(kind)),
		state:     SlotState{Kind: kind},
	}
}

func (s *Slot) Kind() Kind { return s.kind }

func (s *Slot) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin uploads file to target. The returned identifier is the last path
// segment of target; it only says the slot is satisfied.
func (s *Slot) Begin(ctx context.Context, target string, file File) (string, error) {
	if file == nil {
		s.note(models.ErrMissingFile.Error())
		return "", models.ErrMissingFile
	}

	s.set(SlotState{Kind: s.kind, Status: StatusInProgress})

	body, size, err := file.Open()
	if err != nil {
		return "", s.fail(&models.UploadFailedError{Body: err.Error()})
	}
	defer body.Close()

	s.logger.Info("upload started", "file", file.Name(), "bytes", size)
	reader := &progressReader{r: body, slot: s, total: size}
	s.progress(0, size)

	if err := s.transport.Upload(ctx, target, file.ContentType(), reader, size); err != nil {
		return "", s.fail(uploadFailure(err))
	}

	id := identifierFor(target)
	s.set(SlotState{Kind: s.kind, Status: StatusSucceeded, Identifier: id, Sent: size, Total: size})
	s.logger.Info("upload succeeded", "file", file.Name(), "identifier", id)
	return id, nil
}

// Reset returns the slot to Idle.
func (s *Slot) Reset() {
	s.set(SlotState{Kind: s.kind})
}

func (s *Slot) fail(err *models.UploadFailedError) error {
	s.set(SlotState{Kind: s.kind, Status: StatusFailed, ErrorMessage: err.Error()})
	s.logger.Warn("upload failed", "status", err.StatusCode, "error", err.Body)
	return err
}

// note records msg without moving the slot out of its current status.
func (s *Slot) note(msg string) {
	s.mu.Lock()
	s.state.ErrorMessage = msg
	state, fn := s.state, s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (s *Slot) set(state SlotState) {
	s.mu.Lock()
	s.state = state
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (s *Slot) progress(sent, total int64) {
	s.mu.Lock()
	if s.state.Status != StatusInProgress {
		s.mu.Unlock()
		return
	}
	s.state.Sent, s.state.Total = sent, total
	state, fn := s.state, s.onProgress
	s.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

func (s *Slot) observe(onChange, onProgress func(SlotState)) {
	s.mu.Lock()
	s.onChange, s.onProgress = onChange, onProgress
	s.mu.Unlock()
}

func uploadFailure(err error) *models.UploadFailedError {
	var se *repository.StatusError
	if errors.As(err, &se) {
		return &models.UploadFailedError{StatusCode: se.StatusCode, Body: se.Body}
	}
	return &models.UploadFailedError{Body: err.Error()}
}

func identifierFor(target string) string {
	if u, err := url.Parse(target); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(target)
}

type progressReader struct {
	r     io.Reader
	slot  *Slot
	sent  int64
	total int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.slot.progress(p.sent, p.total)
	}
	return n, err
}
