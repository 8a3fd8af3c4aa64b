// Package listing drives paginated list views against the backend's
// {data, totalCount} envelope.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/services/pagination"
)

// DisplayState is what a list view shows in its status region.
type DisplayState int

const (
	StateIdle DisplayState = iota
	StateLoading
	StatePopulated
	StateEmpty
	StateError
)

func (s DisplayState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Delegate renders one list view. RenderPage receives every applied page,
// RenderState every status change; message is set only for StateError.
type Delegate[T any] interface {
	RenderPage(records []T, page pagination.State)
	RenderState(state DisplayState, message string)
}

// Fetcher loads one page from the backend.
type Fetcher[T any] func(ctx context.Context, limit, offset int) (models.Page[T], error)

// ErrNoSource is returned by Load before a fetcher is bound.
var ErrNoSource = errors.New("list has no source")

// Snapshot is a consistent copy of a controller's view state.
type Snapshot[T any] struct {
	Records []T
	Page    pagination.State
	Display DisplayState
	Message string
}

// Controller owns one cursor and the last page fetched through it.
//
// Every Load is tagged with a sequence number and the offset it was issued
// for. A response is applied only if both still match, so a slow response
// never overwrites a newer one.
type Controller[T any] struct {
	logger *slog.Logger

	mu       sync.Mutex
	name     string
	fetch    Fetcher[T]
	delegate Delegate[T]
	page     pagination.State
	records  []T
	display  DisplayState
	message  string
	seq      uint64
}

// NewController builds a controller named for error messages (for example
// "reconciliation summaries"). fetch and delegate may be bound later.
func NewController[T any](name string, limit int, fetch Fetcher[T], delegate Delegate[T], logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = logging.Discard()
	}
	if delegate == nil {
		delegate = Discard[T]{}
	}
	return &Controller[T]{
		logger:   logger.With("list", name),
		name:     name,
		fetch:    fetch,
		delegate: delegate,
		page:     pagination.New(limit),
	}
}

// Load fetches the page at the current cursor. Transport and shape failures
// come back as *models.LoadError and leave the previous page and totals
// in place. A response made stale by a newer Load or a rebind is dropped
// and Load returns nil.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.fetch == nil {
		c.mu.Unlock()
		return ErrNoSource
	}
	c.seq++
	seq, offset, limit := c.seq, c.page.Offset, c.page.Limit
	fetch, delegate, name := c.fetch, c.delegate, c.name
	c.display, c.message = StateLoading, ""
	c.mu.Unlock()

	delegate.RenderState(StateLoading, "")

	result, err := fetch(ctx, limit, offset)

	c.mu.Lock()
	if seq != c.seq || offset != c.page.Offset {
		c.mu.Unlock()
		c.logger.Debug("discarding stale page", "offset", offset, "seq", seq)
		return nil
	}
	if err != nil {
		msg := fmt.Sprintf("Error loading %s. Please try again.", name)
		c.display, c.message = StateError, msg
		c.mu.Unlock()
		c.logger.Warn("list load failed", "offset", offset, "error", err)
		delegate.RenderState(StateError, msg)
		return &models.LoadError{Message: msg, Err: err}
	}

	c.records = result.Data
	c.page.TotalCount = result.TotalCount
	display := StatePopulated
	if len(result.Data) == 0 {
		display = StateEmpty
	}
	c.display = display
	records, page := c.records, c.page
	c.mu.Unlock()

	delegate.RenderPage(records, page)
	delegate.RenderState(display, "")
	return nil
}

// Next moves one page forward and loads it. It reports false, without a
// fetch, when already on the last page.
func (c *Controller[T]) Next(ctx context.Context) (bool, error) {
	c.mu.Lock()
	moved := c.page.GoNext()
	c.mu.Unlock()
	if !moved {
		return false, nil
	}
	return true, c.Load(ctx)
}

// Previous moves one page back and loads it. It reports false, without a
// fetch, when already on the first page.
func (c *Controller[T]) Previous(ctx context.Context) (bool, error) {
	c.mu.Lock()
	moved := c.page.GoPrevious()
	c.mu.Unlock()
	if !moved {
		return false, nil
	}
	return true, c.Load(ctx)
}

// Rewind returns the cursor to the first page and invalidates in-flight loads.
func (c *Controller[T]) Rewind() {
	c.mu.Lock()
	c.page.Reset()
	c.seq++
	c.mu.Unlock()
}

// Rebind switches the controller to a new source. The cursor goes back to
// the first page, the held page is dropped and in-flight loads are invalidated.
func (c *Controller[T]) Rebind(name string, fetch Fetcher[T], delegate Delegate[T]) {
	if delegate == nil {
		delegate = Discard[T]{}
	}
	c.mu.Lock()
	c.name, c.fetch, c.delegate = name, fetch, delegate
	c.page.Reset()
	c.records = nil
	c.display, c.message = StateIdle, ""
	c.seq++
	c.mu.Unlock()
}

// Snapshot returns the current view state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		Records: c.records,
		Page:    c.page,
		Display: c.display,
		Message: c.message,
	}
}

func (c *Controller[T]) Page() pagination.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Discard is a Delegate that renders nothing.
type Discard[T any] struct{}

func (Discard[T]) RenderPage([]T, pagination.State) {}
func (Discard[T]) RenderState(DisplayState, string) {}
