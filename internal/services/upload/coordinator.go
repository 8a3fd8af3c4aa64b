package upload

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/models"
)

// EndpointSource issues upload endpoint bundles.
type EndpointSource interface {
	FetchEndpoints(ctx context.Context) (models.UploadEndpointBundle, error)
}

// Coordinator owns the two upload slots and the bundle they upload to.
// IsReady gates task submission only; either slot may be retried at any time.
type Coordinator struct {
	endpoints EndpointSource
	slots     map[Kind]*Slot
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	bundle   *models.UploadEndpointBundle
	onChange func(SlotState, bool)
	onProg   func(SlotState)
}

func NewCoordinator(endpoints EndpointSource, transport Transport, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Coordinator{
		endpoints: endpoints,
		slots:     make(map[Kind]*Slot, len(Kinds)),
		logger:    logger,
		now:       time.Now,
	}
	for _, kind := range Kinds {
		slot := NewSlot(kind, transport, logger)
		slot.observe(c.slotChanged, c.slotProgress)
		c.slots[kind] = slot
	}
	return c
}

// OnChange registers fn to run after every slot transition with the
// recomputed readiness.
func (c *Coordinator) OnChange(fn func(state SlotState, ready bool)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// OnProgress registers fn to receive byte progress of in-flight uploads.
func (c *Coordinator) OnProgress(fn func(state SlotState)) {
	c.mu.Lock()
	c.onProg = fn
	c.mu.Unlock()
}

// Initialize fetches a fresh bundle. On failure the coordinator has no bundle
// until Initialize succeeds; there is no automatic retry.
func (c *Coordinator) Initialize(ctx context.Context) error {
	bundle, err := c.endpoints.FetchEndpoints(ctx)
	if err != nil {
		c.mu.Lock()
		c.bundle = nil
		c.mu.Unlock()
		c.logger.Error("failed to get upload URLs", "error", err)
		return &models.EndpointUnavailableError{Err: errors.Wrap(err, "fetch upload endpoints")}
	}

	c.mu.Lock()
	c.bundle = &bundle
	c.mu.Unlock()
	c.logger.Info("upload URLs received", "task_id", bundle.TaskID)
	return nil
}

// UploadTo uploads file through the slot for kind.
func (c *Coordinator) UploadTo(ctx context.Context, kind Kind, file File) (string, error) {
	slot, ok := c.slots[kind]
	if !ok {
		return "", errors.Wrapf(models.ErrEndpointMissing, "unknown slot %q", kind)
	}

	bundle, ok := c.Bundle()
	if !ok {
		return "", errors.Wrap(models.ErrEndpointUnavailable, "no bundle, initialize again")
	}
	if bundle.Expired(c.now()) {
		return "", errors.Wrapf(models.ErrEndpointUnavailable, "upload URLs expired at %s, initialize again", bundle.ExpiresAt.Format(time.RFC3339))
	}

	target := bundle.TransactionURL
	if kind == KindBankStatement {
		target = bundle.BankStatementURL
	}
	if target == "" {
		return "", errors.Wrapf(models.ErrEndpointMissing, "no %s upload URL in bundle", kind.Label())
	}
	return slot.Begin(ctx, target, file)
}

// IsReady is true iff both slots have succeeded. It reads last-known status
// and is safe to call while uploads are in flight.
func (c *Coordinator) IsReady() bool {
	for _, slot := range c.slots {
		if slot.State().Status != StatusSucceeded {
			return false
		}
	}
	return true
}

// Reset returns both slots to Idle and drops the bundle. Follow with Initialize.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.bundle = nil
	c.mu.Unlock()
	for _, kind := range Kinds {
		c.slots[kind].Reset()
	}
}

// Bundle returns the current bundle, if any.
func (c *Coordinator) Bundle() (models.UploadEndpointBundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bundle == nil {
		return models.UploadEndpointBundle{}, false
	}
	return *c.bundle, true
}

func (c *Coordinator) Slot(kind Kind) SlotState {
	slot, ok := c.slots[kind]
	if !ok {
		return SlotState{Kind: kind}
	}
	return slot.State()
}

func (c *Coordinator) slotChanged(state SlotState) {
	c.mu.RLock()
	fn := c.onChange
	c.mu.RUnlock()
	if fn != nil {
		fn(state, c.IsReady())
	}
}

func (c *Coordinator) slotProgress(state SlotState) {
	c.mu.RLock()
	fn := c.onProg
	c.mu.RUnlock()
	if fn != nil {
		fn(state)
	}
}
