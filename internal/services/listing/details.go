package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"reconciliation-portal/internal/models"
)

// DetailFetcher loads one page of a run's unmatched records.
type DetailFetcher func(ctx context.Context, taskID string, limit, offset int) (models.Page[models.DetailRecord], error)

// Variant is the per-category strategy of the details view: which endpoint
// to read and which delegate renders the rows.
type Variant struct {
	Category models.Category
	Name     string
	Fetch    DetailFetcher
	Delegate Delegate[models.DetailRecord]
}

// AsDetails adapts a typed list call to a DetailFetcher.
func AsDetails[R models.DetailRecord](fetch func(ctx context.Context, taskID string, limit, offset int) (models.Page[R], error)) DetailFetcher {
	return func(ctx context.Context, taskID string, limit, offset int) (models.Page[models.DetailRecord], error) {
		page, err := fetch(ctx, taskID, limit, offset)
		if err != nil {
			return models.Page[models.DetailRecord]{}, err
		}
		records := make([]models.DetailRecord, len(page.Data))
		for i, r := range page.Data {
			records[i] = r
		}
		return models.Page[models.DetailRecord]{Data: records, TotalCount: page.TotalCount}, nil
	}
}

// DetailsController is the drill-in list: one Controller re-bound on every
// selection.
type DetailsController struct {
	list     *Controller[models.DetailRecord]
	variants map[models.Category]Variant

	mu       sync.Mutex
	selector models.DetailSelector
}

func NewDetailsController(limit int, variants []Variant, logger *slog.Logger) *DetailsController {
	byCategory := make(map[models.Category]Variant, len(variants))
	for _, v := range variants {
		byCategory[v.Category] = v
	}
	return &DetailsController{
		list:     NewController[models.DetailRecord]("details", limit, nil, nil, logger),
		variants: byCategory,
	}
}

// Select drills into a run. The cursor is reset to the first page before
// the load, even when the same run was already paged forward.
func (d *DetailsController) Select(ctx context.Context, sel models.DetailSelector) error {
	if sel.TaskID == "" {
		return models.ValidationError("task id is required")
	}
	v, ok := d.variants[sel.Category]
	if !ok {
		return models.ValidationError(fmt.Sprintf("unknown category %q", sel.Category))
	}

	taskID := sel.TaskID
	fetch := func(ctx context.Context, limit, offset int) (models.Page[models.DetailRecord], error) {
		return v.Fetch(ctx, taskID, limit, offset)
	}

	d.mu.Lock()
	d.selector = sel
	d.list.Rebind(v.Name, fetch, v.Delegate)
	d.mu.Unlock()

	return d.list.Load(ctx)
}

// Selector returns the current drill-in, if any.
func (d *DetailsController) Selector() (models.DetailSelector, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selector, !d.selector.IsZero()
}

func (d *DetailsController) Load(ctx context.Context) error { return d.list.Load(ctx) }

func (d *DetailsController) Next(ctx context.Context) (bool, error) { return d.list.Next(ctx) }

func (d *DetailsController) Previous(ctx context.Context) (bool, error) { return d.list.Previous(ctx) }

func (d *DetailsController) Snapshot() Snapshot[models.DetailRecord] { return d.list.Snapshot() }

// Clear drops the selection and its page.
func (d *DetailsController) Clear() {
	d.mu.Lock()
	d.selector = models.DetailSelector{}
	d.list.Rebind("details", nil, nil)
	d.mu.Unlock()
}
