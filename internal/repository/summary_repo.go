package repository

import (
	"context"
	"net/url"

	"reconciliation-portal/internal/models"
)

// SummaryRepository reads reconciliation runs and their unmatched records.
type SummaryRepository struct {
	api *APIClient
}

func NewSummaryRepository(api *APIClient) *SummaryRepository {
	return &SummaryRepository{api: api}
}

// ListSummaries returns one page of past runs.
func (r *SummaryRepository) ListSummaries(ctx context.Context, limit, offset int) (models.Page[models.ReconciliationSummary], error) {
	return getPage[models.ReconciliationSummary](ctx, r.api, PathSummaryList, limit, offset)
}

// ListUnmatchedTransactions returns internal transactions of a run that found no bank entry.
func (r *SummaryRepository) ListUnmatchedTransactions(ctx context.Context, taskID string, limit, offset int) (models.Page[models.UnmatchedTransaction], error) {
	return getPage[models.UnmatchedTransaction](ctx, r.api, DetailPath(taskID, models.CategoryTransaction), limit, offset)
}

// ListUnmatchedBankEntries returns bank statement lines of a run that found no transaction.
func (r *SummaryRepository) ListUnmatchedBankEntries(ctx context.Context, taskID string, limit, offset int) (models.Page[models.UnmatchedBankEntry], error) {
	return getPage[models.UnmatchedBankEntry](ctx, r.api, DetailPath(taskID, models.CategoryBank), limit, offset)
}

// DetailPath is the list path for one category of a run.
func DetailPath(taskID string, category models.Category) string {
	return pathSummaryPrefix + url.PathEscape(taskID) + "/" + string(category)
}
