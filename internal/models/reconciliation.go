package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationSummary is one finished reconciliation run as listed by the backend.
type ReconciliationSummary struct {
	TaskID                 string          `json:"taskId"`
	StartDate              time.Time       `json:"startDate"`
	EndDate                time.Time       `json:"endDate"`
	TotalMatched           int             `json:"totalMatched"`
	TotalDiscrepancy       decimal.Decimal `json:"totalDiscrepancy"`
	TotalTransaction       int             `json:"totalTransaction,omitempty"`
	TotalUnmatchedInternal int             `json:"totalUnmatchedInternal"`
	TotalUnmatchedBank     int             `json:"totalUnmatchedBank"`
	CreatedAt              time.Time       `json:"createdAt,omitzero"`
	UpdatedAt              time.Time       `json:"updatedAt,omitzero"`
}
