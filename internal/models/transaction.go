package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnmatchedTransaction struct {
	ID              RecordID        `json:"id"`
	TaskID          string          `json:"taskId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionTime time.Time       `json:"transactionTime"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
}

func (t UnmatchedTransaction) DetailID() RecordID { return t.ID }

func (t UnmatchedTransaction) Category() Category { return CategoryTransaction }
