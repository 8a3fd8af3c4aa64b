package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type UnmatchedBankEntry struct {
	ID        RecordID        `json:"id"`
	TaskID    string          `json:"taskId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference"`
	BankName  string          `json:"bankName"`
}

func (e UnmatchedBankEntry) DetailID() RecordID { return e.ID }

func (e UnmatchedBankEntry) Category() Category { return CategoryBank }
