package models

import (
	"fmt"
	"strings"
)

// Category selects which unmatched side of a run a detail view shows.
type Category string

const (
	CategoryTransaction Category = "transaction"
	CategoryBank        Category = "bank"
)

// ParseCategory accepts the CLI and wire spellings of a category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "transaction", "transactions", "tx":
		return CategoryTransaction, nil
	case "bank", "bank-entries", "bank-statement", "bank-statements":
		return CategoryBank, nil
	}
	return "", fmt.Errorf("unknown category %q (want transaction or bank)", s)
}

// Title is the heading used for a details view of this category.
func (c Category) Title() string {
	if c == CategoryBank {
		return "Unmatched Bank Statements"
	}
	return "Unmatched Transactions"
}

// DetailRecord is either an UnmatchedTransaction or an UnmatchedBankEntry.
type DetailRecord interface {
	DetailID() RecordID
	Category() Category
}

// DetailSelector is set on every drill-in.
type DetailSelector struct {
	TaskID   string
	Category Category
}

func (s DetailSelector) IsZero() bool {
	return s.TaskID == "" && s.Category == ""
}
