package models

import "time"

// UploadEndpointBundle is issued once per workflow cycle. Both upload slots
// read it; it is replaced wholesale, never edited in place.
type UploadEndpointBundle struct {
	TransactionURL   string    `json:"transactionUrl"`
	BankStatementURL string    `json:"bankStatementUrl"`
	TaskID           string    `json:"taskID"`
	ExpiresAt        time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the bundle carries an expiry that has passed.
func (b UploadEndpointBundle) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}
