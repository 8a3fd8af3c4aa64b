package models

import "encoding/json"

// TaskRequest starts a reconciliation run over the two uploaded files.
// Dates are absolute ISO-8601 timestamps and are left out when not chosen.
type TaskRequest struct {
	TaskID    string `json:"taskID"`
	BankName  string `json:"bankName"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// Ack is the backend's answer to a submission. Only Message is read; the
// rest is kept as returned.
type Ack struct {
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}
