package models

// Page is the envelope shared by every list endpoint.
type Page[T any] struct {
	Data       []T `json:"data"`
	TotalCount int `json:"totalCount"`
}
