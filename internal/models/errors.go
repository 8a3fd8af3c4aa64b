package models

import (
	"errors"
	"fmt"
)

// Every workflow failure is recoverable by retrying the user action.
// Local precondition failures never touch the network.
var (
	ErrMissingFile          = errors.New("no file selected")
	ErrEndpointUnavailable  = errors.New("upload endpoints unavailable")
	ErrEndpointMissing      = errors.New("upload endpoint missing")
	ErrUploadFailed         = errors.New("upload failed")
	ErrValidation           = errors.New("validation failed")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrSubmissionFailed     = errors.New("submission failed")
	ErrLoad                 = errors.New("load failed")
)

// UploadFailedError carries the transport diagnostics of a failed upload.
// StatusCode is 0 when no HTTP response was received.
type UploadFailedError struct {
	StatusCode int
	Body       string
}

func (e *UploadFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upload failed: %s", e.Body)
	}
	return fmt.Sprintf("upload failed with status: %d - %s", e.StatusCode, e.Body)
}

func (e *UploadFailedError) Is(target error) bool { return target == ErrUploadFailed }

type SubmissionFailedError struct {
	Reason string
}

func (e *SubmissionFailedError) Error() string {
	return "failed to initiate reconciliation: " + e.Reason
}

func (e *SubmissionFailedError) Is(target error) bool { return target == ErrSubmissionFailed }

// EndpointUnavailableError reports a failed bundle fetch. It matches
// ErrEndpointUnavailable and unwraps to the transport cause.
type EndpointUnavailableError struct {
	Err error
}

func (e *EndpointUnavailableError) Error() string {
	return ErrEndpointUnavailable.Error() + ": " + e.Err.Error()
}

func (e *EndpointUnavailableError) Unwrap() error { return e.Err }

func (e *EndpointUnavailableError) Is(target error) bool { return target == ErrEndpointUnavailable }

// LoadError replaces a list view's status region; the list keeps its last page.
type LoadError struct {
	Message string
	Err     error
}

func (e *LoadError) Error() string { return e.Message }

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ValidationError wraps ErrValidation with a message meant for the user.
func ValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
