// Package errors provides standardized error handling for the match service.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCitizenFetchFailed  ErrorCode = "CITIZEN_FETCH_FAILED"
	ErrCodeAddressLookupFailed ErrorCode = "ADDRESS_LOOKUP_FAILED"
	ErrCodeInvalidThreshold    ErrorCode = "INVALID_THRESHOLD"
	ErrCodeInvalidBirthDate    ErrorCode = "INVALID_BIRTH_DATE"
	ErrCodeScanCancelled       ErrorCode = "SCAN_CANCELLED"
	ErrCodeNoScanResult        ErrorCode = "NO_SCAN_RESULT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err is (or wraps) a StandardError with the code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// NewCitizenFetchError wraps a failed partition fetch. Retryable: the data
// store may recover, and a later scan can succeed.
func NewCitizenFetchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCitizenFetchFailed,
		Message:   "Failed to fetch citizen records",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAddressLookupError wraps a failed address-name resolution.
func NewAddressLookupError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAddressLookupFailed,
		Message:   "Failed to resolve address names",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidThresholdError rejects a confidence threshold outside [50, 95]
// or off the step of 5.
func NewInvalidThresholdError(threshold int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidThreshold,
		Message:   "Minimum confidence must be between 50 and 95 in steps of 5",
		Details:   fmt.Sprintf("got %d", threshold),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScanCancelledError marks a scan interrupted before completion. The
// partial result is discarded, never returned.
func NewScanCancelledError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScanCancelled,
		Message:   "Scan was cancelled before completion",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoScanResultError signals that a page or detail was requested before
// any scan completed.
func NewNoScanResultError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoScanResult,
		Message:   "No scan result is available",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
