// Package errors provides the coded error taxonomy shared by the intake
// engine and its collaborators.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationRejected ErrorCode = "VALIDATION_REJECTED"

	ErrCodeApplicationSaveFailed ErrorCode = "APPLICATION_SAVE_FAILED"

	ErrCodeRulesConfigInvalid ErrorCode = "RULES_CONFIG_INVALID"

	ErrCodeAIResponderFailed  ErrorCode = "AI_RESPONDER_FAILED"
	ErrCodeAIResponderTimeout ErrorCode = "AI_RESPONDER_TIMEOUT"

	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionStoreError ErrorCode = "SESSION_STORE_ERROR"
)

// StandardError represents a structured application error. For validation
// rejections Message carries the user-facing text verbatim.
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

// NewValidationRejected creates a non-retryable business-rule rejection.
// message is shown to the user as-is.
func NewValidationRejected(field, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationRejected,
		Message:   message,
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationSaveFailed creates a retryable persistence error.
func NewApplicationSaveFailed(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationSaveFailed,
		Message:   "Application could not be persisted",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRulesConfigInvalid creates a non-retryable configuration error.
func NewRulesConfigInvalid(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRulesConfigInvalid,
		Message:   "Finance rules configuration is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponderFailed creates a retryable external responder error.
func NewAIResponderFailed(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponderFailed,
		Message:   "AI responder call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponderTimeout creates a retryable timeout error.
func NewAIResponderTimeout() *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponderTimeout,
		Message:   "AI responder call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFound creates a non-retryable lookup error.
func NewSessionNotFound(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError creates a retryable session persistence error.
func NewSessionStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreError,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// HasCode reports whether err is (or wraps) a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
