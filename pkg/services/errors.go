package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Publish gate errors (400 Bad Request). These are structural, not
	// transient: no retry is offered because the graph itself must change.
	ErrMissingTrigger    = errors.New("campaign has no trigger node")
	ErrMultipleTriggers  = errors.New("campaign has more than one trigger node")
	ErrMissingConnection = errors.New("trigger has no connection selected")
	ErrMissingCategory   = errors.New("trigger has no category selected")
	ErrInvalidSchedule   = errors.New("scheduled date and time are missing or invalid")

	// Generic validation errors (400 Bad Request).
	ErrCampaignNameRequired = errors.New("campaign name is required")
	ErrInvalidGraph         = errors.New("campaign graph is structurally invalid")

	// Lifecycle conflicts (409 Conflict).
	ErrInvalidTransition   = errors.New("invalid campaign status transition")
	ErrCampaignNotEditable = errors.New("campaign graph can only be edited in draft status")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingTrigger) ||
		errors.Is(err, ErrMultipleTriggers) ||
		errors.Is(err, ErrMissingConnection) ||
		errors.Is(err, ErrMissingCategory) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrCampaignNameRequired) ||
		errors.Is(err, ErrInvalidGraph)
}

// IsConflictError checks if an error should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrCampaignNotEditable)
}
