// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrCampaignNotFound indicates a campaign was not found by the given id.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrSessionNotFound indicates a session was not found by the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCampaignAlreadyExists indicates an id collision on insert.
	ErrCampaignAlreadyExists = errors.New("campaign already exists")
)

// CampaignError wraps campaign-related errors with operation context.
type CampaignError struct {
	Op         string // Operation being performed (e.g. "GetByID", "Save")
	CampaignID string
	Err        error
}

func (e *CampaignError) Error() string {
	return fmt.Sprintf("%s operation failed for campaign %s: %v", e.Op, e.CampaignID, e.Err)
}

func (e *CampaignError) Unwrap() error {
	return e.Err
}

func (e *CampaignError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewCampaignError creates a new campaign error with context.
func NewCampaignError(op, campaignID string, err error) *CampaignError {
	return &CampaignError{
		Op:         op,
		CampaignID: campaignID,
		Err:        err,
	}
}

// IsCampaignNotFound checks if an error indicates a missing campaign.
func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

// IsSessionNotFound checks if an error indicates a missing session.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
