package lifecycle

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a request exceeds the client's bounded wait.
// Callers can offer a retry because the condition is transient.
var ErrTimeout = errors.New("campaign service request timed out")

// APIError is a normalized non-2xx response. Detail carries the decoded
// server message when the body was a problem document, otherwise a generic
// fallback.
type APIError struct {
	Status int
	Type   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("campaign service error (%d): %s", e.Status, e.Detail)
	}

	return fmt.Sprintf("campaign service error (%d)", e.Status)
}

// QuotaError is a distinguished limit failure. It propagates unmodified so
// callers can route upgrade-required cases to a different flow than plain
// quota exhaustion.
type QuotaError struct {
	Message         string
	UpgradeRequired bool
}

func (e *QuotaError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "campaign quota exceeded"
}

// IsQuotaError reports whether err is a quota failure and returns it.
func IsQuotaError(err error) (*QuotaError, bool) {
	var quotaErr *QuotaError
	if errors.As(err, &quotaErr) {
		return quotaErr, true
	}

	return nil, false
}
