// Package apperr defines the typed errors shared across the application.
package apperr

import (
	"fmt"
	"strings"
)

// APIError represents a non-2xx response from the YNAB API.
type APIError struct {
	Status  int
	ID      string
	Name    string
	Detail  string
	RawBody string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ynab api error %d (%s): %s", e.Status, e.Name, e.Detail)
	}
	return fmt.Sprintf("ynab api error %d", e.Status)
}

// Retryable reports whether the request that produced this error may be
// retried: rate limiting and server-side failures, never other 4xx.
func (e *APIError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}

// NotFoundError represents a failed local lookup, such as resolving an
// entity name or activating an unknown budget. Alternatives carries the
// valid candidates so the caller can present them.
type NotFoundError struct {
	Kind         string // "budget", "account", "payee", "category", "staged change"
	Query        string
	Alternatives []string
	Suggestion   string // optional nearest-neighbor match
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s not found: %q", e.Kind, e.Query)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	if len(e.Alternatives) > 0 {
		fmt.Fprintf(&b, "; known: %s", strings.Join(e.Alternatives, ", "))
	}
	return b.String()
}

// ValidationError represents a caller-side precondition failure detected
// before any remote call or staged record is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}
