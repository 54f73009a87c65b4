package api

import (
	"errors"
	"fmt"
	"net/http"

	"tableflip.dev/agenda/pkg/entity"
)

// TransportError is a network or HTTP failure. Status is zero when no
// response arrived.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("api: %s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: status %d", e.Op, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable is false for client errors other than 408 and 429. A request the
// server rejected as malformed or unauthorized fails the same way again.
func (e *TransportError) Retryable() bool {
	switch {
	case e.Status < http.StatusBadRequest:
		return true
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	}
	return e.Status >= http.StatusInternalServerError
}

// NotFoundError reports that the target of a request no longer exists.
type NotFoundError struct {
	Resource string
	ID       entity.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("api: %s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) NotFound() bool  { return true }
func (e *NotFoundError) Retryable() bool { return false }

// UsageLimitError is returned by the subtask generator once the account's
// allowance is used up. Message is meant for the user.
type UsageLimitError struct {
	Message string
}

func (e *UsageLimitError) Error() string {
	if e.Message == "" {
		return "api: usage limit reached"
	}
	return "api: usage limit reached: " + e.Message
}

func (e *UsageLimitError) Retryable() bool { return false }

func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsUsageLimit(err error) bool {
	var ul *UsageLimitError
	return errors.As(err, &ul)
}
