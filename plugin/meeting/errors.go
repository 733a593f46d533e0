package meeting

import (
	"fmt"

	"github.com/hrygo/helpgpt/store"
)

// AuthError reports a failed credential exchange or a missing credential.
type AuthError struct {
	Provider string
	Cause    error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: authorization failed: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("%s: authorization failed", e.Provider)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// UpstreamError reports a non-2xx provider response or a transport failure.
// Status is zero when no response was received. Body is the response body verbatim.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
	Cause    error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// NotFoundError reports a meeting id unknown to the provider.
type NotFoundError struct {
	Provider string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: meeting %s not found", e.Provider, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrMeetingNotFound
}

// StoreError reports an unreadable, corrupt or unwritable local store.
type StoreError struct {
	Op    string
	Path  string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("meeting store %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Provider operations, as reported in partial successes and metrics.
const (
	OpCreate = "create"
	OpDelete = "delete"
)

// PartialSuccessError reports a remote operation that succeeded while the
// matching local store update failed. An empty Op means OpCreate.
type PartialSuccessError struct {
	Op      string
	Meeting *store.MeetingRecord
	Cause   error
}

func (e *PartialSuccessError) Error() string {
	if e.Op == OpDelete {
		return fmt.Sprintf("meeting %s deleted but not removed locally: %v", e.Meeting.ID, e.Cause)
	}
	return fmt.Sprintf("meeting %s created but not saved locally: %v", e.Meeting.ID, e.Cause)
}

func (e *PartialSuccessError) Unwrap() error {
	return e.Cause
}
