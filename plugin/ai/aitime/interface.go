// Package aitime resolves Russian natural-language date and time phrases
// ("завтра в 15 00", "послезавтра к 14ч", "31.12 в 9") into absolute instants.
package aitime

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeService defines the time resolution service consumed by the intent router.
type TimeService interface {
	// Resolve turns free text into an absolute instant in the service timezone.
	// Returns a *ParseError when neither a date nor a time could be found.
	Resolve(ctx context.Context, input string) (ParsedTime, error)

	// Now returns the current instant in the service timezone.
	Now() time.Time

	// Location returns the service timezone.
	Location() *time.Location
}

// ParsedTime is the result of resolving a phrase. It is never persisted.
type ParsedTime struct {
	Instant         time.Time `json:"instant"`
	HadExplicitDate bool      `json:"had_explicit_date"`
	HadExplicitTime bool      `json:"had_explicit_time"`
}

// ErrUnresolved is the sentinel wrapped by every *ParseError.
var ErrUnresolved = errors.New("unable to resolve date/time")

// ParseError reports text that produced no usable date, time or topic.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnresolved, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrUnresolved
}
