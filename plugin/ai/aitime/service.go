package aitime

import (
	"context"
	"time"
)

// Service implements TimeService with rule-based parsing.
type Service struct {
	location *time.Location
	now      func() time.Time
}

// NewServiceWithClock creates a time service with a custom clock.
func NewServiceWithClock(loc *time.Location, now func() time.Time) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{location: loc, now: now}
}

// Resolve resolves input relative to the service clock.
func (s *Service) Resolve(_ context.Context, input string) (ParsedTime, error) {
	return Resolve(input, s.location, s.now())
}

// Now returns the current time in the service timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// Location returns the service timezone.
func (s *Service) Location() *time.Location {
	return s.location
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)
