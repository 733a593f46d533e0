package store

import (
	"context"
	"time"
)

// Driver is an interface for store driver.
// It contains all methods that store driver should implement.
type Driver interface {
	Close() error

	// AppendMeeting inserts the record or replaces the one with the same id.
	AppendMeeting(ctx context.Context, create *MeetingRecord) (*MeetingRecord, error)
	// ListMeetings returns records sorted by start time, unknown start times last.
	ListMeetings(ctx context.Context, find *FindMeeting) ([]*MeetingRecord, error)
	// GetMeeting returns ErrMeetingNotFound for unknown ids.
	GetMeeting(ctx context.Context, id string) (*MeetingRecord, error)
	// RemoveMeeting reports whether a record was removed.
	RemoveMeeting(ctx context.Context, id string) (bool, error)
	// PruneMeetings removes records that start before the given instant and returns how many.
	PruneMeetings(ctx context.Context, before time.Time) (int, error)
}
