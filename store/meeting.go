package store

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// ErrMeetingNotFound is returned when no record has the requested id.
var ErrMeetingNotFound = errors.New("meeting not found")

// MeetingRecord is the object representing a meeting created through a provider.
type MeetingRecord struct {
	ID              string     `json:"id"`
	Topic           string     `json:"topic"`
	StartTime       *time.Time `json:"start_time"`
	DurationMinutes int        `json:"duration_minutes"`
	JoinURL         string     `json:"join_url"`
	Provider        string     `json:"provider"`
	CreatedAt       time.Time  `json:"created_at"`

	// Password is shown once in the create reply and never persisted.
	Password string `json:"-"`
}

// FindMeeting is the find condition for meeting records.
type FindMeeting struct {
	// Provider restricts the result to one provider when set.
	Provider string

	// UpcomingOnly drops records that start before Now. Records without a start time are kept.
	UpcomingOnly bool
	Now          time.Time

	// Limit caps the result when positive.
	Limit int
}

// SortMeetings orders records by start time ascending with unknown start times last.
// The sort is stable, so records with equal start times keep insertion order.
func SortMeetings(list []*MeetingRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].StartTime, list[j].StartTime
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// FilterMeetings applies find to a sorted list and returns a new slice.
func FilterMeetings(list []*MeetingRecord, find *FindMeeting) []*MeetingRecord {
	if find == nil {
		find = &FindMeeting{}
	}
	result := make([]*MeetingRecord, 0, len(list))
	for _, m := range list {
		if find.Provider != "" && m.Provider != find.Provider {
			continue
		}
		if find.UpcomingOnly && m.StartTime != nil && m.StartTime.Before(find.Now) {
			continue
		}
		result = append(result, m)
		if find.Limit > 0 && len(result) == find.Limit {
			break
		}
	}
	return result
}

func (s *Store) AppendMeeting(ctx context.Context, create *MeetingRecord) (*MeetingRecord, error) {
	if create == nil || create.ID == "" {
		return nil, errors.New("meeting id is required")
	}
	return s.driver.AppendMeeting(ctx, create)
}

func (s *Store) ListMeetings(ctx context.Context, find *FindMeeting) ([]*MeetingRecord, error) {
	return s.driver.ListMeetings(ctx, find)
}

func (s *Store) GetMeeting(ctx context.Context, id string) (*MeetingRecord, error) {
	return s.driver.GetMeeting(ctx, id)
}

func (s *Store) RemoveMeeting(ctx context.Context, id string) (bool, error) {
	return s.driver.RemoveMeeting(ctx, id)
}

func (s *Store) PruneMeetings(ctx context.Context, before time.Time) (int, error) {
	return s.driver.PruneMeetings(ctx, before)
}
