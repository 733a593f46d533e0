package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortMeetings(t *testing.T) {
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	t1, t2 := base, base.Add(time.Hour)

	list := []*MeetingRecord{
		{ID: "nil-a"},
		{ID: "second", StartTime: &t2},
		{ID: "first-a", StartTime: &t1},
		{ID: "nil-b"},
		{ID: "first-b", StartTime: &t1},
	}
	SortMeetings(list)

	var ids []string
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"first-a", "first-b", "second", "nil-a", "nil-b"}, ids)
}

func TestFilterMeetings(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Minute), now.Add(time.Minute)
	list := []*MeetingRecord{
		{ID: "past", StartTime: &past, Provider: "telemost"},
		{ID: "future", StartTime: &future, Provider: "telemost"},
		{ID: "zoom", StartTime: &future, Provider: "zoom"},
		{ID: "unknown", Provider: "telemost"},
	}

	tests := []struct {
		name string
		find *FindMeeting
		want []string
	}{
		{"nil find keeps everything", nil, []string{"past", "future", "zoom", "unknown"}},
		{"upcoming keeps unknown start", &FindMeeting{UpcomingOnly: true, Now: now}, []string{"future", "zoom", "unknown"}},
		{"provider", &FindMeeting{Provider: "telemost"}, []string{"past", "future", "unknown"}},
		{"limit", &FindMeeting{Limit: 2}, []string{"past", "future"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, m := range FilterMeetings(list, tt.find) {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_AppendMeetingRequiresID(t *testing.T) {
	s := New(nil, nil)
	_, err := s.AppendMeeting(context.Background(), &MeetingRecord{Topic: "no id"})
	require.Error(t, err)
}
