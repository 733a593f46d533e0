package router

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/store"
)

// MockProvider is an in-memory meeting.Provider for testing.
type MockProvider struct {
	ProviderName string
	// JoinURLPrefix is prepended to the id to build join links.
	JoinURLPrefix string
	// Err, when set, is returned by every operation.
	Err error
	// DeleteErrs overrides Delete per id.
	DeleteErrs map[string]error

	mu       sync.Mutex
	meetings []*store.MeetingRecord
	created  []CreateCall
	deleted  []string
	nextID   int
}

// CreateCall records the arguments of one Create call.
type CreateCall struct {
	Topic           string
	Start           time.Time
	DurationMinutes int
}

// NewMockProvider creates a new MockProvider.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProviderName:  name,
		JoinURLPrefix: "https://meet.example.com/j/",
		DeleteErrs:    make(map[string]error),
	}
}

// Seed adds meetings without recording calls.
func (m *MockProvider) Seed(meetings ...*store.MeetingRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings = append(m.meetings, meetings...)
}

// Created returns the recorded Create calls.
func (m *MockProvider) Created() []CreateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CreateCall(nil), m.created...)
}

// Deleted returns the ids passed to Delete.
func (m *MockProvider) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *MockProvider) Name() string {
	return m.ProviderName
}

func (m *MockProvider) Create(_ context.Context, topic string, start time.Time, durationMinutes int) (*store.MeetingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, CreateCall{Topic: topic, Start: start, DurationMinutes: durationMinutes})
	if m.Err != nil {
		return nil, m.Err
	}
	m.nextID++
	id := m.ProviderName + "-" + strconv.Itoa(m.nextID)
	record := &store.MeetingRecord{
		ID:              id,
		Topic:           topic,
		StartTime:       &start,
		DurationMinutes: durationMinutes,
		JoinURL:         m.JoinURLPrefix + id,
		Provider:        m.ProviderName,
		CreatedAt:       start,
	}
	m.meetings = append(m.meetings, record)
	return record, nil
}

func (m *MockProvider) List(_ context.Context, _ meeting.Status, limit int) ([]*store.MeetingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	list := append([]*store.MeetingRecord(nil), m.meetings...)
	store.SortMeetings(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockProvider) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	if err, ok := m.DeleteErrs[id]; ok {
		return err
	}
	if m.Err != nil {
		return m.Err
	}
	for i, rec := range m.meetings {
		if rec.ID == id {
			m.meetings = append(m.meetings[:i], m.meetings[i+1:]...)
			return nil
		}
	}
	return &meeting.NotFoundError{Provider: m.ProviderName, ID: id}
}

func (m *MockProvider) Get(_ context.Context, id string) (*store.MeetingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, rec := range m.meetings {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, &meeting.NotFoundError{Provider: m.ProviderName, ID: id}
}

var _ meeting.Provider = (*MockProvider)(nil)
