package zoom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/helpgpt/plugin/meeting"
)

type staticTokens struct {
	token       string
	invalidated atomic.Int32
	err         error
}

func (s *staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

func (s *staticTokens) Invalidate() {
	s.invalidated.Add(1)
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestAdapter(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Adapter, *staticTokens, *recorder) {
	t.Helper()
	requests := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		requests.add(rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	tokens := &staticTokens{token: "zoom-token"}
	adapter := New(Config{
		BaseURL:    srv.URL,
		HostEmail:  "host@example.com",
		Location:   loc,
		HTTPClient: srv.Client(),
		Tokens:     tokens,
		Now:        func() time.Time { return time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC) },
	})
	return adapter, tokens, requests
}

func TestCreate(t *testing.T) {
	adapter, _, requests := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 81234567890, "topic": "Планёрка", "start_time": "2024-01-11T12:00:00Z",
			"duration": 60, "join_url": "https://zoom.us/j/81234567890", "password": "abc123"}`)
	})

	loc := adapter.location
	start := time.Date(2024, 1, 11, 15, 0, 0, 0, loc)
	record, err := adapter.Create(context.Background(), "Планёрка", start, 60)
	require.NoError(t, err)

	assert.Equal(t, "81234567890", record.ID)
	assert.Equal(t, "Планёрка", record.Topic)
	assert.Equal(t, "https://zoom.us/j/81234567890", record.JoinURL)
	assert.Equal(t, "abc123", record.Password)
	assert.Equal(t, Name, record.Provider)
	require.NotNil(t, record.StartTime)
	assert.True(t, start.Equal(*record.StartTime))
	assert.Equal(t, loc, record.StartTime.Location())

	require.Len(t, requests.all(), 1)
	req := requests.all()[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/users/host@example.com/meetings", req.Path)
	assert.Equal(t, "Bearer zoom-token", req.Auth)
	assert.Equal(t, "Планёрка", req.Body["topic"])
	assert.Equal(t, float64(2), req.Body["type"])
	assert.Equal(t, "2024-01-11T12:00:00Z", req.Body["start_time"])
	assert.Equal(t, float64(60), req.Body["duration"])
	assert.Equal(t, "Europe/Moscow", req.Body["timezone"])
	assert.Equal(t, map[string]any{"waiting_room": true}, req.Body["settings"])
}

func TestList(t *testing.T) {
	adapter, _, requests := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meetings": [
			{"id": 2, "topic": "Второй", "start_time": "2024-01-12T09:00:00Z", "duration": 30},
			{"id": 1, "topic": "Первый", "start_time": "2024-01-11T09:00:00Z", "duration": 60},
			{"id": 3, "topic": "Без времени"}
		]}`)
	})

	list, err := adapter.List(context.Background(), meeting.StatusUpcoming, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "2", list[1].ID)
	assert.Equal(t, "11.01.2024 12:00", list[0].StartTime.Format("02.01.2006 15:04"))

	req := requests.all()[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/users/host@example.com/meetings", req.Path)
	assert.Equal(t, "page_size=2&type=upcoming", req.Query)
}

func TestList_AllUsesScheduledType(t *testing.T) {
	adapter, _, requests := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meetings": []}`)
	})

	list, err := adapter.List(context.Background(), meeting.StatusAll, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "page_size=10&type=scheduled", requests.all()[0].Query)
}

func TestDelete(t *testing.T) {
	adapter, _, requests := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, adapter.Delete(context.Background(), "81234567890"))
	assert.Equal(t, http.MethodDelete, requests.all()[0].Method)
	assert.Equal(t, "/meetings/81234567890", requests.all()[0].Path)
}

func TestDeleteAndGet_NotFound(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code": 3001, "message": "Meeting does not exist"}`)
	})

	err := adapter.Delete(context.Background(), "42")
	var notFound *meeting.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "42", notFound.ID)

	_, err = adapter.Get(context.Background(), "42")
	require.True(t, errors.As(err, &notFound))
}

func TestGet(t *testing.T) {
	adapter, _, requests := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 42, "topic": "Ретро", "start_time": "2024-01-11T12:00:00Z", "duration": 45, "join_url": "https://zoom.us/j/42"}`)
	})

	record, err := adapter.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", record.ID)
	assert.Equal(t, 45, record.DurationMinutes)
	assert.Equal(t, "/meetings/42", requests.all()[0].Path)
}

func TestUpstreamErrorIsVerbatim(t *testing.T) {
	adapter, tokens, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code": 124, "message": "Invalid access token."}`)
	})

	_, err := adapter.List(context.Background(), meeting.StatusUpcoming, 5)
	var upstream *meeting.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Equal(t, `{"code": 124, "message": "Invalid access token."}`, upstream.Body)
	assert.Equal(t, int32(1), tokens.invalidated.Load())
}

func TestAuthErrorStopsRequest(t *testing.T) {
	adapter, tokens, requests := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	tokens.err = &meeting.AuthError{Provider: Name, Cause: errors.New("bad secret")}

	_, err := adapter.Create(context.Background(), "x", time.Now(), 60)
	var authErr *meeting.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Empty(t, requests.all())
}
