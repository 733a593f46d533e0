// Package telemost is the meeting adapter for the Yandex Telemost API.
//
// Telemost conferences carry no topic, start time or duration, so the adapter
// keeps that metadata in the local meeting store. Listing and lookup are answered
// from the store; create and delete talk to the remote API first.
package telemost

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/store"
)

// Name is the provider name.
const Name = "telemost"

const (
	// DefaultBaseURL is the Telemost REST API root.
	DefaultBaseURL = "https://cloud-api.yandex.net/v1/telemost-api"
	// DefaultTokenURL is the Yandex OAuth token endpoint.
	DefaultTokenURL = "https://oauth.yandex.ru/token"

	// DefaultWaitingRoomLevel admits everyone with the link.
	DefaultWaitingRoomLevel = "PUBLIC"
)

// MeetingStore is the local record store the adapter persists metadata to.
type MeetingStore interface {
	AppendMeeting(ctx context.Context, create *store.MeetingRecord) (*store.MeetingRecord, error)
	ListMeetings(ctx context.Context, find *store.FindMeeting) ([]*store.MeetingRecord, error)
	GetMeeting(ctx context.Context, id string) (*store.MeetingRecord, error)
	RemoveMeeting(ctx context.Context, id string) (bool, error)
	PruneMeetings(ctx context.Context, before time.Time) (int, error)
}

// Config configures the Telemost adapter.
type Config struct {
	BaseURL          string
	WaitingRoomLevel string
	Location         *time.Location
	HTTPClient       *http.Client
	Tokens           meeting.TokenSource
	Store            MeetingStore
	// Now is the clock used for created_at and upcoming listings. Defaults to time.Now.
	Now func() time.Time
}

// Adapter implements meeting.Provider for Telemost.
type Adapter struct {
	client           *meeting.Client
	tokens           meeting.TokenSource
	store            MeetingStore
	waitingRoomLevel string
	location         *time.Location
	now              func() time.Time
}

// New creates a Telemost adapter.
func New(config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.WaitingRoomLevel == "" {
		config.WaitingRoomLevel = DefaultWaitingRoomLevel
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.HTTPClient == nil {
		config.HTTPClient = meeting.NewHTTPClient()
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	a := &Adapter{
		tokens:           config.Tokens,
		store:            config.Store,
		waitingRoomLevel: config.WaitingRoomLevel,
		location:         config.Location,
		now:              config.Now,
	}
	a.client = &meeting.Client{
		Provider:   Name,
		BaseURL:    config.BaseURL,
		HTTPClient: config.HTTPClient,
		Authorize:  a.authorize,
	}
	return a
}

func (a *Adapter) authorize(ctx context.Context) (string, error) {
	if a.tokens == nil {
		return "", &meeting.AuthError{Provider: Name}
	}
	tok, err := a.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	return "OAuth " + tok, nil
}

func (a *Adapter) Name() string {
	return Name
}

type createRequest struct {
	WaitingRoomLevel string `json:"waiting_room_level"`
}

type conference struct {
	ID      string `json:"id"`
	JoinURL string `json:"join_url"`
}

func (a *Adapter) Create(ctx context.Context, topic string, start time.Time, durationMinutes int) (*store.MeetingRecord, error) {
	var resp conference
	if err := a.do(ctx, http.MethodPost, "/conferences", createRequest{WaitingRoomLevel: a.waitingRoomLevel}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &meeting.UpstreamError{Provider: Name, Status: http.StatusOK, Cause: errors.New("conference id missing in response")}
	}

	startLocal := start.In(a.location)
	record := &store.MeetingRecord{
		ID:              resp.ID,
		Topic:           topic,
		StartTime:       &startLocal,
		DurationMinutes: durationMinutes,
		JoinURL:         resp.JoinURL,
		Provider:        Name,
		CreatedAt:       a.now(),
	}

	if _, err := a.store.AppendMeeting(ctx, record); err != nil {
		slog.Error("conference created but not persisted",
			"provider", Name,
			"id", record.ID,
			"error", err,
		)
		return record, &meeting.PartialSuccessError{Op: meeting.OpCreate, Meeting: record, Cause: err}
	}
	return record, nil
}

func (a *Adapter) List(ctx context.Context, status meeting.Status, limit int) ([]*store.MeetingRecord, error) {
	if limit <= 0 {
		limit = meeting.DefaultListLimit
	}
	find := &store.FindMeeting{Provider: Name, Limit: limit}

	if status != meeting.StatusAll {
		now := a.now()
		pruned, err := a.store.PruneMeetings(ctx, now)
		if err != nil {
			return nil, err
		}
		if pruned > 0 {
			slog.Debug("pruned past meetings", "provider", Name, "count", pruned)
		}
		find.UpcomingOnly = true
		find.Now = now
	}

	list, err := a.store.ListMeetings(ctx, find)
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		if m.StartTime != nil {
			local := m.StartTime.In(a.location)
			m.StartTime = &local
		}
	}
	return list, nil
}

// Delete removes the conference remotely and then the local record. A remote
// not-found clears any stale local record on a best-effort basis and counts
// as success.
func (a *Adapter) Delete(ctx context.Context, id string) error {
	err := a.do(ctx, http.MethodDelete, "/conferences/"+url.PathEscape(id), nil, nil)
	remoteMissing := meeting.IsStatus(err, http.StatusNotFound)
	if err != nil && !remoteMissing {
		return err
	}
	if remoteMissing {
		slog.Info("conference already gone remotely", "provider", Name, "id", id)
	}

	if _, err := a.store.RemoveMeeting(ctx, id); err != nil {
		if remoteMissing {
			slog.Warn("failed to remove stale meeting record",
				"provider", Name,
				"id", id,
				"error", err)
			return nil
		}
		return &meeting.PartialSuccessError{
			Op:      meeting.OpDelete,
			Meeting: &store.MeetingRecord{ID: id, Provider: Name},
			Cause:   err,
		}
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, id string) (*store.MeetingRecord, error) {
	record, err := a.store.GetMeeting(ctx, id)
	if errors.Is(err, store.ErrMeetingNotFound) {
		return nil, &meeting.NotFoundError{Provider: Name, ID: id}
	}
	if err != nil {
		return nil, err
	}
	if record.Provider != "" && record.Provider != Name {
		return nil, &meeting.NotFoundError{Provider: Name, ID: id}
	}
	if record.StartTime != nil {
		local := record.StartTime.In(a.location)
		record.StartTime = &local
	}
	return record, nil
}

func (a *Adapter) do(ctx context.Context, method, path string, in, out any) error {
	err := a.client.Do(ctx, method, path, nil, in, out)
	if err != nil && a.tokens != nil {
		meeting.InvalidateOnUnauthorized(a.tokens, err)
	}
	return err
}

var _ meeting.Provider = (*Adapter)(nil)
