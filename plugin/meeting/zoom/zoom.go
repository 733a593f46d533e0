// Package zoom is the meeting adapter for the Zoom REST API. Zoom stores the full
// meeting metadata, so every operation is answered from the remote API.
package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/server/timezone"
	"github.com/hrygo/helpgpt/store"
)

// Name is the provider name.
const Name = "zoom"

const (
	// DefaultBaseURL is the Zoom REST API root.
	DefaultBaseURL = "https://api.zoom.us/v2"
	// DefaultTokenURL is the Zoom OAuth token endpoint.
	DefaultTokenURL = "https://zoom.us/oauth/token"
	// GrantType is the server-to-server OAuth grant used by Zoom.
	GrantType = "account_credentials"

	scheduledMeeting = 2
	maxPageSize      = 300
)

// Config configures the Zoom adapter.
type Config struct {
	BaseURL    string
	HostEmail  string
	Location   *time.Location
	HTTPClient *http.Client
	Tokens     meeting.TokenSource
	// Now is the clock used for created_at. Defaults to time.Now.
	Now func() time.Time
}

// Adapter implements meeting.Provider for Zoom.
type Adapter struct {
	client    *meeting.Client
	tokens    meeting.TokenSource
	hostEmail string
	location  *time.Location
	now       func() time.Time
}

// New creates a Zoom adapter.
func New(config Config) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.HostEmail == "" {
		config.HostEmail = "me"
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
		tokens:    config.Tokens,
		hostEmail: config.HostEmail,
		location:  config.Location,
		now:       config.Now,
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
	return "Bearer " + tok, nil
}

func (a *Adapter) Name() string {
	return Name
}

type createRequest struct {
	Topic     string          `json:"topic"`
	Type      int             `json:"type"`
	StartTime string          `json:"start_time"`
	Duration  int             `json:"duration"`
	Timezone  string          `json:"timezone"`
	Settings  meetingSettings `json:"settings"`
}

type meetingSettings struct {
	WaitingRoom bool `json:"waiting_room"`
}

type zoomMeeting struct {
	ID        json.Number `json:"id"`
	Topic     string      `json:"topic"`
	StartTime string      `json:"start_time"`
	Duration  int         `json:"duration"`
	JoinURL   string      `json:"join_url"`
	Password  string      `json:"password"`
	CreatedAt string      `json:"created_at"`
}

type listResponse struct {
	Meetings []zoomMeeting `json:"meetings"`
}

func (a *Adapter) Create(ctx context.Context, topic string, start time.Time, durationMinutes int) (*store.MeetingRecord, error) {
	req := createRequest{
		Topic:     topic,
		Type:      scheduledMeeting,
		StartTime: timezone.FormatProviderUTC(start),
		Duration:  durationMinutes,
		Timezone:  a.location.String(),
		Settings:  meetingSettings{WaitingRoom: true},
	}

	var resp zoomMeeting
	if err := a.do(ctx, http.MethodPost, "/users/"+url.PathEscape(a.hostEmail)+"/meetings", nil, req, &resp); err != nil {
		return nil, err
	}

	record := a.toRecord(resp)
	// Zoom echoes the start time, but fall back to the requested one.
	if record.StartTime == nil {
		s := start
		record.StartTime = &s
	}
	if record.Topic == "" {
		record.Topic = topic
	}
	if record.DurationMinutes == 0 {
		record.DurationMinutes = durationMinutes
	}
	return record, nil
}

func (a *Adapter) List(ctx context.Context, status meeting.Status, limit int) ([]*store.MeetingRecord, error) {
	if limit <= 0 {
		limit = meeting.DefaultListLimit
	}
	listType := "upcoming"
	if status == meeting.StatusAll {
		listType = "scheduled"
	}
	query := url.Values{
		"type":      {listType},
		"page_size": {strconv.Itoa(min(limit, maxPageSize))},
	}

	var resp listResponse
	if err := a.do(ctx, http.MethodGet, "/users/"+url.PathEscape(a.hostEmail)+"/meetings", query, nil, &resp); err != nil {
		return nil, err
	}

	list := make([]*store.MeetingRecord, 0, len(resp.Meetings))
	for _, m := range resp.Meetings {
		list = append(list, a.toRecord(m))
	}
	store.SortMeetings(list)
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (a *Adapter) Delete(ctx context.Context, id string) error {
	err := a.do(ctx, http.MethodDelete, "/meetings/"+url.PathEscape(id), nil, nil, nil)
	if meeting.IsStatus(err, http.StatusNotFound) {
		return &meeting.NotFoundError{Provider: Name, ID: id}
	}
	return err
}

func (a *Adapter) Get(ctx context.Context, id string) (*store.MeetingRecord, error) {
	var resp zoomMeeting
	err := a.do(ctx, http.MethodGet, "/meetings/"+url.PathEscape(id), nil, nil, &resp)
	if meeting.IsStatus(err, http.StatusNotFound) {
		return nil, &meeting.NotFoundError{Provider: Name, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return a.toRecord(resp), nil
}

func (a *Adapter) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	err := a.client.Do(ctx, method, path, query, in, out)
	if err != nil && a.tokens != nil {
		meeting.InvalidateOnUnauthorized(a.tokens, err)
	}
	return err
}

func (a *Adapter) toRecord(m zoomMeeting) *store.MeetingRecord {
	record := &store.MeetingRecord{
		ID:              m.ID.String(),
		Topic:           m.Topic,
		DurationMinutes: m.Duration,
		JoinURL:         m.JoinURL,
		Provider:        Name,
		Password:        m.Password,
		CreatedAt:       a.now(),
	}
	if m.StartTime != "" {
		if t, err := timezone.ParseProviderTime(m.StartTime); err == nil {
			local := t.In(a.location)
			record.StartTime = &local
		}
	}
	if m.CreatedAt != "" {
		if t, err := timezone.ParseProviderTime(m.CreatedAt); err == nil {
			record.CreatedAt = t
		}
	}
	return record
}

var _ meeting.Provider = (*Adapter)(nil)
