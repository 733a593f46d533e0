package calendar

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/helpgpt/plugin/ai/timeout"
	"github.com/hrygo/helpgpt/store"
)

// DefaultCalDAVURL is the Yandex Calendar CalDAV endpoint.
const DefaultCalDAVURL = "https://caldav.yandex.ru"

// ErrNoCalendars is returned when the account has no calendar collections.
var ErrNoCalendars = errors.New("caldav: account has no calendars")

// CalDAVConfig configures the CalDAV mirror.
type CalDAVConfig struct {
	URL      string
	User     string
	Password string
	// CalendarName selects a calendar by display name. The first calendar is
	// used when it is empty or matches nothing.
	CalendarName string
	HTTPClient   *http.Client
	Now          func() time.Time
}

// CalDAVMirror creates calendar events for newly created meetings.
type CalDAVMirror struct {
	client       *caldav.Client
	calendarName string
	now          func() time.Time

	mu           sync.Mutex
	calendarPath string
}

// NewCalDAVMirror creates a CalDAV mirror. No request is made until the first mirror.
func NewCalDAVMirror(config CalDAVConfig) (*CalDAVMirror, error) {
	if config.URL == "" {
		config.URL = DefaultCalDAVURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: timeout.CalDAVTimeout}
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	httpClient := webdav.HTTPClientWithBasicAuth(config.HTTPClient, config.User, config.Password)
	client, err := caldav.NewClient(httpClient, strings.TrimRight(config.URL, "/")+"/")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create caldav client")
	}
	return &CalDAVMirror{
		client:       client,
		calendarName: strings.TrimSpace(config.CalendarName),
		now:          config.Now,
	}, nil
}

// MirrorMeeting stores m as a new event in the selected calendar.
func (c *CalDAVMirror) MirrorMeeting(ctx context.Context, m *store.MeetingRecord) error {
	cal, err := NewCalendar(m, c.now())
	if err != nil {
		return err
	}
	calendarPath, err := c.ensureCalendar(ctx)
	if err != nil {
		return err
	}

	objectPath := path.Join(calendarPath, shortuuid.New()+".ics")
	if _, err := c.client.PutCalendarObject(ctx, objectPath, cal); err != nil {
		return errors.Wrapf(err, "failed to put calendar object %s", objectPath)
	}
	slog.Info("meeting mirrored to calendar",
		"provider", m.Provider,
		"id", m.ID,
		"path", objectPath)
	return nil
}

// ensureCalendar resolves and caches the target calendar collection.
func (c *CalDAVMirror) ensureCalendar(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calendarPath != "" {
		return c.calendarPath, nil
	}

	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to find current user principal")
	}
	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", errors.Wrap(err, "failed to find calendar home set")
	}
	calendars, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", errors.Wrap(err, "failed to list calendars")
	}

	selected, err := selectCalendar(calendars, c.calendarName)
	if err != nil {
		return "", err
	}
	c.calendarPath = selected
	return selected, nil
}

func selectCalendar(calendars []caldav.Calendar, name string) (string, error) {
	if len(calendars) == 0 {
		return "", ErrNoCalendars
	}
	if name != "" {
		for _, cal := range calendars {
			if strings.TrimSpace(cal.Name) == name {
				return cal.Path, nil
			}
		}
		slog.Warn("calendar not found by name, using the first one",
			"name", name,
			"path", calendars[0].Path)
	}
	return calendars[0].Path, nil
}
