// Package calendar renders meetings as iCalendar data and mirrors them into a
// CalDAV calendar.
package calendar

import (
	"bytes"
	"net/url"
	"time"

	"github.com/emersion/go-ical"
	"github.com/pkg/errors"

	"github.com/hrygo/helpgpt/store"
)

const (
	// ProductID identifies the generator in every VCALENDAR.
	ProductID = "-//ISE//help-gpt//RU"
	// DefaultSummary is used for meetings without a topic.
	DefaultSummary = "Встреча"
	// DefaultDuration applies when a record carries no duration.
	DefaultDuration = 60 * time.Minute
)

// ContentType is the MIME type of rendered calendars.
const ContentType = "text/calendar; charset=utf-8"

// EventUID returns the stable UID of a meeting across renders.
func EventUID(m *store.MeetingRecord) string {
	provider := m.Provider
	if provider == "" {
		provider = "meeting"
	}
	return provider + "-" + m.ID + "@help-gpt"
}

// NewCalendar builds a single-event VCALENDAR for m. Meetings without a start
// time cannot be placed on a calendar and are rejected.
func NewCalendar(m *store.MeetingRecord, now time.Time) (*ical.Calendar, error) {
	if m.StartTime == nil {
		return nil, errors.Errorf("meeting %s has no start time", m.ID)
	}

	duration := time.Duration(m.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = DefaultDuration
	}
	summary := m.Topic
	if summary == "" {
		summary = DefaultSummary
	}
	start := m.StartTime.UTC()

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, EventUID(m))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(duration))
	event.Props.SetText(ical.PropSummary, summary)
	if m.JoinURL != "" {
		if u, err := url.Parse(m.JoinURL); err == nil {
			event.Props.SetURI(ical.PropURL, u)
		}
		event.Props.SetText(ical.PropLocation, m.JoinURL)
		event.Props.SetText(ical.PropDescription, "Ссылка на встречу: "+m.JoinURL)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}

// RenderICS encodes m as an .ics document.
func RenderICS(m *store.MeetingRecord, now time.Time) ([]byte, error) {
	cal, err := NewCalendar(m, now)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, errors.Wrap(err, "failed to encode calendar")
	}
	return buf.Bytes(), nil
}

// AttachmentName is the download file name for m.
func AttachmentName(m *store.MeetingRecord) string {
	return "meeting-" + m.ID + ".ics"
}
