// Package timezone provides timezone utilities for the HelpGPT application.
//
// Meetings are resolved and displayed in a single configured timezone and
// sent to providers in UTC.
package timezone

import (
	"fmt"
	"time"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC
)

// TimezoneEuropeMoscow is the default timezone of the assistant.
const TimezoneEuropeMoscow = "Europe/Moscow"

// Display and wire layouts.
const (
	// MeetingLayout is how meeting times are shown to users.
	MeetingLayout = "02.01.2006 15:04"

	// ProviderUTCLayout is the second-precision UTC layout providers accept.
	ProviderUTCLayout = "2006-01-02T15:04:05Z"
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Moscow").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// FormatMeetingTime formats t as DD.MM.YYYY HH:MM in tz.
func FormatMeetingTime(t time.Time, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	return t.In(tz).Format(MeetingLayout)
}

// FormatProviderUTC formats t as a second-precision UTC timestamp with a Z suffix.
func FormatProviderUTC(t time.Time) string {
	return t.UTC().Format(ProviderUTCLayout)
}

// ParseProviderTime parses a provider timestamp. Both the Z layout and full
// RFC 3339 with an offset are accepted.
func ParseProviderTime(s string) (time.Time, error) {
	if t, err := time.Parse(ProviderUTCLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid provider time %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}
