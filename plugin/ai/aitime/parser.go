package aitime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/helpgpt/server/timezone"
)

// Patterns for date/time extraction. They run on normalized text.
var (
	clockPattern       = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	numericDatePattern = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{4}))?`)
	monthDatePattern   = regexp.MustCompile(`(\d{1,2})\s+([а-яё]+)(?:\s+(\d{4}))?`)
)

// DefaultHour is used when only a date was given.
const DefaultHour = 10

// relDateOffsets is ordered: "послезавтра" contains "завтра".
var relDateOffsets = []struct {
	keyword string
	offset  int
}{
	{"послезавтра", 2},
	{"завтра", 1},
	{"сегодня", 0},
}

// monthStems maps Russian month stems to months. "март" precedes the short "ма" forms.
var monthStems = []struct {
	stem  string
	month time.Month
}{
	{"январ", time.January},
	{"феврал", time.February},
	{"март", time.March},
	{"апрел", time.April},
	{"май", time.May},
	{"мая", time.May},
	{"мае", time.May},
	{"июн", time.June},
	{"июл", time.July},
	{"август", time.August},
	{"сентябр", time.September},
	{"октябр", time.October},
	{"ноябр", time.November},
	{"декабр", time.December},
}

func monthFromWord(word string) time.Month {
	for _, m := range monthStems {
		if strings.HasPrefix(word, m.stem) {
			return m.month
		}
	}
	return 0
}

type dateSource int

const (
	dateNone dateSource = iota
	dateRelative
	dateNumeric
	dateMonthName
)

type dateMatch struct {
	day          time.Time // midnight in the target location
	source       dateSource
	yearExplicit bool
}

// Resolve turns text into an absolute instant in loc, relative to now.
// It is a pure function: the same text and now always give the same result.
func Resolve(text string, loc *time.Location, now time.Time) (ParsedTime, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	s := normalize(text)

	date := extractDate(s, now)
	h, m, timeFound := extractTime(s)

	switch {
	case date.source != dateNone && timeFound:
		instant := atClock(date.day, h, m)
		// A bare DD.MM refers to its next occurrence.
		if date.source == dateNumeric && !date.yearExplicit && instant.Before(now) {
			instant = instant.AddDate(1, 0, 0)
		}
		return ParsedTime{Instant: instant, HadExplicitDate: true, HadExplicitTime: true}, nil

	case date.source != dateNone:
		return ParsedTime{Instant: atClock(date.day, DefaultHour, 0), HadExplicitDate: true}, nil

	case timeFound:
		instant := atClock(now, h, m)
		if !instant.After(now) {
			instant = atClock(now.AddDate(0, 0, 1), h, m)
		}
		return ParsedTime{Instant: instant, HadExplicitTime: true}, nil
	}

	return ParsedTime{}, &ParseError{Input: text}
}

func atClock(day time.Time, h, m int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// extractDate stops at the first rule that yields a valid calendar date.
func extractDate(s string, now time.Time) dateMatch {
	for _, rel := range relDateOffsets {
		if strings.Contains(s, rel.keyword) {
			day := timezone.StartOfDay(now.AddDate(0, 0, rel.offset), now.Location())
			return dateMatch{day: day, source: dateRelative}
		}
	}

	for _, m := range numericDatePattern.FindAllStringSubmatchIndex(s, -1) {
		if digitBefore(s, m[0]) || digitAfter(s, m[1]) {
			continue
		}
		d, _ := strconv.Atoi(s[m[2]:m[3]])
		mo, _ := strconv.Atoi(s[m[4]:m[5]])
		year, explicit := now.Year(), false
		if m[6] >= 0 {
			year, _ = strconv.Atoi(s[m[6]:m[7]])
			explicit = true
		}
		if day, ok := calendarDate(year, time.Month(mo), d, now.Location()); ok {
			return dateMatch{day: day, source: dateNumeric, yearExplicit: explicit}
		}
	}

	for _, m := range monthDatePattern.FindAllStringSubmatchIndex(s, -1) {
		if digitBefore(s, m[0]) || runeBefore(s, m[0]) == ':' {
			continue
		}
		month := monthFromWord(s[m[4]:m[5]])
		if month == 0 {
			continue
		}
		d, _ := strconv.Atoi(s[m[2]:m[3]])
		year, explicit := now.Year(), false
		if m[6] >= 0 {
			year, _ = strconv.Atoi(s[m[6]:m[7]])
			explicit = true
		}
		if day, ok := calendarDate(year, month, d, now.Location()); ok {
			return dateMatch{day: day, source: dateMonthName, yearExplicit: explicit}
		}
	}

	return dateMatch{}
}

// calendarDate rejects dates that time.Date would silently normalize (31.02).
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// extractTime tries HH:MM, then "HH ч", then a bare "в HH".
func extractTime(s string) (hour, minute int, found bool) {
	for _, m := range clockPattern.FindAllStringSubmatchIndex(s, -1) {
		if digitBefore(s, m[0]) || digitAfter(s, m[1]) {
			continue
		}
		h, _ := strconv.Atoi(s[m[2]:m[3]])
		mm, _ := strconv.Atoi(s[m[4]:m[5]])
		if validClock(h, mm) {
			return h, mm, true
		}
	}

	for _, m := range hourSuffixPattern.FindAllStringSubmatchIndex(s, -1) {
		if h, ok := suffixHour(s, m); ok {
			return h, 0, true
		}
	}

	for _, m := range bareHourPattern.FindAllStringSubmatchIndex(s, -1) {
		if digitAfter(s, m[7]) {
			continue
		}
		h, _ := strconv.Atoi(s[m[6]:m[7]])
		if validClock(h, 0) {
			return h, 0, true
		}
	}

	return 0, 0, false
}
