package aitime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u202f", " ",
	"\u2009", " ",
	"\u2007", " ",
	"\t", " ",
)

var (
	// "17 00", "17-00", "17.00"
	separatedTimePattern = regexp.MustCompile(`(\d{1,2})([ \-.])(\d{2})`)
	// "14ч", "14 ч", "3 часа", "14 часов"
	hourSuffixPattern = regexp.MustCompile(`(\d{1,2})\s*ч(?:ас[а-я]*)?`)
	// "в 14", "к 9"
	bareHourPattern = regexp.MustCompile(`(^|\s)(в|к)\s+(\d{1,2})`)
)

// timePrepositions introduce a clock time, so "в 10.01" is a time, not the 10th of January.
var timePrepositions = map[string]bool{
	"в":  true,
	"к":  true,
	"с":  true,
	"до": true,
}

// durationWords make the following "N часа" a length of time, not a clock hour.
var durationWords = map[string]bool{
	"через": true,
	"на":    true,
}

// normalize lower-cases the text, collapses exotic spaces and rewrites the common
// clock shorthands into a canonical HH:MM token.
func normalize(text string) string {
	s := strings.ToLower(spaceReplacer.Replace(text))
	s = rewriteSeparatedTimes(s)
	s = rewriteHourSuffix(s)
	s = rewriteBareHour(s)
	return s
}

// rewriteSeparatedTimes scans match by match: a rejected candidate such as the
// "25 15" tail of "2025 15 00" is retried one byte later so "15 00" still matches.
func rewriteSeparatedTimes(s string) string {
	var b strings.Builder
	last := 0
	for pos := 0; pos < len(s); {
		m := separatedTimePattern.FindStringSubmatchIndex(s[pos:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += pos
			}
		}
		start, end := m[0], m[1]
		if !separatedClock(s, m) {
			pos = start + 1
			continue
		}
		h, _ := strconv.Atoi(s[m[2]:m[3]])
		mm, _ := strconv.Atoi(s[m[6]:m[7]])
		b.WriteString(s[last:start])
		b.WriteString(clock(h, mm))
		last, pos = end, end
	}
	b.WriteString(s[last:])
	return b.String()
}

func separatedClock(s string, m []int) bool {
	start, end := m[0], m[1]
	if digitBefore(s, start) || !clockBoundaryAfter(s, end) || monthAhead(s, end) {
		return false
	}
	// The "01" of "15.01 15 00" belongs to the date.
	if r := runeBefore(s, start); r == '.' || r == ':' {
		return false
	}
	h, _ := strconv.Atoi(s[m[2]:m[3]])
	mm, _ := strconv.Atoi(s[m[6]:m[7]])
	if !validClock(h, mm) {
		return false
	}
	// Looks like DD.MM, leave it to the date rules.
	if s[m[4]:m[5]] == "." && mm != 0 && mm <= 12 && !timePrepositions[lastWord(s[:start])] {
		return false
	}
	return true
}

func rewriteHourSuffix(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range hourSuffixPattern.FindAllStringSubmatchIndex(s, -1) {
		h, ok := suffixHour(s, m)
		if !ok {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(clock(h, 0))
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// suffixHour validates an hourSuffixPattern match. The spelled-out "часа"/"часов"
// forms count only after a time preposition ("в 3 часа", not "через 2 часа").
func suffixHour(s string, m []int) (int, bool) {
	start, end := m[0], m[1]
	if digitBefore(s, start) || runeBefore(s, start) == ':' || letterAfter(s, end) {
		return 0, false
	}
	prev := lastWord(s[:start])
	if durationWords[prev] {
		return 0, false
	}
	if strings.Contains(s[m[3]:end], "час") && !timePrepositions[prev] {
		return 0, false
	}
	h, _ := strconv.Atoi(s[m[2]:m[3]])
	if !validClock(h, 0) {
		return 0, false
	}
	return h, true
}

func rewriteBareHour(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range bareHourPattern.FindAllStringSubmatchIndex(s, -1) {
		numStart, numEnd := m[6], m[7]
		if !clockBoundaryAfter(s, numEnd) || runeAt(s, numEnd) == ':' || monthAhead(s, numEnd) {
			continue
		}
		h, _ := strconv.Atoi(s[numStart:numEnd])
		if !validClock(h, 0) {
			continue
		}
		b.WriteString(s[last:numStart])
		b.WriteString(clock(h, 0))
		last = numEnd
	}
	b.WriteString(s[last:])
	return b.String()
}

func clock(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}

func validClock(h, m int) bool {
	return h >= 0 && h <= 23 && m >= 0 && m <= 59
}

// runeBefore returns the rune ending at byte offset i, or utf8.RuneError at the start.
func runeBefore(s string, i int) rune {
	if i <= 0 {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r
}

// runeAt returns the rune starting at byte offset i, or utf8.RuneError at the end.
func runeAt(s string, i int) rune {
	if i >= len(s) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}

func digitBefore(s string, i int) bool {
	return unicode.IsDigit(runeBefore(s, i))
}

func digitAfter(s string, i int) bool {
	return unicode.IsDigit(runeAt(s, i))
}

func letterAfter(s string, i int) bool {
	return unicode.IsLetter(runeAt(s, i))
}

// clockBoundaryAfter reports whether a number ending at i is not continued by
// another digit or by a ".NN" / ":NN" group.
func clockBoundaryAfter(s string, i int) bool {
	if digitAfter(s, i) {
		return false
	}
	if r := runeAt(s, i); r == '.' || r == ':' {
		return !digitAfter(s, i+1)
	}
	return true
}

// monthAhead reports whether the word following offset i is a month name.
func monthAhead(s string, i int) bool {
	rest := strings.TrimLeft(s[i:], " ")
	if len(rest) == len(s[i:]) {
		return false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return false
	}
	return monthFromWord(fields[0]) != 0
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
