package aitime

import (
	"regexp"
	"strings"
)

var (
	quotedTopicPattern  = regexp.MustCompile(`["«“„]([^"«»“”„]{3,120})["»”“]`)
	keywordTopicPattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:на\s+тему|о\s+теме|тема)(?:[^\p{L}]|$)\s*[:\-—]?\s*(.+)$`)
)

// ExtractTopic returns the meeting topic named in text.
// Quoted text wins over a "тема"/"на тему"/"о теме" tail; ok is false when neither is present.
func ExtractTopic(text string) (topic string, ok bool) {
	if m := quotedTopicPattern.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t, true
		}
	}
	if m := keywordTopicPattern.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t, true
		}
	}
	return "", false
}
