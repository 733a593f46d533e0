package router

import (
	"regexp"
	"strings"

	"github.com/hrygo/helpgpt/plugin/ai/aitime"
)

// IntentMatcher classifies a message addressed to a meeting provider.
// Sub-intents are tried in a fixed order: list, delete-all, delete-one, create.
type IntentMatcher struct {
	listPattern      *regexp.Regexp
	deleteAllPattern *regexp.Regexp
	deleteOnePattern *regexp.Regexp
	createVerbs      []string
}

// NewIntentMatcher creates a matcher with the Russian meeting phrasebook.
func NewIntentMatcher() *IntentMatcher {
	return &IntentMatcher{
		listPattern: regexp.MustCompile(`(?i)(?:список|мои|покажи|ближайшие|какие)\s+(?:мои\s+|у\s+меня\s+)?встреч`),
		deleteAllPattern: regexp.MustCompile(
			`(?i)(?:отмени|удали|отменить|удалить)\s+(?:все|всё)\s+(?:мои\s+)?встреч`),
		// Provider words between "встречу" and the id are skipped so they are never taken as the id.
		deleteOnePattern: regexp.MustCompile(
			`(?i)(?:отмени|удали|отменить|удалить)\s+встреч\p{L}*` +
				`(?:\s+(?:в|во|из|на)\s+\p{L}+|\s+(?:zoom|telemost|зум\p{L}*|телемост\p{L}*))*` +
				`\s+(?:№\s*|id\s*:?\s*)?([A-Za-z0-9_-]{3,})`),
		createVerbs: []string{"создай", "создать", "сделай", "запланируй", "назначь", "организуй"},
	}
}

// Match returns the first sub-intent that matches input, or IntentNone.
func (m *IntentMatcher) Match(input string) Intent {
	lower := strings.ToLower(input)
	intent := Intent{Kind: IntentNone, Raw: input}

	switch {
	case m.listPattern.MatchString(input):
		intent.Kind = IntentListMeetings
	case m.deleteAllPattern.MatchString(input):
		intent.Kind = IntentDeleteAll
	case m.matchDeleteOne(input, &intent):
	case m.isCreate(lower):
		intent.Kind = IntentCreate
		if topic, ok := aitime.ExtractTopic(input); ok {
			intent.Topic = topic
		}
	}
	return intent
}

func (m *IntentMatcher) matchDeleteOne(input string, intent *Intent) bool {
	sub := m.deleteOnePattern.FindStringSubmatch(input)
	if sub == nil {
		return false
	}
	intent.Kind = IntentDeleteOne
	intent.ID = sub[1]
	return true
}

func (m *IntentMatcher) isCreate(lower string) bool {
	if !strings.Contains(lower, "встреч") {
		return false
	}
	return containsAny(lower, m.createVerbs)
}

// utilityPhrases ask for the current time or date.
var utilityPhrases = []string{
	"который час",
	"сколько времени",
	"какое сегодня число",
	"какой сегодня день",
	"какая дата",
	"какое число",
}

func isTimeQuery(lower string) bool {
	return containsAny(lower, utilityPhrases)
}

// meetingWord marks messages about meetings that name no provider.
const meetingWord = "встреч"

var providerTokens = map[string][]string{
	"zoom":     {"zoom", "зум"},
	"telemost": {"телемост", "telemost"},
}

// mentionsProvider reports whether lower names any known provider.
func mentionsProvider(lower string) bool {
	for _, tokens := range providerTokens {
		if containsAny(lower, tokens) {
			return true
		}
	}
	return false
}

// ProviderGate returns the gate for provider. The default provider's gate also
// opens for meeting requests that name no provider at all.
func ProviderGate(provider string, isDefault bool) func(lower string) bool {
	tokens, ok := providerTokens[provider]
	if !ok {
		tokens = []string{strings.ToLower(provider)}
	}
	return func(lower string) bool {
		if containsAny(lower, tokens) {
			return true
		}
		return isDefault && strings.Contains(lower, meetingWord) && !mentionsProvider(lower)
	}
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
