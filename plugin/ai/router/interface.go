// Package router classifies chat messages into meeting intents and dispatches
// them to the matching meeting provider.
package router

import (
	"context"

	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/store"
)

// RouterService defines the intent routing service.
type RouterService interface {
	// Classify determines the route and intent for text without side effects.
	// The returned route is the zero Route when no provider gate matched.
	Classify(text string) (Route, Intent)

	// Handle runs the intent and returns the reply.
	// handled is false when the message should go to the LLM fallback.
	Handle(ctx context.Context, text string) (reply string, handled bool)
}

// IntentKind identifies what the user asked for.
type IntentKind string

const (
	// IntentNone means no sub-intent matched.
	IntentNone IntentKind = "none"
	// IntentListMeetings lists upcoming meetings.
	IntentListMeetings IntentKind = "list_meetings"
	// IntentDeleteAll cancels every upcoming meeting.
	IntentDeleteAll IntentKind = "delete_all"
	// IntentDeleteOne cancels a meeting by id.
	IntentDeleteOne IntentKind = "delete_one"
	// IntentCreate schedules a meeting.
	IntentCreate IntentKind = "create_meeting"
	// IntentTimeQuery asks for the current time or date.
	IntentTimeQuery IntentKind = "time_query"
)

// Intent is a classified message.
type Intent struct {
	Kind IntentKind
	// ID is the meeting id for IntentDeleteOne.
	ID string
	// Topic is the explicit topic for IntentCreate, if any.
	Topic string
	Raw   string
}

// Route binds a provider gate to its sub-intent matcher and adapter.
type Route struct {
	Provider string
	// Gate reports whether the lowercased message addresses this provider.
	Gate    func(lower string) bool
	Matcher *IntentMatcher
	Adapter meeting.Provider
	// Hint is replied when the gate matches but no sub-intent does.
	Hint string
}

// CalendarMirror copies created meetings into an external calendar.
type CalendarMirror interface {
	MirrorMeeting(ctx context.Context, m *store.MeetingRecord) error
}
