package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/helpgpt/plugin/ai/aitime"
	"github.com/hrygo/helpgpt/plugin/meeting"
)

const (
	// DefaultTopic is used when the message names no topic.
	DefaultTopic = "Встреча"
	// DefaultDurationMinutes is the length of created meetings.
	DefaultDurationMinutes = 60
	// deleteAllLimit bounds how many meetings one delete-all request cancels.
	deleteAllLimit = 100
)

// Router routes messages through provider gates in registration order.
// The first route whose gate opens owns the message.
type Router struct {
	routes          []Route
	timeService     aitime.TimeService
	mirror          CalendarMirror
	listLimit       int
	defaultDuration int
}

// Config contains the configuration for the router.
type Config struct {
	Routes      []Route
	TimeService aitime.TimeService
	// Mirror is optional.
	Mirror          CalendarMirror
	ListLimit       int
	DefaultDuration int
}

// NewRouter creates a new router.
func NewRouter(cfg Config) *Router {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = meeting.DefaultListLimit
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDurationMinutes
	}
	return &Router{
		routes:          cfg.Routes,
		timeService:     cfg.TimeService,
		mirror:          cfg.Mirror,
		listLimit:       cfg.ListLimit,
		defaultDuration: cfg.DefaultDuration,
	}
}

// NewProviderRoute creates the route for adapter with the standard gate and matcher.
func NewProviderRoute(adapter meeting.Provider, isDefault bool) Route {
	name := adapter.Name()
	return Route{
		Provider: name,
		Gate:     ProviderGate(name, isDefault),
		Matcher:  NewIntentMatcher(),
		Adapter:  adapter,
		Hint:     providerHint(name),
	}
}

// Classify finds the owning route and its sub-intent.
func (r *Router) Classify(text string) (Route, Intent) {
	lower := strings.ToLower(text)
	for _, route := range r.routes {
		if route.Gate != nil && route.Gate(lower) {
			return route, route.Matcher.Match(text)
		}
	}
	if isTimeQuery(lower) {
		return Route{}, Intent{Kind: IntentTimeQuery, Raw: text}
	}
	return Route{}, Intent{Kind: IntentNone, Raw: text}
}

// Handle runs the classified intent. A gate match always produces a reply;
// only messages outside every gate are left unhandled.
func (r *Router) Handle(ctx context.Context, text string) (string, bool) {
	start := time.Now()
	route, intent := r.Classify(text)

	var reply string
	switch intent.Kind {
	case IntentTimeQuery:
		reply = r.timeReply(text)
	case IntentListMeetings:
		reply = r.handleList(ctx, route)
	case IntentDeleteAll:
		reply = r.handleDeleteAll(ctx, route)
	case IntentDeleteOne:
		reply = r.handleDeleteOne(ctx, route, intent.ID)
	case IntentCreate:
		reply = r.handleCreate(ctx, route, intent)
	default:
		if route.Adapter == nil {
			slog.Debug("message not routed",
				"input", truncate(text, 50),
				"latency_ms", time.Since(start).Milliseconds())
			return "", false
		}
		reply = route.Hint
	}

	slog.Debug("message routed",
		"input", truncate(text, 50),
		"provider", route.Provider,
		"intent", intent.Kind,
		"latency_ms", time.Since(start).Milliseconds())
	return reply, true
}

func (r *Router) handleList(ctx context.Context, route Route) string {
	list, err := route.Adapter.List(ctx, meeting.StatusUpcoming, r.listLimit)
	if err != nil {
		return formatError(route.Provider, err)
	}
	return formatMeetingList(list, r.timeService.Location())
}

func (r *Router) handleDeleteOne(ctx context.Context, route Route, id string) string {
	err := route.Adapter.Delete(ctx, id)
	var (
		notFound *meeting.NotFoundError
		partial  *meeting.PartialSuccessError
	)
	switch {
	case err == nil:
		return formatDeleted(route.Provider, id)
	case errors.As(err, &partial):
		slog.Warn("meeting cancelled but local record kept",
			"provider", route.Provider,
			"id", id,
			"error", err)
		return formatDeleted(route.Provider, id) + "\n" + staleRecordWarning
	case errors.As(err, &notFound):
		return "🤷 Встреча **" + id + "** не найдена (" + displayName(route.Provider) + ")."
	default:
		return formatError(route.Provider, err)
	}
}

func (r *Router) handleDeleteAll(ctx context.Context, route Route) string {
	list, err := route.Adapter.List(ctx, meeting.StatusUpcoming, deleteAllLimit)
	if err != nil {
		return formatError(route.Provider, err)
	}
	if len(list) == 0 {
		return emptyListReply
	}

	var deleted int
	var failed, stale []string
	for _, m := range list {
		err := route.Adapter.Delete(ctx, m.ID)
		var (
			notFound *meeting.NotFoundError
			partial  *meeting.PartialSuccessError
		)
		if errors.As(err, &partial) {
			slog.Warn("meeting cancelled but local record kept",
				"provider", route.Provider,
				"id", m.ID,
				"error", err)
			stale = append(stale, m.ID)
			deleted++
			continue
		}
		if err != nil && !errors.As(err, &notFound) {
			slog.Warn("failed to cancel meeting",
				"provider", route.Provider,
				"id", m.ID,
				"error", err)
			failed = append(failed, m.ID)
			continue
		}
		deleted++
	}
	return formatDeleteAll(route.Provider, deleted, failed, stale)
}

func (r *Router) handleCreate(ctx context.Context, route Route, intent Intent) string {
	parsed, err := r.timeService.Resolve(ctx, intent.Raw)
	if err != nil {
		var parseErr *aitime.ParseError
		if errors.As(err, &parseErr) {
			return dateHint(route.Provider)
		}
		return formatError(route.Provider, err)
	}

	topic := intent.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	record, err := route.Adapter.Create(ctx, topic, parsed.Instant, r.defaultDuration)
	var partial *meeting.PartialSuccessError
	switch {
	case errors.As(err, &partial):
		return formatCreated(route.Provider, partial.Meeting, r.timeService.Location()) +
			"\n⚠️ Встреча создана, но не сохранена локально: она не появится в списке."
	case err != nil:
		return formatError(route.Provider, err)
	}

	reply := formatCreated(route.Provider, record, r.timeService.Location())
	if r.mirror != nil {
		if err := r.mirror.MirrorMeeting(ctx, record); err != nil {
			slog.Warn("failed to mirror meeting to calendar",
				"provider", route.Provider,
				"id", record.ID,
				"error", err)
			reply += "\n⚠️ Не удалось добавить встречу в календарь."
		} else {
			reply += "\n📅 Добавлено в календарь."
		}
	}
	return reply
}

func (r *Router) timeReply(text string) string {
	now := r.timeService.Now()
	lower := strings.ToLower(text)
	if strings.Contains(lower, "час") || strings.Contains(lower, "времени") {
		return "🕒 Сейчас " + now.Format("15:04") + ", " + now.Format("02.01.2006") +
			" (" + r.timeService.Location().String() + ")."
	}
	return "📅 Сегодня " + now.Format("02.01.2006") + ", " + weekdays[now.Weekday()] + "."
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}

// Ensure Router implements RouterService
var _ RouterService = (*Router)(nil)
