package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/server/timezone"
	"github.com/hrygo/helpgpt/store"
)

const (
	listHeader     = "🗓️ Ближайшие встречи:"
	emptyListReply = "🗓️ Встреч нет."
	untitled       = "Без темы"
	noTime         = "—"

	staleRecordWarning = "⚠️ Не удалось удалить встречу из локального хранилища: она может остаться в списке."
)

var weekdays = [...]string{
	time.Sunday:    "воскресенье",
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
}

func displayName(provider string) string {
	switch provider {
	case "zoom":
		return "Zoom"
	case "telemost":
		return "Телемост"
	}
	return provider
}

func providerHint(provider string) string {
	switch provider {
	case "zoom":
		return "Я понял, что речь о Zoom. Примеры:\n" +
			"• создай встречу в зуме завтра в 15:00 на тему \"Планёрка\"\n" +
			"• список встреч zoom\n" +
			"• удали встречу zoom 81234567890\n" +
			"• отмени все встречи в зуме"
	case "telemost":
		return "Я понял, что речь о Телемосте. Примеры:\n" +
			"• создай встречу в телемосте сегодня в 15 45\n" +
			"• список встреч\n" +
			"• удали встречу abc123\n" +
			"• отмени все встречи"
	}
	return "Не понял запрос к " + provider + "."
}

func dateHint(provider string) string {
	example := "создай встречу в телемосте завтра в 15:00"
	if provider == "zoom" {
		example = "создай встречу в зуме завтра в 15:00"
	}
	return "Не понял дату/время. Пример: «" + example + "»."
}

// formatMeetingList renders meetings as a numbered list, one per line.
func formatMeetingList(list []*store.MeetingRecord, loc *time.Location) string {
	if len(list) == 0 {
		return emptyListReply
	}
	var b strings.Builder
	b.WriteString(listHeader)
	for i, m := range list {
		topic := m.Topic
		if topic == "" {
			topic = untitled
		}
		when := noTime
		if m.StartTime != nil {
			when = timezone.FormatMeetingTime(*m.StartTime, loc)
		}
		fmt.Fprintf(&b, "\n%d. %s • ID: %s • %s", i+1, topic, m.ID, when)
	}
	return b.String()
}

func formatCreated(provider string, m *store.MeetingRecord, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s: встреча «%s» создана", displayName(provider), m.Topic)
	if m.StartTime != nil {
		fmt.Fprintf(&b, " на %s (%s)", timezone.FormatMeetingTime(*m.StartTime, loc), loc.String())
	}
	b.WriteString(".")
	if m.JoinURL != "" {
		b.WriteString("\nСсылка: " + m.JoinURL)
	}
	b.WriteString("\nID: " + m.ID)
	if m.Password != "" {
		b.WriteString("\nПароль: " + m.Password)
	}
	return b.String()
}

func formatDeleted(provider, id string) string {
	return "🗑️ Встреча **" + id + "** отменена (" + displayName(provider) + ")."
}

func formatDeleteAll(provider string, deleted int, failed, stale []string) string {
	reply := "🗑️ Отменено встреч: " + strconv.Itoa(deleted) + " (" + displayName(provider) + ")."
	if len(failed) > 0 {
		reply += "\n❌ Не удалось отменить: " + strings.Join(failed, ", ")
	}
	if len(stale) > 0 {
		reply += "\n⚠️ Отменены, но остались в локальном хранилище: " + strings.Join(stale, ", ")
	}
	return reply
}

// formatError turns the provider error taxonomy into a user-facing reply.
func formatError(provider string, err error) string {
	name := displayName(provider)
	var (
		authErr     *meeting.AuthError
		upstreamErr *meeting.UpstreamError
		storeErr    *meeting.StoreError
	)
	switch {
	case errors.As(err, &authErr):
		return "❌ " + name + ": ошибка авторизации. Проверьте ключи доступа."
	case errors.As(err, &upstreamErr) && upstreamErr.Status == 0:
		return "❌ " + name + ": сервис недоступен, попробуйте позже."
	case errors.As(err, &upstreamErr):
		return fmt.Sprintf("❌ %s: ошибка %d: %s", name, upstreamErr.Status, upstreamErr.Body)
	case errors.As(err, &storeErr):
		return "❌ " + name + ": ошибка локального хранилища встреч."
	}
	return "❌ " + name + ": " + err.Error()
}
