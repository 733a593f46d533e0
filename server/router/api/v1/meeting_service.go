package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/helpgpt/plugin/calendar"
	"github.com/hrygo/helpgpt/plugin/meeting"
	apierrors "github.com/hrygo/helpgpt/server/internal/errors"
	"github.com/hrygo/helpgpt/server/internal/observability"
)

// meetingICS returns a meeting as an iCalendar attachment.
func (s *APIV1Service) meetingICS(c echo.Context) error {
	reqCtx := observability.NewRequestContext(slog.Default(), "web")
	providerName, id := c.Param("provider"), c.Param("id")

	provider, ok := s.Providers[providerName]
	if !ok {
		return writeError(c, reqCtx, apierrors.NotFound("unknown provider"))
	}

	record, err := provider.Get(c.Request().Context(), id)
	if err != nil {
		var notFound *meeting.NotFoundError
		if errors.As(err, &notFound) {
			return writeError(c, reqCtx, apierrors.NotFound("meeting not found"))
		}
		return writeError(c, reqCtx, apierrors.Upstream(providerName, err).WithDetails(err.Error()))
	}

	data, err := calendar.RenderICS(record, s.now())
	if err != nil {
		return writeError(c, reqCtx, apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "meeting has no start time"))
	}

	reqCtx.Debug("meeting exported",
		slog.String(observability.LogFieldProvider, providerName),
		slog.String("meeting_id", id))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", calendar.AttachmentName(record)))
	return c.Blob(http.StatusOK, calendar.ContentType, data)
}

// atomContentType is the media type of the upcoming-meetings feed.
const atomContentType = "application/atom+xml; charset=utf-8"

// meetingFeed returns the upcoming meetings of a provider as an Atom feed.
func (s *APIV1Service) meetingFeed(c echo.Context) error {
	reqCtx := observability.NewRequestContext(slog.Default(), "web")
	providerName := c.Param("provider")

	provider, ok := s.Providers[providerName]
	if !ok {
		return writeError(c, reqCtx, apierrors.NotFound("unknown provider"))
	}

	records, err := provider.List(c.Request().Context(), meeting.StatusUpcoming, meeting.DefaultListLimit)
	if err != nil {
		return writeError(c, reqCtx, apierrors.Upstream(providerName, err).WithDetails(err.Error()))
	}

	baseURL := strings.TrimRight(s.Profile.AppURL, "/")
	feed := &feeds.Feed{
		Title:       "help-gpt: " + providerName,
		Link:        &feeds.Link{Href: baseURL + "/api/meetings/" + providerName + "/feed"},
		Description: "Upcoming meetings",
		Id:          "help-gpt:" + providerName,
		Updated:     s.now(),
	}
	for _, record := range records {
		item := &feeds.Item{
			Id:          calendar.EventUID(record),
			Title:       record.Topic,
			Link:        &feeds.Link{Href: record.JoinURL},
			Description: "ID: " + record.ID,
			Created:     record.CreatedAt,
		}
		if item.Title == "" {
			item.Title = calendar.DefaultSummary
		}
		if record.StartTime != nil {
			item.Updated = *record.StartTime
			item.Description += ", " + record.StartTime.Format("02.01.2006 15:04")
		}
		feed.Items = append(feed.Items, item)
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return writeError(c, reqCtx, apierrors.Wrap(err, apierrors.ErrCodeInternal, "feed"))
	}
	return c.Blob(http.StatusOK, atomContentType, []byte(atom))
}
