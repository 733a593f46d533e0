// Package chat answers one chat turn: meeting commands and utility questions
// go through the intent router, everything else is relayed to the LLM.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/helpgpt/plugin/ai"
	"github.com/hrygo/helpgpt/plugin/ai/router"
	apierrors "github.com/hrygo/helpgpt/server/internal/errors"
	"github.com/hrygo/helpgpt/server/internal/observability"
)

// Service is shared by the HTTP and Telegram transports.
type Service struct {
	router  router.RouterService
	llm     ai.LLMService
	metrics *observability.Metrics
}

// NewService creates a chat service. llm and metrics may be nil.
func NewService(r router.RouterService, llm ai.LLMService, metrics *observability.Metrics) *Service {
	return &Service{router: r, llm: llm, metrics: metrics}
}

// Reply answers message. Errors are *apierrors.APIError.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		s.record(observability.RouteRejected)
		return "", apierrors.InvalidArgument("empty")
	}

	if s.router != nil {
		if reply, ok := s.router.Handle(ctx, message); ok {
			route := s.routeLabel(message)
			s.record(route)
			s.log(ctx, "chat turn routed", slog.String(observability.LogFieldRoute, route))
			return reply, nil
		}
	}

	if s.llm == nil {
		s.record(observability.RouteRejected)
		return "", apierrors.ServiceUnavailable("llm disabled")
	}

	s.record(observability.RouteRelay)
	reply, err := s.llm.Chat(ctx, []ai.Message{ai.UserMessage(message)})
	if err != nil {
		apiErr := relayAPIError(err)
		s.log(ctx, "chat relay failed",
			slog.String(observability.LogFieldRoute, observability.RouteRelay),
			slog.String(observability.LogFieldErrorCode, apiErr.Message))
		return "", apiErr
	}
	s.log(ctx, "chat turn relayed", slog.String(observability.LogFieldRoute, observability.RouteRelay))
	return reply, nil
}

func (s *Service) routeLabel(message string) string {
	route, intent := s.router.Classify(message)
	if route.Provider == "" && intent.Kind == router.IntentTimeQuery {
		return observability.RouteUtility
	}
	return observability.RouteMeeting
}

func (s *Service) record(route string) {
	if s.metrics != nil {
		s.metrics.RecordChat(route)
	}
}

func (s *Service) log(ctx context.Context, msg string, attrs ...slog.Attr) {
	if reqCtx, ok := observability.FromContext(ctx); ok {
		reqCtx.Info(msg, append(attrs, slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))...)
		return
	}
	slog.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

// relayAPIError maps a relay failure to the client-visible error:
// "network" for transport failures, "upstream N" with the verbatim body otherwise.
func relayAPIError(err error) *apierrors.APIError {
	var relayErr *ai.RelayError
	if !errors.As(err, &relayErr) {
		return apierrors.Upstream("network", err).WithDetails(err.Error())
	}
	if relayErr.Status == 0 {
		return apierrors.Upstream("network", err).WithDetails(relayErr.Details())
	}
	return apierrors.Upstream(fmt.Sprintf("upstream %d", relayErr.Status), err).WithDetails(relayErr.Details())
}
