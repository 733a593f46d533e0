// Package server wires the meeting providers, the chat service and its
// transports into one process.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/helpgpt/internal/profile"
	"github.com/hrygo/helpgpt/plugin/ai"
	"github.com/hrygo/helpgpt/plugin/ai/aitime"
	"github.com/hrygo/helpgpt/plugin/ai/router"
	"github.com/hrygo/helpgpt/plugin/ai/timeout"
	"github.com/hrygo/helpgpt/plugin/calendar"
	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/plugin/meeting/telemost"
	"github.com/hrygo/helpgpt/plugin/meeting/token"
	"github.com/hrygo/helpgpt/plugin/meeting/zoom"
	"github.com/hrygo/helpgpt/server/internal/observability"
	apiv1 "github.com/hrygo/helpgpt/server/router/api/v1"
	"github.com/hrygo/helpgpt/server/router/telegram"
	"github.com/hrygo/helpgpt/server/service/chat"
	"github.com/hrygo/helpgpt/server/timezone"
	"github.com/hrygo/helpgpt/store"
)

type Server struct {
	Profile   *profile.Profile
	Store     *store.Store
	Chat      *chat.Service
	Providers []meeting.Provider
	Registry  *prometheus.Registry

	echoServer *echo.Echo
	bot        *telegram.Bot
}

// NewServer builds every component enabled by the profile.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	loc, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "invalid timezone")
	}

	s := &Server{
		Profile:  profile,
		Store:    store,
		Registry: prometheus.NewRegistry(),
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(s.Registry)

	providerClient := &http.Client{Timeout: timeout.ProviderTimeout}
	var routes []router.Route
	if profile.IsZoomEnabled() {
		adapter := observability.InstrumentProvider(newZoom(profile, loc, providerClient), metrics)
		s.Providers = append(s.Providers, adapter)
		routes = append(routes, router.NewProviderRoute(adapter, profile.DefaultProvider == adapter.Name()))
	}
	if profile.IsTelemostEnabled() {
		adapter := observability.InstrumentProvider(newTelemost(profile, loc, providerClient, store), metrics)
		s.Providers = append(s.Providers, adapter)
		routes = append(routes, router.NewProviderRoute(adapter, profile.DefaultProvider == adapter.Name()))
	}
	if len(routes) == 0 {
		slog.Warn("no meeting provider configured, meeting commands are relayed to the LLM")
	}

	routerConfig := router.Config{
		Routes:      routes,
		TimeService: aitime.NewServiceWithClock(loc, time.Now),
	}
	if profile.IsCalDAVEnabled() {
		mirror, err := calendar.NewCalDAVMirror(calendar.CalDAVConfig{
			URL:          profile.CalDAVURL,
			User:         profile.CalDAVUser,
			Password:     profile.CalDAVPassword,
			CalendarName: profile.CalDAVCalendar,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create CalDAV mirror")
		}
		routerConfig.Mirror = mirror
	}

	var llmService ai.LLMService
	if profile.IsLLMEnabled() {
		llmService, err = ai.NewLLMService(ai.NewLLMConfigFromProfile(profile), nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create LLM relay")
		}
	} else {
		slog.Warn("OPENAI_API_KEY is not set, free-form chat is disabled")
	}

	s.Chat = chat.NewService(router.NewRouter(routerConfig), llmService, metrics)

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			slog.LogAttrs(c.Request().Context(), slog.LevelDebug, "http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Int64(observability.LogFieldDuration, v.Latency.Milliseconds()))
			return nil
		},
	}))
	apiv1.NewAPIV1Service(profile, s.Chat, s.Providers, s.Registry).Register(echoServer)
	s.echoServer = echoServer

	if profile.TelegramBotToken != "" {
		bot, err := telegram.New(profile.TelegramBotToken, s.Chat)
		if err != nil {
			return nil, errors.Wrap(err, "failed to authorize telegram bot")
		}
		s.bot = bot
	}

	slog.Info("server configured",
		"providers", len(s.Providers),
		"default_provider", profile.DefaultProvider,
		"caldav", profile.IsCalDAVEnabled(),
		"llm", llmService != nil,
		"telegram", s.bot != nil)
	return s, nil
}

// Start serves HTTP and, when configured, Telegram until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "address", address)
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start http server")
		}
		return nil
	})
	if s.bot != nil {
		g.Go(func() error {
			return s.bot.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})
	return g.Wait()
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout.ShutdownTimeout)
	defer cancel()

	slog.Info("server shutting down")
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown http server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		return errors.Wrap(err, "failed to close store")
	}
	slog.Info("server stopped")
	return nil
}

// Handler exposes the HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

func newZoom(profile *profile.Profile, loc *time.Location, client *http.Client) *zoom.Adapter {
	tokens := token.NewCache(token.Config{
		Provider:     zoom.Name,
		ClientID:     profile.ZoomClientID,
		ClientSecret: profile.ZoomClientSecret,
		TokenURL:     profile.ZoomTokenURL,
		GrantType:    zoom.GrantType,
		Params:       url.Values{"account_id": {profile.ZoomAccountID}},
		AuthStyle:    oauth2.AuthStyleInHeader,
	})
	return zoom.New(zoom.Config{
		BaseURL:    profile.ZoomAPIURL,
		HostEmail:  profile.ZoomHostEmail,
		Location:   loc,
		HTTPClient: client,
		Tokens:     tokens,
	})
}

func newTelemost(profile *profile.Profile, loc *time.Location, client *http.Client, store *store.Store) *telemost.Adapter {
	tokens := token.NewCache(token.Config{
		Provider:     telemost.Name,
		StaticToken:  profile.YandexOAuthToken,
		ClientID:     profile.YandexClientID,
		ClientSecret: profile.YandexClientSecret,
		TokenURL:     profile.YandexTokenURL,
	})
	return telemost.New(telemost.Config{
		BaseURL:    profile.TelemostAPIURL,
		Location:   loc,
		HTTPClient: client,
		Tokens:     tokens,
		Store:      store,
	})
}
