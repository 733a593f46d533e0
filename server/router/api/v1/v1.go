package v1

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/helpgpt/internal/profile"
	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/server/middleware"
)

// ChatService answers one chat turn.
type ChatService interface {
	Reply(ctx context.Context, message string) (string, error)
}

// APIV1Service serves the chat API, the ICS downloads and the static page.
type APIV1Service struct {
	Profile   *profile.Profile
	Chat      ChatService
	Providers map[string]meeting.Provider
	Gatherer  prometheus.Gatherer

	limiter *middleware.RateLimiter
	now     func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, chat ChatService, providers []meeting.Provider, gatherer prometheus.Gatherer) *APIV1Service {
	byName := make(map[string]meeting.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &APIV1Service{
		Profile:   profile,
		Chat:      chat,
		Providers: byName,
		Gatherer:  gatherer,
		limiter:   middleware.NewRateLimiter(),
		now:       time.Now,
	}
}

// Register mounts all routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.GET("/health", s.health)
	echoServer.POST("/api/chat", s.chat, s.limiter.Middleware())
	echoServer.GET("/api/meetings/:provider/feed", s.meetingFeed)
	echoServer.GET("/api/meetings/:provider/:id/ics", s.meetingICS)
	if s.Gatherer != nil {
		echoServer.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}

	staticDir := s.Profile.StaticDir
	echoServer.GET("/", func(c echo.Context) error {
		return c.File(filepath.Join(staticDir, "index.html"))
	})
	echoServer.GET("/*", echo.StaticDirectoryHandler(os.DirFS(staticDir), false))
}

func (*APIV1Service) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
