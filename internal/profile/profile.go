package profile

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/helpgpt/server/timezone"
)

// Provider names as used in routes, metrics and the store.
const (
	ProviderZoom     = "zoom"
	ProviderTelemost = "telemost"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory holding the meeting store
	Data string
	// StaticDir is the directory served at "/"
	StaticDir string
	// Timezone is the IANA zone meetings are resolved and shown in
	Timezone string
	// DefaultProvider answers meeting requests that name no provider
	DefaultProvider string
	// Version is the current version of server
	Version string

	// LLM relay configuration
	LLMAPIKey  string // OPENAI_API_KEY
	LLMModel   string // MODEL (default: openai/gpt-4.1-mini)
	LLMBaseURL string // OPENROUTER_URL (default: https://openrouter.ai/api/v1)
	AppURL     string // APP_URL, sent as Referer
	AppName    string // APP_NAME, sent as X-Title
	// LLMMaxConcurrent bounds in-flight relay calls
	LLMMaxConcurrent int64

	// Zoom configuration
	ZoomAccountID    string // ZOOM_ACCOUNT_ID
	ZoomClientID     string // ZOOM_CLIENT_ID
	ZoomClientSecret string // ZOOM_CLIENT_SECRET
	ZoomHostEmail    string // ZOOM_HOST_EMAIL (default: me)
	ZoomAPIURL       string // ZOOM_API_URL (default: https://api.zoom.us/v2)
	ZoomTokenURL     string // ZOOM_TOKEN_URL (default: https://zoom.us/oauth/token)

	// Telemost configuration
	YandexOAuthToken   string // YANDEX_OAUTH_TOKEN
	YandexClientID     string // YANDEX_CLIENT_ID
	YandexClientSecret string // YANDEX_CLIENT_SECRET
	TelemostAPIURL     string // TELEMOST_API_URL (default: https://cloud-api.yandex.net/v1/telemost-api)
	YandexTokenURL     string // YANDEX_TOKEN_URL (default: https://oauth.yandex.ru/token)

	// CalDAV mirror configuration
	CalDAVURL      string // YXCAL_URL (default: https://caldav.yandex.ru)
	CalDAVUser     string // YXCAL_USER
	CalDAVPassword string // YXCAL_PASSWORD
	CalDAVCalendar string // YXCAL_CALENDAR_NAME

	// Telegram transport configuration
	TelegramBotToken string // TELEGRAM_BOT_TOKEN
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsZoomEnabled reports whether Zoom credentials are complete.
func (p *Profile) IsZoomEnabled() bool {
	return p.ZoomAccountID != "" && p.ZoomClientID != "" && p.ZoomClientSecret != ""
}

// IsTelemostEnabled reports whether a static token or client credentials are configured.
func (p *Profile) IsTelemostEnabled() bool {
	return p.YandexOAuthToken != "" || (p.YandexClientID != "" && p.YandexClientSecret != "")
}

// IsCalDAVEnabled reports whether the CalDAV mirror is configured.
func (p *Profile) IsCalDAVEnabled() bool {
	return p.CalDAVUser != "" && p.CalDAVPassword != ""
}

// IsLLMEnabled reports whether the relay has an API key.
func (p *Profile) IsLLMEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads provider, relay and transport configuration from environment variables.
// Server settings (mode, addr, port, data) come from flags.
func (p *Profile) FromEnv() {
	p.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
	p.LLMModel = getEnvOrDefault("MODEL", "openai/gpt-4.1-mini")
	p.LLMBaseURL = relayBaseURL(getEnvOrDefault("OPENROUTER_URL", "https://openrouter.ai/api/v1"))
	p.AppURL = getEnvOrDefault("APP_URL", "http://localhost:8080")
	p.AppName = getEnvOrDefault("APP_NAME", "help-gpt")

	p.ZoomAccountID = os.Getenv("ZOOM_ACCOUNT_ID")
	p.ZoomClientID = os.Getenv("ZOOM_CLIENT_ID")
	p.ZoomClientSecret = os.Getenv("ZOOM_CLIENT_SECRET")
	p.ZoomHostEmail = getEnvOrDefault("ZOOM_HOST_EMAIL", "me")
	p.ZoomAPIURL = getEnvOrDefault("ZOOM_API_URL", "https://api.zoom.us/v2")
	p.ZoomTokenURL = getEnvOrDefault("ZOOM_TOKEN_URL", "https://zoom.us/oauth/token")

	p.YandexOAuthToken = os.Getenv("YANDEX_OAUTH_TOKEN")
	p.YandexClientID = os.Getenv("YANDEX_CLIENT_ID")
	p.YandexClientSecret = os.Getenv("YANDEX_CLIENT_SECRET")
	p.TelemostAPIURL = getEnvOrDefault("TELEMOST_API_URL", "https://cloud-api.yandex.net/v1/telemost-api")
	p.YandexTokenURL = getEnvOrDefault("YANDEX_TOKEN_URL", "https://oauth.yandex.ru/token")

	p.CalDAVURL = getEnvOrDefault("YXCAL_URL", "https://caldav.yandex.ru")
	p.CalDAVUser = os.Getenv("YXCAL_USER")
	p.CalDAVPassword = os.Getenv("YXCAL_PASSWORD")
	p.CalDAVCalendar = os.Getenv("YXCAL_CALENDAR_NAME")

	p.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
}

// relayBaseURL accepts both the API root and the full completions endpoint.
func relayBaseURL(raw string) string {
	raw = strings.TrimRight(raw, "/")
	return strings.TrimSuffix(raw, "/chat/completions")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if err := os.MkdirAll(dataDir, 0o770); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	if p.Data == "" {
		p.Data = "data"
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.StaticDir == "" {
		p.StaticDir = "static"
	}
	if p.Timezone == "" {
		p.Timezone = timezone.TimezoneEuropeMoscow
	}
	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("unknown timezone %q", p.Timezone)
	}

	switch p.DefaultProvider {
	case "":
		p.DefaultProvider = ProviderTelemost
	case ProviderZoom, ProviderTelemost:
	default:
		return errors.Errorf("unknown default provider %q: only %q and %q are supported", p.DefaultProvider, ProviderZoom, ProviderTelemost)
	}

	if p.LLMMaxConcurrent <= 0 {
		p.LLMMaxConcurrent = 4
	}

	return nil
}

// MeetingStorePath is the JSON file holding locally persisted meeting records.
func (p *Profile) MeetingStorePath() string {
	return filepath.Join(p.Data, "meetings.json")
}
