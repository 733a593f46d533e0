// Package timeout defines centralized timeout constants for outbound calls.
package timeout

import "time"

// Outbound call timeout constants.
const (
	// ProviderTimeout bounds a single meeting provider REST call.
	ProviderTimeout = 20 * time.Second

	// TokenTimeout bounds a single OAuth token exchange.
	TokenTimeout = 15 * time.Second

	// RelayTimeout bounds a chat completion relayed to the LLM.
	RelayTimeout = 60 * time.Second

	// CalDAVTimeout bounds a single CalDAV mirror request.
	CalDAVTimeout = 20 * time.Second

	// ShutdownTimeout is how long the HTTP server waits for in-flight requests.
	ShutdownTimeout = 10 * time.Second

	// TelegramPollTimeout is the long-poll timeout for Telegram updates, in seconds.
	TelegramPollTimeout = 30

	// MaxTruncateLength is the maximum length for truncating upstream bodies in logs and errors.
	MaxTruncateLength = 200
)
