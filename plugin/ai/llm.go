package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/helpgpt/plugin/ai/timeout"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// LLMService is the LLM service interface.
type LLMService interface {
	// Chat performs a synchronous chat completion.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// RelayError reports a failed relay call. Status is zero for network failures;
// otherwise Body is the upstream response body verbatim.
type RelayError struct {
	Status int
	Body   string
	Cause  error
}

func (e *RelayError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("network: %v", e.Cause)
	}
	return fmt.Sprintf("upstream %d", e.Status)
}

func (e *RelayError) Unwrap() error {
	return e.Cause
}

// Details is the text shown to the caller next to the error.
func (e *RelayError) Details() string {
	if e.Status == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ""
	}
	return e.Body
}

type llmService struct {
	client *openai.Client
	model  string
	sem    *semaphore.Weighted
}

// NewLLMService creates a relay to an OpenAI-compatible chat-completion API.
// httpClient may be nil; its transport is wrapped to add attribution headers.
func NewLLMService(cfg *LLMConfig, httpClient *http.Client) (LLMService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}

	base := http.DefaultTransport
	if httpClient != nil && httpClient.Transport != nil {
		base = httpClient.Transport
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout.RelayTimeout,
		Transport: &attributionTransport{
			base:    base,
			referer: cfg.AppURL,
			title:   cfg.AppName,
		},
	}

	return &llmService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		sem:    semaphore.NewWeighted(cfg.MaxConcurrent),
	}, nil
}

func (s *llmService) Chat(ctx context.Context, messages []Message) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", &RelayError{Cause: err}
	}
	defer s.sem.Release(1)

	capture := &bodyCapture{}
	ctx = context.WithValue(ctx, bodyCaptureKey{}, capture)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: convertMessages(messages),
	})
	if err != nil {
		relayErr := toRelayError(err, capture)
		slog.Warn("LLM relay failed",
			"model", s.model,
			"status", relayErr.Status,
			"body", truncate(relayErr.Body, timeout.MaxTruncateLength),
			"error", err)
		return "", relayErr
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func toRelayError(err error, capture *bodyCapture) *RelayError {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == 0 {
		return &RelayError{Cause: err}
	}

	body := capture.String()
	if body == "" {
		body = err.Error()
	}
	return &RelayError{Status: status, Body: body, Cause: err}
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		llmMessages[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		}
	}
	return llmMessages
}

type bodyCaptureKey struct{}

// bodyCapture keeps the raw body of a non-2xx response for one call.
type bodyCapture struct {
	body []byte
}

func (c *bodyCapture) String() string {
	if c == nil {
		return ""
	}
	return string(c.body)
}

// attributionTransport adds the Referer and X-Title headers and captures
// error bodies before the client decodes them.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.referer != "" {
		req.Header.Set("Referer", t.referer)
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}

	capture, ok := req.Context().Value(bodyCaptureKey{}).(*bodyCapture)
	if !ok {
		return resp, nil
	}
	raw, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	capture.body = raw
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
