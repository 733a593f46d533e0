// Package telegram answers chat messages received over Telegram long polling.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apierrors "github.com/hrygo/helpgpt/server/internal/errors"
	"github.com/hrygo/helpgpt/server/internal/observability"
)

const (
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout = 30
	// maxMessageLength is the Telegram limit for one text message.
	maxMessageLength = 4096
	// maxDetailsLength bounds upstream error details echoed to the chat.
	maxDetailsLength = 200
)

const helpText = "Привет! Я помогаю с встречами в Zoom и Телемосте.\n" +
	"Примеры:\n" +
	"• создай встречу завтра в 15:00 «Планёрка»\n" +
	"• покажи мои встречи в зуме\n" +
	"• отмени встречу 123456789\n" +
	"• отмени все встречи в телемосте\n" +
	"Остальные вопросы я передаю языковой модели."

// ChatService answers one chat turn.
type ChatService interface {
	Reply(ctx context.Context, message string) (string, error)
}

// BotAPI is the part of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot relays Telegram messages to the chat service.
type Bot struct {
	api      BotAPI
	chat     ChatService
	username string
}

// New authorizes with token and creates a bot.
func New(token string, chat ChatService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	slog.Info("telegram bot authorized", "username", api.Self.UserName)
	return NewWithAPI(api, api.Self.UserName, chat), nil
}

// NewWithAPI creates a bot on top of an existing API client.
func NewWithAPI(api BotAPI, username string, chat ChatService) *Bot {
	return &Bot{api: api, chat: chat, username: username}
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = PollTimeout
	updates := b.api.GetUpdatesChan(u)
	slog.Info("telegram long polling started", "timeout_seconds", u.Timeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// HandleMessage answers one incoming message. In groups the bot only answers
// commands and messages that mention it.
func (b *Bot) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || msg.Text == "" {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.send(msg, helpText)
			return
		}
	}

	text, ok := b.extractText(msg)
	if !ok || strings.TrimSpace(text) == "" {
		return
	}

	reqCtx := observability.NewRequestContext(slog.Default(), "telegram")
	ctx = observability.WithRequestContext(ctx, reqCtx)
	reply, err := b.chat.Reply(ctx, text)
	if err != nil {
		reqCtx.Warn("telegram reply failed", slog.String("error", err.Error()))
		reply = errorReply(err)
	}
	if reply == "" {
		return
	}
	b.send(msg, reply)
}

func (b *Bot) extractText(msg *tgbotapi.Message) (string, bool) {
	if msg.IsCommand() {
		return msg.CommandArguments(), true
	}
	if msg.Chat.IsPrivate() {
		return msg.Text, true
	}
	if b.username == "" {
		return "", false
	}
	mention := "@" + b.username
	// Entity offsets count UTF-16 code units, so the mention is located by text.
	for _, e := range msg.Entities {
		if e.Type == "mention" && strings.Contains(msg.Text, mention) {
			return strings.TrimSpace(strings.Replace(msg.Text, mention, "", 1)), true
		}
	}
	return "", false
}

func (b *Bot) send(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, truncate(text, maxMessageLength))
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		slog.Warn("failed to send telegram message", "chat_id", msg.Chat.ID, "error", err)
	}
}

func errorReply(err error) string {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		return "❌ Внутренняя ошибка."
	}
	switch apiErr.Code {
	case apierrors.ErrCodeServiceUnavailable:
		return "❌ Языковая модель не настроена."
	case apierrors.ErrCodeUpstream:
		reply := "❌ Ошибка языковой модели: " + apiErr.Message
		if apiErr.Details != "" {
			reply += "\n" + truncate(apiErr.Details, maxDetailsLength)
		}
		return reply
	}
	return "❌ " + apiErr.Message
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
