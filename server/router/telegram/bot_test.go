package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/hrygo/helpgpt/server/internal/errors"
)

type fakeAPI struct {
	updates chan tgbotapi.Update

	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	stopped bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 4)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Sent() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type fakeChat struct {
	mu       sync.Mutex
	messages []string
	reply    string
	err      error
}

func (f *fakeChat) Reply(_ context.Context, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.reply, f.err
}

func privateMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: 42, Type: "private"},
		Text:      text,
	}
}

func commandMessage(text, command string) *tgbotapi.Message {
	msg := privateMessage(text)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return msg
}

func TestHandleMessage_Private(t *testing.T) {
	api := newFakeAPI()
	chat := &fakeChat{reply: "🗓️ Встреч нет."}
	bot := NewWithAPI(api, "helpgpt_bot", chat)

	bot.HandleMessage(context.Background(), privateMessage("покажи мои встречи"))

	assert.Equal(t, []string{"покажи мои встречи"}, chat.messages)
	sent := api.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(42), sent[0].ChatID)
	assert.Equal(t, 7, sent[0].ReplyToMessageID)
	assert.Equal(t, "🗓️ Встреч нет.", sent[0].Text)
}

func TestHandleMessage_Commands(t *testing.T) {
	api := newFakeAPI()
	chat := &fakeChat{reply: "ok"}
	bot := NewWithAPI(api, "helpgpt_bot", chat)

	bot.HandleMessage(context.Background(), commandMessage("/start", "start"))
	require.Len(t, api.Sent(), 1)
	assert.Equal(t, helpText, api.Sent()[0].Text)
	assert.Empty(t, chat.messages)

	bot.HandleMessage(context.Background(), commandMessage("/ask который час?", "ask"))
	assert.Equal(t, []string{"который час?"}, chat.messages)
}

func TestHandleMessage_Group(t *testing.T) {
	api := newFakeAPI()
	chat := &fakeChat{reply: "ok"}
	bot := NewWithAPI(api, "helpgpt_bot", chat)
	group := &tgbotapi.Chat{ID: -100, Type: "supergroup"}

	bot.HandleMessage(context.Background(), &tgbotapi.Message{Chat: group, Text: "просто разговор"})
	assert.Empty(t, chat.messages)

	bot.HandleMessage(context.Background(), &tgbotapi.Message{
		Chat:     group,
		Text:     "@helpgpt_bot создай встречу завтра в 10",
		Entities: []tgbotapi.MessageEntity{{Type: "mention", Offset: 0, Length: 12}},
	})
	assert.Equal(t, []string{"создай встречу завтра в 10"}, chat.messages)
}

func TestHandleMessage_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "upstream",
			err:  apierrors.Upstream("upstream 402", nil).WithDetails("Insufficient credits"),
			want: "❌ Ошибка языковой модели: upstream 402\nInsufficient credits",
		},
		{
			name: "relay disabled",
			err:  apierrors.ServiceUnavailable("llm disabled"),
			want: "❌ Языковая модель не настроена.",
		},
		{
			name: "untyped",
			err:  assert.AnError,
			want: "❌ Внутренняя ошибка.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			bot := NewWithAPI(api, "helpgpt_bot", &fakeChat{err: tt.err})

			bot.HandleMessage(context.Background(), privateMessage("Привет"))
			require.Len(t, api.Sent(), 1)
			assert.Equal(t, tt.want, api.Sent()[0].Text)
		})
	}
}

func TestHandleMessage_Ignored(t *testing.T) {
	api := newFakeAPI()
	chat := &fakeChat{reply: "ok"}
	bot := NewWithAPI(api, "helpgpt_bot", chat)

	bot.HandleMessage(context.Background(), &tgbotapi.Message{Text: "no chat"})
	bot.HandleMessage(context.Background(), privateMessage(""))
	bot.HandleMessage(context.Background(), privateMessage("   "))

	assert.Empty(t, chat.messages)
	assert.Empty(t, api.Sent())
}

func TestRun(t *testing.T) {
	api := newFakeAPI()
	bot := NewWithAPI(api, "helpgpt_bot", &fakeChat{reply: "Привет!"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- bot.Run(ctx) }()

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: privateMessage("Привет")}
	require.Eventually(t, func() bool { return len(api.Sent()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	api.mu.Lock()
	assert.True(t, api.stopped)
	api.mu.Unlock()
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "абв", truncate("абв", 3))
	assert.Equal(t, "аб…", truncate("абвг", 3))
}
