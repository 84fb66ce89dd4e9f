package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowplaying/notification-platform/internal/conversation"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/internal/telegram"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

type capturingClient struct {
	sent     []telegram.SendMessageRequest
	answered []string
}

func (c *capturingClient) SendMessage(ctx context.Context, req *telegram.SendMessageRequest) (*telegram.Message, error) {
	c.sent = append(c.sent, *req)
	return &telegram.Message{MessageID: int64(len(c.sent))}, nil
}

func (c *capturingClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	return nil, nil
}

func (c *capturingClient) AnswerCallbackQuery(ctx context.Context, id string) error {
	c.answered = append(c.answered, id)
	return nil
}

func newTestRouter(t *testing.T) (*Router, *capturingClient, store.Store) {
	t.Helper()
	st, err := store.New(store.DriverMemory)
	require.NoError(t, err)
	log := logger.NewNop()
	client := &capturingClient{}
	engine := conversation.NewEngine(st, log)
	return NewRouter(engine, st, client, log), client, st
}

func messageUpdate(userID, chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 1,
			From:      &telegram.User{ID: userID, FirstName: "Test"},
			Chat:      telegram.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func lastSent(t *testing.T, client *capturingClient) telegram.SendMessageRequest {
	t.Helper()
	require.NotEmpty(t, client.sent)
	return client.sent[len(client.sent)-1]
}

func TestStartMaterializesDefaultsAndWelcomes(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/start"))

	sent := lastSent(t, client)
	assert.Contains(t, sent.Text, "Welcome to the Now Playing Bot")
	assert.Equal(t, "42", sent.ChatID)

	cfg, err := st.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "now playing", cfg.MessageFormat)
}

func TestSetFormatDialogPersistsText(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/setformat"))
	assert.Contains(t, lastSent(t, client).Text, "Set Message Format")

	router.HandleUpdate(ctx, messageUpdate(42, 42, "vibing to"))
	assert.Contains(t, lastSent(t, client).Text, "vibing to")

	cfg, err := st.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "vibing to", cfg.MessageFormat)
}

func TestSetEmojiOffersKeyboardAndAcceptsCallback(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/setemoji"))

	sent := lastSent(t, client)
	require.NotNil(t, sent.ReplyMarkup, "emoji prompt carries the suggestion keyboard")
	require.NotEmpty(t, sent.ReplyMarkup.InlineKeyboard)
	assert.LessOrEqual(t, len(sent.ReplyMarkup.InlineKeyboard[0]), 3)

	router.HandleUpdate(ctx, telegram.Update{
		UpdateID: 2,
		CallbackQuery: &telegram.CallbackQuery{
			ID:      "cb-1",
			From:    telegram.User{ID: 42},
			Message: &telegram.Message{Chat: telegram.Chat{ID: 42}},
			Data:    "emoji:🎧",
		},
	})

	assert.Equal(t, []string{"cb-1"}, client.answered)
	cfg, err := st.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "🎧", cfg.Emoji)
}

func TestCommandWithBotSuffixIsRecognized(t *testing.T) {
	router, client, _ := newTestRouter(t)

	router.HandleUpdate(context.Background(), messageUpdate(42, 42, "/help@NowPlayingBot"))
	assert.Contains(t, lastSent(t, client).Text, "Complete Guide")
}

func TestPreviewShowsComposedSample(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	_, err := st.Upsert(ctx, "42", model.FormatPatch("studying with"))
	require.NoError(t, err)

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/preview"))

	sent := lastSent(t, client)
	assert.Contains(t, sent.Text, "Message Preview")
	assert.Contains(t, sent.Text, "🎵 studying with")
}

func TestMyConfigShowsCurrentSettings(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	_, err := st.Upsert(ctx, "42", model.EmojiPatch("📻"))
	require.NoError(t, err)

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/myconfig"))

	sent := lastSent(t, client)
	assert.Contains(t, sent.Text, "📻")
	assert.Contains(t, sent.Text, "now playing")
}

func TestResetRestoresDefaults(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	_, err := st.Upsert(ctx, "42", model.EmojiPatch("☕"))
	require.NoError(t, err)

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/reset"))
	assert.Contains(t, lastSent(t, client).Text, "Settings Reset")

	cfg, err := st.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "🎵", cfg.Emoji)
}

func TestCancelClosesOpenDialog(t *testing.T) {
	router, client, st := newTestRouter(t)
	ctx := context.Background()

	router.HandleUpdate(ctx, messageUpdate(42, 42, "/setformat"))
	router.HandleUpdate(ctx, messageUpdate(42, 42, "/cancel"))
	assert.Contains(t, lastSent(t, client).Text, "Cancelled")

	router.HandleUpdate(ctx, messageUpdate(42, 42, "this is ignored"))
	cfg, err := st.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "now playing", cfg.MessageFormat)
}

func TestIdleFreeTextGetsNoReply(t *testing.T) {
	router, client, _ := newTestRouter(t)

	router.HandleUpdate(context.Background(), messageUpdate(42, 42, "hello bot"))
	assert.Empty(t, client.sent)
}

func TestUnknownCommandIsIgnored(t *testing.T) {
	router, client, _ := newTestRouter(t)

	router.HandleUpdate(context.Background(), messageUpdate(42, 42, "/frobnicate"))
	assert.Empty(t, client.sent)
}

func TestChannelPostAnnouncesChannelID(t *testing.T) {
	router, client, _ := newTestRouter(t)

	router.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 3,
		ChannelPost: &telegram.Message{
			MessageID: 1,
			Chat:      telegram.Chat{ID: -1001234567890, Type: "channel", Title: "My Music"},
			Text:      "anything",
		},
	})

	sent := lastSent(t, client)
	assert.Equal(t, "-1001234567890", sent.ChatID)
	assert.Contains(t, sent.Text, "My Music")
	assert.True(t, strings.Contains(sent.Text, "-1001234567890"))
}
