// Package bot maps the Telegram command vocabulary onto the conversation
// engine and the configuration store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/composer"
	"github.com/nowplaying/notification-platform/internal/conversation"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/internal/telegram"
	"github.com/nowplaying/notification-platform/pkg/logger"
	"github.com/nowplaying/notification-platform/pkg/metrics"
)

const emojiCallbackPrefix = "emoji:"

// Router routes inbound Telegram updates. Reply delivery failures are logged
// and never fatal; the user can always resend.
type Router struct {
	engine *conversation.Engine
	store  store.Store
	client telegram.Client
	logger *logger.Logger
}

// NewRouter creates an update router.
func NewRouter(engine *conversation.Engine, st store.Store, client telegram.Client, log *logger.Logger) *Router {
	return &Router{
		engine: engine,
		store:  st,
		client: client,
		logger: log,
	}
}

// HandleUpdate processes one update end to end.
func (r *Router) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		r.handleCallback(ctx, u.CallbackQuery)
	case u.ChannelPost != nil:
		r.handleChannelPost(ctx, u.ChannelPost)
	case u.Message != nil:
		r.handleMessage(ctx, u.Message)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)
	chatID := msg.Chat.ID

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "/") {
		r.handleCommand(ctx, userID, chatID, text)
		return
	}

	reply, err := r.engine.HandleText(ctx, userID, text)
	if err != nil {
		r.send(ctx, chatID, saveFailedText, false)
		return
	}
	r.sendReply(ctx, chatID, reply)
}

func (r *Router) handleCommand(ctx context.Context, userID string, chatID int64, text string) {
	fields := strings.Fields(text)
	// Commands in groups may carry the bot name: "/setformat@SomeBot".
	command := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	metrics.BotCommandsTotal.WithLabelValues(command).Inc()

	switch command {
	case "/start":
		// First contact materializes the default record.
		if _, err := r.store.Upsert(ctx, userID, model.ConfigPatch{}); err != nil {
			r.logger.Error("failed to initialize config",
				zap.String("user_id", userID), zap.Error(err))
		}
		r.send(ctx, chatID, welcomeText, false)

	case "/help":
		r.send(ctx, chatID, helpText, false)

	case "/support":
		r.send(ctx, chatID, supportText, false)

	case "/getchannelid":
		r.send(ctx, chatID, channelIDText, false)

	case "/setformat":
		reply := r.engine.StartFormat(ctx, userID)
		r.sendReply(ctx, chatID, reply)

	case "/setemoji":
		reply := r.engine.StartEmoji(ctx, userID)
		r.sendReply(ctx, chatID, reply)

	case "/cancel":
		reply := r.engine.Cancel(ctx, userID)
		r.sendReply(ctx, chatID, reply)

	case "/preview":
		cfg, err := r.store.Get(ctx, userID)
		if err != nil {
			r.send(ctx, chatID, lookupFailedText, false)
			return
		}
		r.send(ctx, chatID, fmt.Sprintf(previewFrame, composer.Preview(cfg)), false)

	case "/myconfig":
		cfg, err := r.store.Get(ctx, userID)
		if err != nil {
			r.send(ctx, chatID, lookupFailedText, false)
			return
		}
		r.send(ctx, chatID, fmt.Sprintf(myConfigText, cfg.Emoji, cfg.MessageFormat), false)

	case "/reset":
		if _, err := r.store.Reset(ctx, userID); err != nil {
			r.send(ctx, chatID, saveFailedText, false)
			return
		}
		r.send(ctx, chatID, resetText, false)

	default:
		// Unknown commands are ignored.
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := r.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		r.logger.Warn("failed to answer callback query", zap.Error(err))
	}

	if !strings.HasPrefix(cb.Data, emojiCallbackPrefix) {
		return
	}
	glyph := strings.TrimPrefix(cb.Data, emojiCallbackPrefix)
	userID := strconv.FormatInt(cb.From.ID, 10)

	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}

	reply, err := r.engine.HandleText(ctx, userID, glyph)
	if err != nil {
		r.send(ctx, chatID, saveFailedText, false)
		return
	}
	r.sendReply(ctx, chatID, reply)
}

// handleChannelPost announces the channel id so users can configure their
// destination without guessing.
func (r *Router) handleChannelPost(ctx context.Context, post *telegram.Message) {
	text := fmt.Sprintf(channelDetectedText, post.Chat.Title, post.Chat.ID)
	r.send(ctx, post.Chat.ID, text, false)
}

func (r *Router) sendReply(ctx context.Context, chatID int64, reply conversation.Reply) {
	if reply.Silent {
		return
	}
	r.send(ctx, chatID, reply.Text, reply.SuggestEmoji)
}

func (r *Router) send(ctx context.Context, chatID int64, text string, suggestEmoji bool) {
	req := &telegram.SendMessageRequest{
		ChatID:                strconv.FormatInt(chatID, 10),
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	}
	if suggestEmoji {
		req.ReplyMarkup = emojiKeyboard()
	}

	if _, err := r.client.SendMessage(ctx, req); err != nil {
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			r.logger.Warn("telegram rejected reply",
				zap.Int64("chat_id", chatID),
				zap.String("description", apiErr.Description))
			return
		}
		r.logger.Warn("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// emojiKeyboard lays the suggested glyphs out in rows of three.
func emojiKeyboard() *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	var row []telegram.InlineKeyboardButton
	for _, glyph := range conversation.SuggestedEmoji {
		row = append(row, telegram.InlineKeyboardButton{
			Text:         glyph,
			CallbackData: emojiCallbackPrefix + glyph,
		})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
