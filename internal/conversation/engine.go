// Package conversation drives the multi-step configuration dialogs.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/pkg/logger"
	"github.com/nowplaying/notification-platform/pkg/metrics"
)

// SuggestedEmoji are the glyph choices offered when an emoji dialog opens.
var SuggestedEmoji = []string{
	"🎵", "🎧", "🎼",
	"📻", "🎸", "🎹",
	"🎤", "🎺", "🎷",
	"📚", "☕", "✨",
}

// Reply is what the engine wants the transport to tell the user. Silent
// replies carry nothing and must not be sent.
type Reply struct {
	Text string
	// SuggestEmoji asks the transport to render the suggested glyph choices
	// alongside the text, however it can (inline keyboard, plain list).
	SuggestEmoji bool
	Silent       bool
}

// Engine owns the per-user dialog sessions. One dialog per user: a new
// command replaces whatever was in progress (last-command-wins). Sessions are
// process-local; a restart abandons open dialogs.
type Engine struct {
	store  store.Store
	logger *logger.Logger

	mu       sync.Mutex
	sessions map[string]*model.ConversationSession
	locks    map[string]*sync.Mutex
}

// NewEngine creates a conversation engine backed by the given config store.
func NewEngine(st store.Store, log *logger.Logger) *Engine {
	return &Engine{
		store:    st,
		logger:   log,
		sessions: make(map[string]*model.ConversationSession),
		locks:    make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing all dialog activity for one user.
// Locks are never evicted; the per-user cost is one mutex.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

func (e *Engine) state(userID string) model.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.sessions[userID]; ok {
		return s.State
	}
	return model.StateIdle
}

func (e *Engine) open(userID string, state model.SessionState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[userID]; !ok {
		metrics.SessionsActive.Inc()
	}
	e.sessions[userID] = &model.ConversationSession{
		UserID:    userID,
		State:     state,
		StartedAt: time.Now(),
	}
}

func (e *Engine) close(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[userID]; ok {
		delete(e.sessions, userID)
		metrics.SessionsActive.Dec()
	}
}

// StartFormat opens a format dialog, replacing any open dialog for the user.
func (e *Engine) StartFormat(ctx context.Context, userID string) Reply {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	e.open(userID, model.StateAwaitingFormat)
	e.logger.Debug("format dialog opened", zap.String("user_id", userID))

	return Reply{Text: formatPrompt}
}

// StartEmoji opens an emoji dialog, replacing any open dialog for the user.
func (e *Engine) StartEmoji(ctx context.Context, userID string) Reply {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	e.open(userID, model.StateAwaitingEmoji)
	e.logger.Debug("emoji dialog opened", zap.String("user_id", userID))

	return Reply{Text: emojiPrompt, SuggestEmoji: true}
}

// HandleText routes a free-text message into the open dialog. With no open
// dialog the message is silently ignored and nothing is persisted. A storage
// failure keeps the dialog open so the user can resend.
func (e *Engine) HandleText(ctx context.Context, userID, text string) (Reply, error) {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	text = strings.TrimSpace(text)

	switch e.state(userID) {
	case model.StateAwaitingFormat:
		if text == "" {
			return Reply{Text: formatEmptyReprompt}, nil
		}
		if _, err := e.store.Upsert(ctx, userID, model.FormatPatch(text)); err != nil {
			e.logger.Error("failed to save message format",
				zap.String("user_id", userID), zap.Error(err))
			return Reply{}, err
		}
		e.close(userID)
		metrics.RecordConfigUpdate("message_format")
		return Reply{Text: fmt.Sprintf(formatConfirm, text)}, nil

	case model.StateAwaitingEmoji:
		if text == "" {
			return Reply{Text: emojiEmptyReprompt}, nil
		}
		if _, err := e.store.Upsert(ctx, userID, model.EmojiPatch(text)); err != nil {
			e.logger.Error("failed to save emoji",
				zap.String("user_id", userID), zap.Error(err))
			return Reply{}, err
		}
		e.close(userID)
		metrics.RecordConfigUpdate("emoji")
		return Reply{Text: fmt.Sprintf(emojiConfirm, text)}, nil

	default:
		// No open dialog: not an error, just nothing to do.
		return Reply{Silent: true}, nil
	}
}

// Cancel closes any open dialog without side effects.
func (e *Engine) Cancel(ctx context.Context, userID string) Reply {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	e.close(userID)
	return Reply{Text: cancelConfirm}
}

// State reports the user's current dialog state. Absence of a session is
// idle.
func (e *Engine) State(userID string) model.SessionState {
	return e.state(userID)
}

// Active reports whether the user has an open dialog.
func (e *Engine) Active(userID string) bool {
	return e.state(userID) != model.StateIdle
}

// SessionCount returns the number of open dialogs.
func (e *Engine) SessionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

const (
	formatPrompt = "📝 *Set Message Format*\n\n" +
		"Send me the text you want before the video title.\n\n" +
		"*Examples:*\n" +
		"• now playing\n" +
		"• currently listening to\n" +
		"• studying with\n" +
		"• vibing to\n\n" +
		"Or send /cancel to cancel."

	formatEmptyReprompt = "The format cannot be empty.\n\n" +
		"Send me the text you want before the video title, or /cancel to cancel."

	formatConfirm = "✅ *Format Updated!*\n\n" +
		"Your new format: `%s`\n\n" +
		"Use /preview to see how it looks!"

	emojiPrompt = "🎨 *Choose Your Emoji*\n\n" +
		"Pick one from below, or send me any emoji you like!"

	emojiEmptyReprompt = "Send me any emoji you like, or /cancel to cancel."

	emojiConfirm = "✅ *Emoji Updated!*\n\n" +
		"Your new emoji: %s\n\n" +
		"Use /preview to see how it looks!"

	cancelConfirm = "❌ Cancelled. Use /help to see available commands."
)
