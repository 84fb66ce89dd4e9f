package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	st, err := store.New(store.DriverMemory)
	require.NoError(t, err)
	return NewEngine(st, logger.NewNop()), st
}

func TestFormatDialogHappyPath(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	reply := engine.StartFormat(ctx, "user-1")
	assert.Contains(t, reply.Text, "Set Message Format")
	assert.Equal(t, model.StateAwaitingFormat, engine.State("user-1"))

	reply, err := engine.HandleText(ctx, "user-1", "  vibing to  ")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "vibing to")
	assert.Equal(t, model.StateIdle, engine.State("user-1"))

	cfg, err := st.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "vibing to", cfg.MessageFormat, "trimmed text is persisted verbatim")
}

func TestFormatDialogEmptyInputReprompts(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	engine.StartFormat(ctx, "user-1")

	reply, err := engine.HandleText(ctx, "user-1", "   ")
	require.NoError(t, err)
	assert.False(t, reply.Silent)
	assert.Equal(t, model.StateAwaitingFormat, engine.State("user-1"), "empty input keeps the dialog open")

	cfg, err := st.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "now playing", cfg.MessageFormat, "nothing persisted on empty input")
}

func TestEmojiDialogAcceptsFreeText(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	reply := engine.StartEmoji(ctx, "user-1")
	assert.True(t, reply.SuggestEmoji)

	_, err := engine.HandleText(ctx, "user-1", "🎧")
	require.NoError(t, err)
	assert.Equal(t, model.StateIdle, engine.State("user-1"))

	cfg, err := st.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "🎧", cfg.Emoji)
	assert.Equal(t, "now playing", cfg.MessageFormat, "format untouched by emoji dialog")
}

func TestLastCommandWins(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	engine.StartFormat(ctx, "user-1")
	engine.StartEmoji(ctx, "user-1")
	assert.Equal(t, model.StateAwaitingEmoji, engine.State("user-1"))

	_, err := engine.HandleText(ctx, "user-1", "📻")
	require.NoError(t, err)

	cfg, err := st.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "📻", cfg.Emoji, "text applies to the emoji dialog, not the discarded format dialog")
	assert.Equal(t, "now playing", cfg.MessageFormat)
}

func TestCancelClosesDialogWithoutSideEffects(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	engine.StartFormat(ctx, "user-1")
	reply := engine.Cancel(ctx, "user-1")
	assert.Contains(t, reply.Text, "Cancelled")
	assert.Equal(t, model.StateIdle, engine.State("user-1"))

	_, err := engine.HandleText(ctx, "user-1", "should be ignored")
	require.NoError(t, err)

	cfg, err := st.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "now playing", cfg.MessageFormat)
}

func TestIdleFreeTextIsSilentNoOp(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	reply, err := engine.HandleText(ctx, "user-1", "hello there")
	require.NoError(t, err)
	assert.True(t, reply.Silent)
	assert.Equal(t, 0, engine.SessionCount())
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	engine.StartFormat(ctx, "user-1")
	engine.StartEmoji(ctx, "user-2")

	_, err := engine.HandleText(ctx, "user-1", "listening to")
	require.NoError(t, err)
	_, err = engine.HandleText(ctx, "user-2", "☕")
	require.NoError(t, err)

	a, _ := st.Get(ctx, "user-1")
	b, _ := st.Get(ctx, "user-2")
	assert.Equal(t, "listening to", a.MessageFormat)
	assert.Equal(t, "🎵", a.Emoji)
	assert.Equal(t, "☕", b.Emoji)
	assert.Equal(t, "now playing", b.MessageFormat)
}

// failingStore rejects every mutation.
type failingStore struct{}

func (failingStore) Get(ctx context.Context, userID string) (model.UserConfig, error) {
	return model.DefaultConfig(userID), nil
}

func (failingStore) Upsert(ctx context.Context, userID string, patch model.ConfigPatch) (model.UserConfig, error) {
	return model.UserConfig{}, model.ErrStorageIO
}

func (failingStore) Reset(ctx context.Context, userID string) (model.UserConfig, error) {
	return model.UserConfig{}, model.ErrStorageIO
}

func (failingStore) Close() error { return nil }

func TestStorageFailureKeepsDialogOpen(t *testing.T) {
	engine := NewEngine(failingStore{}, logger.NewNop())
	ctx := context.Background()

	engine.StartFormat(ctx, "user-1")

	_, err := engine.HandleText(ctx, "user-1", "vibing to")
	assert.ErrorIs(t, err, model.ErrStorageIO)
	assert.Equal(t, model.StateAwaitingFormat, engine.State("user-1"), "the user can resend after a failed save")
}
