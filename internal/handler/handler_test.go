package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nowplaying/notification-platform/internal/dispatch"
	"github.com/nowplaying/notification-platform/internal/middleware"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/notify"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/internal/telegram"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

const testJWTSecret = "test-secret"

type fakeTelegram struct {
	err  error
	sent []telegram.SendMessageRequest
}

func (f *fakeTelegram) SendMessage(ctx context.Context, req *telegram.SendMessageRequest) (*telegram.Message, error) {
	f.sent = append(f.sent, *req)
	if f.err != nil {
		return nil, f.err
	}
	return &telegram.Message{MessageID: 1}, nil
}

func (f *fakeTelegram) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	return nil, nil
}

func (f *fakeTelegram) AnswerCallbackQuery(ctx context.Context, id string) error {
	return nil
}

func newTestRouter(t *testing.T, tg *fakeTelegram) (chi.Router, store.Store) {
	t.Helper()

	st, err := store.New(store.DriverMemory)
	require.NoError(t, err)
	log := logger.NewNop()

	dispatcher := dispatch.New(tg, time.Second, log)
	svc := notify.NewService(st, dispatcher, nil, log)

	configHandler := NewConfigHandler(st, log)
	notifyHandler := NewNotifyHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(testJWTSecret))
		r.Get("/config/{user_id}", configHandler.Get)
		r.Post("/notify", notifyHandler.Send)
	})
	return r, st
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestConfigGetUnknownUserReturnsDefaults(t *testing.T) {
	r, _ := newTestRouter(t, &fakeTelegram{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config/stranger", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	cfg := body["config"].(map[string]interface{})
	assert.Equal(t, "now playing", cfg["message_format"])
	assert.Equal(t, "🎵", cfg["emoji"])
}

func TestConfigGetReturnsStoredValues(t *testing.T) {
	r, st := newTestRouter(t, &fakeTelegram{})

	_, err := st.Upsert(context.Background(), "user-1", model.FormatPatch("vibing to"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config/user-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cfg := decodeBody(t, rec)["config"].(map[string]interface{})
	assert.Equal(t, "vibing to", cfg["message_format"])
	assert.Equal(t, "🎵", cfg["emoji"])
}

func TestConfigGetRejectsOversizedUserID(t *testing.T) {
	r, _ := newTestRouter(t, &fakeTelegram{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config/"+strings.Repeat("x", 65), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["success"])
}

func notifyRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNotifyDelivered(t *testing.T) {
	tg := &fakeTelegram{}
	r, _ := newTestRouter(t, tg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, notifyRequest(`{
		"user_id": "user-1",
		"destination_id": "-1001234567890",
		"video_title": "Lofi Radio",
		"video_url": "https://youtube.com/watch?v=jfKfPfyJRdk"
	}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	require.Len(t, tg.sent, 1)
	assert.Equal(t, "-1001234567890", tg.sent[0].ChatID)
	assert.Equal(t, "🎵 now playing\n\n[Lofi Radio](https://youtube.com/watch?v=jfKfPfyJRdk)", tg.sent[0].Text)
}

func TestNotifyRejectionMapsTo502(t *testing.T) {
	tg := &fakeTelegram{err: &telegram.APIError{Code: 403, Description: "Forbidden: bot is not a member of the channel chat"}}
	r, _ := newTestRouter(t, tg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, notifyRequest(`{
		"user_id": "user-1",
		"destination_id": "-100123",
		"video_title": "Lofi Radio",
		"video_url": "https://youtube.com/watch?v=abc"
	}`))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "channel rejected the message: Forbidden: bot is not a member of the channel chat", body["error"])
}

func TestNotifyTransportFailureMapsTo503(t *testing.T) {
	tg := &fakeTelegram{err: context.DeadlineExceeded}
	r, _ := newTestRouter(t, tg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, notifyRequest(`{
		"user_id": "user-1",
		"destination_id": "-100123",
		"video_title": "Lofi Radio",
		"video_url": "https://youtube.com/watch?v=abc"
	}`))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "could not reach delivery service, retry later", decodeBody(t, rec)["error"])
}

func TestNotifyRejectsMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t, &fakeTelegram{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, notifyRequest(`{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifyRejectsMissingFields(t *testing.T) {
	r, _ := newTestRouter(t, &fakeTelegram{})

	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"destination_id": "-1", "video_title": "t", "video_url": "https://y.com/v"}`},
		{"missing destination", `{"user_id": "u", "video_title": "t", "video_url": "https://y.com/v"}`},
		{"missing title", `{"user_id": "u", "destination_id": "-1", "video_url": "https://y.com/v"}`},
		{"relative url", `{"user_id": "u", "destination_id": "-1", "video_title": "t", "video_url": "watch?v=abc"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, notifyRequest(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestNotifyBlankTitleMapsTo400(t *testing.T) {
	tg := &fakeTelegram{}
	r, _ := newTestRouter(t, tg)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, notifyRequest(`{
		"user_id": "user-1",
		"destination_id": "-100123",
		"video_title": "   ",
		"video_url": "https://youtube.com/watch?v=abc"
	}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, tg.sent, "composition failures never reach the endpoint")
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func TestNotifyTokenIdentityOverridesBody(t *testing.T) {
	tg := &fakeTelegram{}
	r, st := newTestRouter(t, tg)

	_, err := st.Upsert(context.Background(), "token-user", model.EmojiPatch("🎧"))
	require.NoError(t, err)

	req := notifyRequest(`{
		"user_id": "body-user",
		"destination_id": "-100123",
		"video_title": "Lofi Radio",
		"video_url": "https://youtube.com/watch?v=abc"
	}`)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "token-user"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, tg.sent, 1)
	assert.True(t, strings.HasPrefix(tg.sent[0].Text, "🎧 "), "composition must use the token subject's config")
}

func TestNotifyInvalidTokenRejected(t *testing.T) {
	r, _ := newTestRouter(t, &fakeTelegram{})

	req := notifyRequest(`{
		"user_id": "user-1",
		"destination_id": "-100123",
		"video_title": "t",
		"video_url": "https://y.com/v"
	}`)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
