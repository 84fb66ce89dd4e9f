package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageSuccess(t *testing.T) {
	var gotPath string
	var gotBody SendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 42, "chat": map[string]any{"id": -100123}},
		})
	}))
	defer srv.Close()

	client, err := NewBotClient("test-token", srv.URL)
	require.NoError(t, err)

	msg, err := client.SendMessage(context.Background(), &SendMessageRequest{
		ChatID:    "-100123",
		Text:      "🎵 now playing",
		ParseMode: "Markdown",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), msg.MessageID)
	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "🎵 now playing", gotBody.Text)
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  400,
			"description": "Bad Request: chat not found",
		})
	}))
	defer srv.Close()

	client, err := NewBotClient("test-token", srv.URL)
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), &SendMessageRequest{ChatID: "nope", Text: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "Bad Request: chat not found", apiErr.Description)
}

func TestSendMessageUnparseableResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	client, err := NewBotClient("test-token", srv.URL)
	require.NoError(t, err)

	_, err = client.SendMessage(context.Background(), &SendMessageRequest{ChatID: "-1", Text: "hi"})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "garbage is a transport failure, not a rejection")
}

func TestGetUpdatesDecodesBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{
					"update_id": 7,
					"message": map[string]any{
						"message_id": 1,
						"text":       "/setformat",
						"from":       map[string]any{"id": 99, "first_name": "A"},
						"chat":       map[string]any{"id": 99, "type": "private"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	client, err := NewBotClient("test-token", srv.URL)
	require.NoError(t, err)

	updates, err := client.GetUpdates(context.Background(), 0, time.Second)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(7), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "/setformat", updates[0].Message.Text)
	assert.Equal(t, int64(99), updates[0].Message.From.ID)
}

func TestNewBotClientRequiresToken(t *testing.T) {
	_, err := NewBotClient("", DefaultAPIBase)
	assert.Error(t, err)
}
