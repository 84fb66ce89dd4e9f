package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nowplaying/notification-platform/pkg/metrics"
)

// DefaultAPIBase is the production Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// Client is the interface to the Telegram Bot API.
type Client interface {
	// SendMessage delivers one message. An explicit ok:false response is
	// returned as *APIError; anything else is a transport-level error.
	SendMessage(ctx context.Context, req *SendMessageRequest) (*Message, error)

	// GetUpdates long-polls for updates after offset.
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)

	// AnswerCallbackQuery acknowledges an inline keyboard press.
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error
}

// BotClient is the HTTP implementation of Client.
type BotClient struct {
	token      string
	base       string
	httpClient *http.Client
}

// NewBotClient creates a Bot API client. Call deadlines come from the
// caller's context; the underlying client sets no global timeout so long
// polls are not cut short.
func NewBotClient(token, base string) (*BotClient, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if base == "" {
		base = DefaultAPIBase
	}
	return &BotClient{
		token:      token,
		base:       base,
		httpClient: &http.Client{},
	}, nil
}

// SendMessage implements Client.
func (c *BotClient) SendMessage(ctx context.Context, req *SendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetUpdates implements Client. timeout is the server-side long-poll window;
// the request context gets a slightly longer deadline.
func (c *BotClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout+10*time.Second)
	defer cancel()

	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message", "channel_post", "callback_query"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// AnswerCallbackQuery implements Client.
func (c *BotClient) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	payload := map[string]any{"callback_query_id": callbackQueryID}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

// call POSTs one Bot API method and decodes the response envelope into out.
func (c *BotClient) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.base, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordTelegramCall(method, "transport_error")
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.RecordTelegramCall(method, "transport_error")
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		metrics.RecordTelegramCall(method, "transport_error")
		return fmt.Errorf("unparseable %s response: %w", method, err)
	}

	if !envelope.OK {
		metrics.RecordTelegramCall(method, "api_error")
		return &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}

	metrics.RecordTelegramCall(method, "ok")

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
