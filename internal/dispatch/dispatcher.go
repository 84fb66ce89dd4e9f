// Package dispatch delivers rendered notifications to the external messaging
// endpoint and classifies the outcome.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/telegram"
	"github.com/nowplaying/notification-platform/pkg/logger"
	"github.com/nowplaying/notification-platform/pkg/metrics"
)

// Dispatcher performs exactly one delivery attempt per call. There is no
// internal retry: repeating a delivery duplicates a user-visible message, so
// retrying is the caller's explicit decision.
type Dispatcher struct {
	client  telegram.Client
	timeout time.Duration
	logger  *logger.Logger
}

// New creates a dispatcher. timeout bounds every delivery attempt; on expiry
// the result is a transport error, never an indefinite hang.
func New(client telegram.Client, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		client:  client,
		timeout: timeout,
		logger:  log,
	}
}

// Send delivers rendered text to a destination channel. Empty inputs fail
// immediately with no network attempt. The endpoint may still have received
// the message when a timeout is reported; that ambiguity is inherent.
func (d *Dispatcher) Send(ctx context.Context, destinationID, text string) model.DeliveryResult {
	if strings.TrimSpace(destinationID) == "" {
		return invalid(fmt.Errorf("%w: empty destination", model.ErrInvalidRequest))
	}
	if strings.TrimSpace(text) == "" {
		return invalid(fmt.Errorf("%w: empty message text", model.ErrInvalidRequest))
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	_, err := d.client.SendMessage(ctx, &telegram.SendMessageRequest{
		ChatID:                destinationID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	elapsed := time.Since(start)

	result := d.classify(destinationID, err)
	metrics.RecordDelivery(string(result.Outcome), elapsed.Seconds())
	return result
}

func (d *Dispatcher) classify(destinationID string, err error) model.DeliveryResult {
	if err == nil {
		return model.DeliveryResult{Delivered: true, Outcome: model.OutcomeDelivered}
	}

	var apiErr *telegram.APIError
	if errors.As(err, &apiErr) {
		// The endpoint explicitly declined; its message is actionable for
		// the caller (fix destination id or bot permissions).
		return model.DeliveryResult{
			Outcome: model.OutcomeRejected,
			Err:     &model.RejectionError{Reason: apiErr.Description},
		}
	}

	// No interpretable response. Detail is logged, not exposed.
	d.logger.Warn("delivery transport failure",
		zap.String("destination_id", destinationID),
		zap.Error(err))
	return model.DeliveryResult{
		Outcome: model.OutcomeTransport,
		Err:     fmt.Errorf("%w: %v", model.ErrTransport, err),
	}
}

func invalid(err error) model.DeliveryResult {
	return model.DeliveryResult{Outcome: model.OutcomeInvalid, Err: err}
}
