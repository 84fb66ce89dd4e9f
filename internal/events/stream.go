package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/model"
)

const (
	// StreamName is the notification audit stream.
	StreamName = "NOTIFICATIONS"

	// SubjectPrefix is the prefix for all notification subjects.
	SubjectPrefix = "notify"

	// VideoSubject carries inbound now-playing events from external
	// producers (extension bridge, webhook relays).
	VideoSubject = "notify.video.played"

	// videoConsumerName is the durable consumer for inbound video events.
	videoConsumerName = "video-dispatch"
)

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the notifications stream exists.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil // Stream already exists
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024, // 1GB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Delivery audit events and inbound video events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// DeliverySubject returns the audit subject for an outcome.
func DeliverySubject(outcome model.Outcome) string {
	return fmt.Sprintf("%s.delivery.%s", SubjectPrefix, outcome)
}

// PublishDelivery publishes one delivery audit event.
func (m *StreamManager) PublishDelivery(ctx context.Context, event *model.DeliveryEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery event: %w", err)
	}

	if _, err := m.client.JetStream().Publish(ctx, DeliverySubject(event.Outcome), data); err != nil {
		return fmt.Errorf("failed to publish delivery event: %w", err)
	}
	return nil
}

// VideoHandler processes one inbound video event.
type VideoHandler func(ctx context.Context, event model.VideoEvent)

// ConsumeVideoEvents starts a durable consumer feeding inbound video events
// to the handler. The returned stop function drains the consumer.
func (m *StreamManager) ConsumeVideoEvents(ctx context.Context, handler VideoHandler) (func(), error) {
	js := m.client.JetStream()

	consumer, err := js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       videoConsumerName,
		FilterSubject: VideoSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create video consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var event model.VideoEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			m.client.logger.Warn("discarding unparseable video event", zap.Error(err))
			_ = msg.Ack()
			return
		}

		handler(context.Background(), event)
		_ = msg.Ack()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start video consumer: %w", err)
	}

	return cc.Stop, nil
}
