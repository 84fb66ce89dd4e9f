// Package notify runs the post-video pipeline: config lookup, composition,
// dispatch and the delivery audit trail.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/composer"
	"github.com/nowplaying/notification-platform/internal/dispatch"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

// AuditSink receives one event per dispatch attempt. Nil sinks are allowed;
// auditing is best-effort and never blocks delivery results.
type AuditSink interface {
	PublishDelivery(ctx context.Context, event *model.DeliveryEvent) error
}

// Service orchestrates one notification end to end.
type Service struct {
	store      store.Store
	dispatcher *dispatch.Dispatcher
	audit      AuditSink
	logger     *logger.Logger
}

// NewService creates the pipeline service. audit may be nil.
func NewService(st store.Store, d *dispatch.Dispatcher, audit AuditSink, log *logger.Logger) *Service {
	return &Service{
		store:      st,
		dispatcher: d,
		audit:      audit,
		logger:     log,
	}
}

// Notify turns a (user, video) pair into a delivered message. A non-nil
// error means the pipeline stopped before any delivery attempt; otherwise
// the result reports the single attempt's classification.
func (s *Service) Notify(ctx context.Context, req model.NotificationRequest) (model.DeliveryResult, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.DestinationID) == "" {
		return model.DeliveryResult{}, model.ErrInvalidRequest
	}

	cfg, err := s.store.Get(ctx, req.UserID)
	if err != nil {
		return model.DeliveryResult{}, err
	}

	text, err := composer.Compose(cfg, req.VideoTitle, req.VideoURL)
	if err != nil {
		return model.DeliveryResult{}, err
	}

	result := s.dispatcher.Send(ctx, req.DestinationID, text)
	s.publishAudit(req, result)
	return result, nil
}

func (s *Service) publishAudit(req model.NotificationRequest, result model.DeliveryResult) {
	if s.audit == nil {
		return
	}

	event := &model.DeliveryEvent{
		ID:            uuid.Must(uuid.NewV7()).String(),
		UserID:        req.UserID,
		DestinationID: req.DestinationID,
		Outcome:       result.Outcome,
		VideoTitle:    req.VideoTitle,
		VideoURL:      req.VideoURL,
		CreatedAt:     time.Now(),
	}
	if result.Err != nil {
		event.Reason = result.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.audit.PublishDelivery(ctx, event); err != nil {
		s.logger.Warn("failed to publish delivery event",
			zap.String("user_id", req.UserID), zap.Error(err))
	}
}
