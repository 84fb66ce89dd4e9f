package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/telegram"
	"github.com/nowplaying/notification-platform/pkg/logger"
)

// Poller long-polls getUpdates and feeds the router. Run blocks until the
// context is cancelled.
type Poller struct {
	client      telegram.Client
	router      *Router
	pollTimeout time.Duration
	logger      *logger.Logger
}

// NewPoller creates an update poller.
func NewPoller(client telegram.Client, router *Router, pollTimeout time.Duration, log *logger.Logger) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	return &Poller{
		client:      client,
		router:      router,
		pollTimeout: pollTimeout,
		logger:      log,
	}
}

// Run polls until ctx is cancelled. Poll failures back off briefly; the
// update offset guarantees each update is handled at most once per process.
func (p *Poller) Run(ctx context.Context) {
	var offset int64

	p.logger.Info("bot poller started")
	for {
		updates, err := p.client.GetUpdates(ctx, offset, p.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("bot poller stopped")
				return
			}
			p.logger.Warn("getUpdates failed", zap.Error(err))
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				p.logger.Info("bot poller stopped")
				return
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			p.router.HandleUpdate(ctx, u)
		}

		if ctx.Err() != nil {
			p.logger.Info("bot poller stopped")
			return
		}
	}
}
