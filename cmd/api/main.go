// Package main is the entry point for the notification platform server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nowplaying/notification-platform/internal/bot"
	"github.com/nowplaying/notification-platform/internal/config"
	"github.com/nowplaying/notification-platform/internal/conversation"
	"github.com/nowplaying/notification-platform/internal/dispatch"
	"github.com/nowplaying/notification-platform/internal/events"
	"github.com/nowplaying/notification-platform/internal/handler"
	"github.com/nowplaying/notification-platform/internal/middleware"
	"github.com/nowplaying/notification-platform/internal/model"
	"github.com/nowplaying/notification-platform/internal/notify"
	"github.com/nowplaying/notification-platform/internal/store"
	"github.com/nowplaying/notification-platform/internal/telegram"
	"github.com/nowplaying/notification-platform/pkg/logger"
	"github.com/nowplaying/notification-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting notification platform")

	// Initialize tracing if enabled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "notification-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the configuration store
	configStore, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open config store", zap.Error(err))
		os.Exit(1)
	}
	defer configStore.Close()
	log.Info("config store ready", zap.String("driver", cfg.StoreDriver))

	// Connect to the Telegram Bot API
	if cfg.TelegramToken == "" {
		log.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}
	tgClient, err := telegram.NewBotClient(cfg.TelegramToken, cfg.TelegramAPIBase)
	if err != nil {
		log.Error("failed to create telegram client", zap.Error(err))
		os.Exit(1)
	}

	// Connect to NATS when the event stream is enabled
	var eventsClient *events.Client
	var streamManager *events.StreamManager
	var auditSink notify.AuditSink
	if cfg.EventsEnabled {
		eventsClient, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer eventsClient.Close()

		streamManager = events.NewStreamManager(eventsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		auditSink = streamManager
	}

	// Initialize services
	engine := conversation.NewEngine(configStore, log)
	dispatcher := dispatch.New(tgClient, cfg.DispatchTimeout, log)
	notifySvc := notify.NewService(configStore, dispatcher, auditSink, log)

	// Start the bot transport
	if cfg.BotEnabled {
		router := bot.NewRouter(engine, configStore, tgClient, log)
		poller := bot.NewPoller(tgClient, router, cfg.TelegramPollTimeout, log)
		go poller.Run(ctx)
	}

	// Start the inbound video-event consumer
	if streamManager != nil {
		stop, err := streamManager.ConsumeVideoEvents(ctx, func(ctx context.Context, event model.VideoEvent) {
			_, err := notifySvc.Notify(ctx, model.NotificationRequest{
				UserID:        event.UserID,
				DestinationID: event.DestinationID,
				VideoTitle:    event.VideoTitle,
				VideoURL:      event.VideoURL,
			})
			if err != nil {
				log.Warn("video event dropped", zap.String("user_id", event.UserID), zap.Error(err))
			}
		})
		if err != nil {
			log.Error("failed to start video consumer", zap.Error(err))
			os.Exit(1)
		}
		defer stop()
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(eventsClient)
	configHandler := handler.NewConfigHandler(configStore, log)
	notifyHandler := handler.NewNotifyHandler(notifySvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/config/{user_id}", configHandler.Get)
		r.Post("/notify", notifyHandler.Send)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Stop the poller and consumer, then drain the HTTP server.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// openStore builds the configured store driver.
func openStore(cfg *config.Config) (store.Store, error) {
	switch store.Driver(cfg.StoreDriver) {
	case store.DriverFile:
		return store.New(store.DriverFile, store.WithPath(cfg.StorePath))

	case store.DriverMemory:
		return store.New(store.DriverMemory)

	case store.DriverRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		return store.New(store.DriverRedis, store.WithRedisClient(redis.NewClient(opts)))

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
