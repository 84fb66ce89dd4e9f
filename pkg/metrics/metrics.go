// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// NotificationsTotal tracks dispatched notifications by outcome.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total notification dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// DeliveryDuration tracks how long a delivery attempt took.
	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_delivery_duration_seconds",
			Help:    "Delivery attempt duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"outcome"},
	)

	// ConfigUpdatesTotal tracks configuration writes by field.
	ConfigUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_updates_total",
			Help: "Total user configuration updates",
		},
		[]string{"field"},
	)

	// SessionsActive tracks open configuration dialogs.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_sessions_active",
			Help: "Number of open configuration dialogs",
		},
	)

	// BotCommandsTotal tracks handled bot commands.
	BotCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total bot commands handled",
		},
		[]string{"command"},
	)

	// TelegramCallsTotal tracks outbound Telegram API calls.
	TelegramCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_calls_total",
			Help: "Total Telegram Bot API calls",
		},
		[]string{"method", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordDelivery records metrics for one dispatch attempt.
func RecordDelivery(outcome string, duration float64) {
	NotificationsTotal.WithLabelValues(outcome).Inc()
	DeliveryDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordConfigUpdate records a configuration write for a field.
func RecordConfigUpdate(field string) {
	ConfigUpdatesTotal.WithLabelValues(field).Inc()
}

// RecordTelegramCall records one Telegram API call.
func RecordTelegramCall(method, status string) {
	TelegramCallsTotal.WithLabelValues(method, status).Inc()
}
