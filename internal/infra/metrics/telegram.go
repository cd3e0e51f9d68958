package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		telegramAPICallsTotal,
		telegramAPILatency,
		webhookUpdatesTotal,
		webhookRejectedTotal,
	)
}

var (
	telegramAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_notifier_telegram_api_calls_total",
			Help: "Calls to the Telegram Bot API by method and result.",
		},
		[]string{"method", "result"}, // result: ok | error
	)

	telegramAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forum_notifier_telegram_api_latency_ms",
			Help:    "Telegram Bot API call latency in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"method"},
	)

	webhookUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_notifier_webhook_updates_total",
			Help: "Inbound webhook updates by classified intent.",
		},
		[]string{"intent"},
	)

	webhookRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forum_notifier_webhook_rejected_total",
			Help: "Inbound webhook calls rejected at the gate.",
		},
		[]string{"reason"}, // disabled | bad_secret | unavailable
	)
)

func ObserveTelegramCall(method string, ok bool, took time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	telegramAPICallsTotal.WithLabelValues(method, result).Inc()
	telegramAPILatency.WithLabelValues(method).Observe(float64(took.Milliseconds()))
}

func IncWebhookUpdate(intent string) {
	webhookUpdatesTotal.WithLabelValues(norm(intent)).Inc()
}

func IncWebhookRejected(reason string) {
	webhookRejectedTotal.WithLabelValues(norm(reason)).Inc()
}
