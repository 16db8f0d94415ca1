package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/velstore/paysim/pkg/logger"
)

// SimulatorMetrics интерфейс для метрик платежного симулятора
type SimulatorMetrics interface {
	IncIntentCreated(currency string)
	IncIntentSucceeded(currency string)
	IncIntentFailed(currency, declineCode string)
	ObserveIntentAmount(amount float64, currency, status string)

	IncSubscriptionCreated(plan string)
	IncSubscriptionStatus(status string)

	IncWebhookEnqueued(eventType string)
	IncWebhookDelivered(eventType string)
	IncWebhookRetried(eventType string)
	IncWebhookFailed(eventType string)
}

type simulatorMetrics struct {
	log *logger.Logger

	intentsCreated *prometheus.CounterVec
	intentsStatus  *prometheus.CounterVec
	intentsAmount  *prometheus.HistogramVec

	subscriptionsCreated *prometheus.CounterVec
	subscriptionsStatus  *prometheus.CounterVec

	webhooksEnqueued  *prometheus.CounterVec
	webhooksDelivered *prometheus.CounterVec
	webhooksRetried   *prometheus.CounterVec
	webhooksFailed    *prometheus.CounterVec
}

// NewSimulatorMetrics создает новые метрики симулятора
func NewSimulatorMetrics(registry *prometheus.Registry, log *logger.Logger) SimulatorMetrics {
	intentsCreated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_created_total",
			Help: "The total number of created payment intents",
		},
		[]string{"currency"},
	)

	intentsStatus := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_status_total",
			Help: "The total number of payment intents by terminal status",
		},
		[]string{"status", "currency", "decline_code"},
	)

	intentsAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_intents_amount",
			Help:    "Payment intent amounts distribution in minor currency units",
			Buckets: prometheus.ExponentialBuckets(100, 10, 5), // 100, 1000, ..., 1000000
		},
		[]string{"currency", "status"},
	)

	subscriptionsCreated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "The total number of created subscriptions",
		},
		[]string{"plan"},
	)

	subscriptionsStatus := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscriptions_status_total",
			Help: "The total number of subscription status transitions",
		},
		[]string{"status"},
	)

	webhooksEnqueued := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_enqueued_total",
			Help: "The total number of enqueued webhook events",
		},
		[]string{"type"},
	)

	webhooksDelivered := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_delivered_total",
			Help: "The total number of successfully delivered webhook events",
		},
		[]string{"type"},
	)

	webhooksRetried := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_retried_total",
			Help: "The total number of webhook delivery retries",
		},
		[]string{"type"},
	)

	webhooksFailed := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_failed_total",
			Help: "The total number of webhook events that exhausted retries",
		},
		[]string{"type"},
	)

	return &simulatorMetrics{
		log:                  log,
		intentsCreated:       intentsCreated,
		intentsStatus:        intentsStatus,
		intentsAmount:        intentsAmount,
		subscriptionsCreated: subscriptionsCreated,
		subscriptionsStatus:  subscriptionsStatus,
		webhooksEnqueued:     webhooksEnqueued,
		webhooksDelivered:    webhooksDelivered,
		webhooksRetried:      webhooksRetried,
		webhooksFailed:       webhooksFailed,
	}
}

// IncIntentCreated увеличивает счетчик созданных платежных намерений
func (m *simulatorMetrics) IncIntentCreated(currency string) {
	m.intentsCreated.WithLabelValues(currency).Inc()
}

// IncIntentSucceeded увеличивает счетчик успешных платежей
func (m *simulatorMetrics) IncIntentSucceeded(currency string) {
	m.intentsStatus.WithLabelValues("succeeded", currency, "").Inc()
}

// IncIntentFailed увеличивает счетчик отклоненных платежей
func (m *simulatorMetrics) IncIntentFailed(currency, declineCode string) {
	m.intentsStatus.WithLabelValues("canceled", currency, declineCode).Inc()
}

// ObserveIntentAmount записывает сумму платежа в гистограмму
func (m *simulatorMetrics) ObserveIntentAmount(amount float64, currency, status string) {
	m.intentsAmount.WithLabelValues(currency, status).Observe(amount)
}

// IncSubscriptionCreated увеличивает счетчик созданных подписок
func (m *simulatorMetrics) IncSubscriptionCreated(plan string) {
	m.subscriptionsCreated.WithLabelValues(plan).Inc()
}

// IncSubscriptionStatus увеличивает счетчик переходов статуса подписки
func (m *simulatorMetrics) IncSubscriptionStatus(status string) {
	m.subscriptionsStatus.WithLabelValues(status).Inc()
}

// IncWebhookEnqueued увеличивает счетчик поставленных в очередь вебхуков
func (m *simulatorMetrics) IncWebhookEnqueued(eventType string) {
	m.webhooksEnqueued.WithLabelValues(eventType).Inc()
}

// IncWebhookDelivered увеличивает счетчик доставленных вебхуков
func (m *simulatorMetrics) IncWebhookDelivered(eventType string) {
	m.webhooksDelivered.WithLabelValues(eventType).Inc()
}

// IncWebhookRetried увеличивает счетчик повторных доставок
func (m *simulatorMetrics) IncWebhookRetried(eventType string) {
	m.webhooksRetried.WithLabelValues(eventType).Inc()
}

// IncWebhookFailed увеличивает счетчик невыполненных доставок
func (m *simulatorMetrics) IncWebhookFailed(eventType string) {
	m.webhooksFailed.WithLabelValues(eventType).Inc()
}
