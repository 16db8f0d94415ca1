package service

import (
	"context"
	"sync"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/kafka"
	"github.com/velstore/paysim/internal/metrics"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

// WebhookHandler локальный обработчик доставки события.
// Замещает эндпоинт вебхука, который регистрировало бы остальное
// приложение в реальном развертывании.
type WebhookHandler func(event domain.WebhookEvent) error

// WebhookDispatcher интерфейс диспетчера вебхуков. Отвязывает изменение
// состояния от асинхронной доставки уведомления: доставка планируется
// строго после постановки в очередь, с ограниченным числом повторов.
type WebhookDispatcher interface {
	// Dispatch ставит событие в очередь и планирует отложенную доставку.
	// Возвращает снимок события на момент постановки.
	Dispatch(eventType domain.WebhookEventType, object interface{}) domain.WebhookEvent

	// GetEvents возвращает последние события очереди, новые в начале
	GetEvents(limit int) []domain.WebhookEvent

	// GetEventByID возвращает событие по ID
	GetEventByID(id string) (domain.WebhookEvent, error)

	// PendingCount возвращает число еще не доставленных событий
	PendingCount() int

	// SetHandler заменяет локальный обработчик доставки
	SetHandler(handler WebhookHandler)

	// Wait блокируется до завершения всех запланированных доставок
	Wait()
}

// webhookDispatcher реализация диспетчера вебхуков
type webhookDispatcher struct {
	mu      sync.RWMutex
	events  map[string]*domain.WebhookEvent
	order   []string
	handler WebhookHandler

	delayer      *simulator.Delayer
	maxRetries   int
	retryBackoff time.Duration
	producer     kafka.Producer // может быть nil
	journal      *eventlog.Log
	metrics      metrics.SimulatorMetrics
	log          *logger.Logger
	wg           sync.WaitGroup
}

// NewWebhookDispatcher создает новый диспетчер вебхуков.
// producer может быть nil, если зеркалирование в Kafka не настроено.
func NewWebhookDispatcher(
	delayer *simulator.Delayer,
	maxRetries int,
	retryBackoff time.Duration,
	producer kafka.Producer,
	journal *eventlog.Log,
	m metrics.SimulatorMetrics,
	log *logger.Logger,
) WebhookDispatcher {
	d := &webhookDispatcher{
		events:       make(map[string]*domain.WebhookEvent),
		delayer:      delayer,
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		producer:     producer,
		journal:      journal,
		metrics:      m,
		log:          log,
	}
	d.handler = d.defaultHandler
	return d
}

// Dispatch ставит событие в очередь и планирует отложенную доставку
func (d *webhookDispatcher) Dispatch(eventType domain.WebhookEventType, object interface{}) domain.WebhookEvent {
	event := domain.WebhookEvent{
		ID:        domain.NewID(domain.IDPrefixWebhookEvent),
		Type:      eventType,
		Payload:   domain.WebhookPayload{Object: object},
		CreatedAt: time.Now(),
	}

	d.mu.Lock()
	stored := event
	d.events[event.ID] = &stored
	d.order = append(d.order, event.ID)
	d.mu.Unlock()

	d.journal.Append("webhook.enqueued", map[string]interface{}{
		"event_id": event.ID,
		"type":     string(eventType),
	})
	d.metrics.IncWebhookEnqueued(string(eventType))
	d.log.Debugw("Webhook event enqueued", "eventID", event.ID, "type", eventType)

	// Зеркалирование в Kafka не влияет на доставку
	if d.producer != nil {
		d.wg.Add(1)
		go func(ev domain.WebhookEvent) {
			defer d.wg.Done()
			topic := kafka.TopicForEvent(ev.Type)
			if err := d.producer.PublishWebhookEvent(context.Background(), topic, ev); err != nil {
				d.log.Warnw("Failed to mirror webhook event to Kafka", "eventID", ev.ID, "error", err)
			}
		}(event)
	}

	d.wg.Add(1)
	go d.deliver(event.ID)

	return event
}

// deliver выполняет отложенную доставку события с ограниченными повторами.
// Ошибки доставки не доходят до инициатора: они наблюдаемы только через
// журнал, метрики и статус события.
func (d *webhookDispatcher) deliver(id string) {
	defer d.wg.Done()

	if err := d.delayer.Wait(context.Background(), simulator.OpWebhook); err != nil {
		return
	}

	backoff := d.retryBackoff
	for attempt := 0; ; attempt++ {
		event, err := d.GetEventByID(id)
		if err != nil {
			return
		}

		d.mu.RLock()
		handler := d.handler
		d.mu.RUnlock()

		deliveryErr := handler(event)
		d.recordAttempt(id, deliveryErr)

		if deliveryErr == nil {
			d.journal.Append("webhook.delivered", map[string]interface{}{
				"event_id": id,
				"type":     string(event.Type),
				"attempts": attempt + 1,
			})
			d.metrics.IncWebhookDelivered(string(event.Type))
			d.log.Infow("Webhook event delivered", "eventID", id, "type", event.Type, "attempts", attempt+1)
			return
		}

		d.journal.Append("webhook.delivery_failed", map[string]interface{}{
			"event_id": id,
			"type":     string(event.Type),
			"error":    deliveryErr.Error(),
		})
		d.log.Errorw("Webhook delivery failed", "eventID", id, "type", event.Type, "error", deliveryErr)

		if attempt >= d.maxRetries {
			d.journal.Append("webhook.gave_up", map[string]interface{}{
				"event_id": id,
				"type":     string(event.Type),
				"attempts": attempt + 1,
			})
			d.metrics.IncWebhookFailed(string(event.Type))
			d.log.Errorw("Webhook delivery retries exhausted", "eventID", id, "type", event.Type, "attempts", attempt+1)
			return
		}

		d.metrics.IncWebhookRetried(string(event.Type))
		time.Sleep(backoff)
		backoff *= 2
	}
}

// recordAttempt фиксирует результат попытки доставки
func (d *webhookDispatcher) recordAttempt(id string, deliveryErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	event, exists := d.events[id]
	if !exists {
		return
	}

	event.AttemptCount++
	if deliveryErr == nil {
		event.Processed = true
		event.LastError = ""
		now := time.Now()
		event.ProcessedAt = &now
	} else {
		event.LastError = deliveryErr.Error()
	}
}

// defaultHandler доставка по умолчанию: структурированное логирование
// затронутого объекта в зависимости от типа события
func (d *webhookDispatcher) defaultHandler(event domain.WebhookEvent) error {
	switch obj := event.Payload.Object.(type) {
	case domain.PaymentIntent:
		d.log.Infow("Webhook received",
			"type", event.Type,
			"intentID", obj.ID,
			"amount", obj.Amount,
			"currency", obj.Currency,
			"status", obj.Status,
		)
	case domain.Subscription:
		d.log.Infow("Webhook received",
			"type", event.Type,
			"subscriptionID", obj.ID,
			"customerID", obj.CustomerID,
			"status", obj.Status,
			"periodEnd", obj.CurrentPeriodEnd,
		)
	default:
		d.log.Infow("Webhook received", "type", event.Type)
	}
	return nil
}

// GetEvents возвращает последние события очереди, новые в начале
func (d *webhookDispatcher) GetEvents(limit int) []domain.WebhookEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if limit <= 0 || limit > len(d.order) {
		limit = len(d.order)
	}

	out := make([]domain.WebhookEvent, 0, limit)
	for i := len(d.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *d.events[d.order[i]])
	}

	return out
}

// GetEventByID возвращает событие по ID
func (d *webhookDispatcher) GetEventByID(id string) (domain.WebhookEvent, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	event, exists := d.events[id]
	if !exists {
		return domain.WebhookEvent{}, domain.ErrNotFound
	}

	return *event, nil
}

// PendingCount возвращает число еще не доставленных событий
func (d *webhookDispatcher) PendingCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	pending := 0
	for _, event := range d.events {
		if !event.Processed {
			pending++
		}
	}

	return pending
}

// SetHandler заменяет локальный обработчик доставки
func (d *webhookDispatcher) SetHandler(handler WebhookHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if handler == nil {
		handler = d.defaultHandler
	}
	d.handler = handler
}

// Wait блокируется до завершения всех запланированных доставок
func (d *webhookDispatcher) Wait() {
	d.wg.Wait()
}
