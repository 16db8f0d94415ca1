package domain

import "time"

// WebhookEventType тип события вебхука
type WebhookEventType string

const (
	// События платежей
	WebhookEventTypePaymentIntentSucceeded WebhookEventType = "payment_intent.succeeded"
	WebhookEventTypePaymentIntentFailed    WebhookEventType = "payment_intent.payment_failed"

	// События подписок
	WebhookEventTypeSubscriptionCreated WebhookEventType = "customer.subscription.created"
	WebhookEventTypeSubscriptionUpdated WebhookEventType = "customer.subscription.updated"
	WebhookEventTypeSubscriptionDeleted WebhookEventType = "customer.subscription.deleted"
)

// WebhookPayload оборачивает затронутый объект события
type WebhookPayload struct {
	Object interface{} `json:"object"`
}

// WebhookEvent представляет событие вебхука.
// Processed выставляется только после успешной доставки.
type WebhookEvent struct {
	ID           string           `json:"id"`
	Type         WebhookEventType `json:"type"`
	Payload      WebhookPayload   `json:"payload"`
	Processed    bool             `json:"processed"`
	AttemptCount int              `json:"attempt_count"`
	LastError    string           `json:"last_error,omitempty"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}
