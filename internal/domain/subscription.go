package domain

import "time"

// SubscriptionStatus статус подписки
type SubscriptionStatus string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
)

// PriceInterval период рекуррентного списания
type PriceInterval string

const (
	PriceIntervalMonth PriceInterval = "month"
	PriceIntervalYear  PriceInterval = "year"
)

// PlanType тип тарифа абонемента
type PlanType string

const (
	PlanTypeMonthly  PlanType = "monthly"
	PlanTypeYearly   PlanType = "yearly"
	PlanTypeLifetime PlanType = "lifetime"
)

// Valid проверяет, что тип тарифа известен
func (p PlanType) Valid() bool {
	switch p {
	case PlanTypeMonthly, PlanTypeYearly, PlanTypeLifetime:
		return true
	}
	return false
}

// SubscriptionItem позиция подписки с разрешенной ценой.
// Interval пустой для разовых (lifetime) цен.
type SubscriptionItem struct {
	PriceID    string        `json:"price_id"`
	UnitAmount int64         `json:"unit_amount"`
	Currency   string        `json:"currency"`
	Interval   PriceInterval `json:"interval,omitempty"`
}

// Subscription представляет собой модель подписки
type Subscription struct {
	ID                 string             `json:"id"`
	CustomerID         string             `json:"customer_id"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart time.Time          `json:"current_period_start"`
	CurrentPeriodEnd   time.Time          `json:"current_period_end"`
	CancelAtPeriodEnd  bool               `json:"cancel_at_period_end"`
	CanceledAt         *time.Time         `json:"canceled_at,omitempty"`
	Items              []SubscriptionItem `json:"items"`
	Metadata           map[string]string  `json:"metadata,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Interval возвращает интервал первой рекуррентной позиции подписки
func (s Subscription) Interval() PriceInterval {
	for _, item := range s.Items {
		if item.Interval != "" {
			return item.Interval
		}
	}
	return PriceIntervalMonth
}

// SubscriptionItemRequest ссылка на цену в запросе на подписку.
// PlanType задается явно; метаданные и подстроки в идентификаторе
// цены используются только как запасной вариант разрешения.
type SubscriptionItemRequest struct {
	PriceID  string            `json:"price_id" binding:"required"`
	PlanType PlanType          `json:"plan_type,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SubscriptionRequest представляет запрос на создание подписки
type SubscriptionRequest struct {
	CustomerID string                    `json:"customer_id" binding:"required"`
	Items      []SubscriptionItemRequest `json:"items" binding:"required,min=1"`
	Metadata   map[string]string         `json:"metadata,omitempty"`
}

// SubscriptionUpdateRequest представляет запрос на изменение подписки.
// Установка CancelAtPeriodEnd не меняет статус: отмена откладывается
// до конца оплаченного периода.
type SubscriptionUpdateRequest struct {
	CancelAtPeriodEnd *bool             `json:"cancel_at_period_end,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}
