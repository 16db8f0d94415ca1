package domain

import "time"

// PaymentIntentStatus статус платежного намерения
type PaymentIntentStatus string

const (
	PaymentIntentStatusRequiresPaymentMethod PaymentIntentStatus = "requires_payment_method"
	PaymentIntentStatusProcessing            PaymentIntentStatus = "processing"
	PaymentIntentStatusSucceeded             PaymentIntentStatus = "succeeded"
	PaymentIntentStatusCanceled              PaymentIntentStatus = "canceled"
)

// PaymentIntent представляет собой модель платежного намерения.
// Сумма хранится в минимальных единицах валюты (центах).
type PaymentIntent struct {
	ID           string              `json:"id"`
	Amount       int64               `json:"amount"`
	Currency     string              `json:"currency"`
	Status       PaymentIntentStatus `json:"status"`
	ClientSecret string              `json:"client_secret"`
	CustomerID   string              `json:"customer_id"`
	LastError    string              `json:"last_error,omitempty"`
	Metadata     map[string]string   `json:"metadata,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Terminal сообщает, находится ли платеж в конечном состоянии.
// Конечные состояния неизменяемы.
func (p PaymentIntent) Terminal() bool {
	return p.Status == PaymentIntentStatusSucceeded || p.Status == PaymentIntentStatusCanceled
}

// PaymentIntentRequest представляет запрос на создание платежного намерения
type PaymentIntentRequest struct {
	Amount     int64             `json:"amount" binding:"required,gt=0"`
	Currency   string            `json:"currency" binding:"required,len=3"`
	CustomerID string            `json:"customer_id,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ConfirmPaymentIntentRequest представляет запрос на подтверждение платежа.
// Пустой номер карты означает всегда успешную тестовую карту.
type ConfirmPaymentIntentRequest struct {
	CardNumber string `json:"card_number,omitempty"`
}
