package simulator

import (
	"strings"

	"github.com/velstore/paysim/internal/domain"
)

// Известные тестовые карты
const (
	CardSuccess                = "4242424242424242"
	CardDeclined               = "4000000000000002"
	CardInsufficientFunds      = "4000000000009995"
	CardLost                   = "4000000000009987"
	CardStolen                 = "4000000000009979"
	CardProcessingError        = "4000000000000119"
	CardAuthenticationRequired = "4000002500003155"
)

// TestCard описывает тестовую карту и исход подтверждения платежа с ней.
// Пустой Code означает успешный платеж.
type TestCard struct {
	Number      string `json:"number"`
	Code        string `json:"code,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description"`
}

// Declines сообщает, приводит ли карта к отказу
func (c TestCard) Declines() bool {
	return c.Code != ""
}

// Статическая таблица тестовых карт. Формулировки причин отказа
// повторяют сообщения реального платежного провайдера.
var testCards = []TestCard{
	{
		Number:      CardSuccess,
		Description: "Always succeeds",
	},
	{
		Number:      CardDeclined,
		Code:        "card_declined",
		Reason:      "Your card was declined.",
		Description: "Generic decline",
	},
	{
		Number:      CardInsufficientFunds,
		Code:        "insufficient_funds",
		Reason:      "Your card has insufficient funds.",
		Description: "Insufficient funds decline",
	},
	{
		Number:      CardLost,
		Code:        "lost_card",
		Reason:      "Your card was declined because it was reported lost.",
		Description: "Lost card decline",
	},
	{
		Number:      CardStolen,
		Code:        "stolen_card",
		Reason:      "Your card was declined because it was reported stolen.",
		Description: "Stolen card decline",
	},
	{
		Number:      CardProcessingError,
		Code:        "processing_error",
		Reason:      "An error occurred while processing your card. Try again in a little while.",
		Description: "Processing error decline",
	},
	{
		Number:      CardAuthenticationRequired,
		Code:        "authentication_required",
		Reason:      "Your card requires authentication.",
		Description: "Authentication required decline",
	},
}

// FailureInjector решает по номеру карты, должен ли платеж завершиться
// отказом. Неизвестные и пустые номера никогда не приводят к отказу.
type FailureInjector struct {
	enabled bool
}

// NewFailureInjector создает новую таблицу инъекции отказов
func NewFailureInjector(enabled bool) *FailureInjector {
	return &FailureInjector{enabled: enabled}
}

// Enabled сообщает, включена ли инъекция отказов
func (f *FailureInjector) Enabled() bool {
	return f.enabled
}

// Check возвращает ошибку отказа для известной отклоняемой карты
// или nil, если платеж должен пройти
func (f *FailureInjector) Check(cardNumber string) *domain.DeclineError {
	if !f.enabled {
		return nil
	}

	card, known := f.Classify(cardNumber)
	if !known || !card.Declines() {
		return nil
	}

	return domain.NewDeclineError(card.Code, card.Reason)
}

// Classify сопоставляет номер карты с таблицей тестовых карт
func (f *FailureInjector) Classify(cardNumber string) (TestCard, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(cardNumber), " ", "")
	for _, card := range testCards {
		if card.Number == normalized {
			return card, true
		}
	}
	return TestCard{}, false
}

// Cards возвращает все известные тестовые карты
func (f *FailureInjector) Cards() []TestCard {
	out := make([]TestCard, len(testCards))
	copy(out, testCards)
	return out
}
