package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Префиксы идентификаторов сущностей
const (
	IDPrefixCustomer      = "cus"
	IDPrefixPaymentIntent = "pi"
	IDPrefixSubscription  = "sub"
	IDPrefixPrice         = "price"
	IDPrefixWebhookEvent  = "evt"
)

// NewID генерирует идентификатор сущности: префикс, миллисекундный
// таймштамп и случайный суффикс. Коллизии практически исключены.
func NewID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// NewClientSecret генерирует непрозрачный client secret для платежа
func NewClientSecret(intentID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	return fmt.Sprintf("%s_secret_%s", intentID, suffix)
}
