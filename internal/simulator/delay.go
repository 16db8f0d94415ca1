package simulator

import (
	"context"
	"math/rand"
	"time"
)

// Operation вид операции для подбора симулируемой задержки
type Operation string

const (
	OpCreate  Operation = "create"
	OpConfirm Operation = "confirm"
	OpWebhook Operation = "webhook"
)

// Диапазоны задержек, имитирующие сеть и обработку платежа
const (
	createDelayBase   = 300 * time.Millisecond
	createDelayJitter = 200 * time.Millisecond

	confirmDelayBase   = 1500 * time.Millisecond
	confirmDelayJitter = 500 * time.Millisecond
)

// Delayer симулирует задержки сети и обработки платежного провайдера.
// При выключенных реалистичных задержках все операции завершаются немедленно.
type Delayer struct {
	enabled      bool
	webhookDelay time.Duration
}

// NewDelayer создает новый симулятор задержек
func NewDelayer(enabled bool, webhookDelay time.Duration) *Delayer {
	return &Delayer{
		enabled:      enabled,
		webhookDelay: webhookDelay,
	}
}

// Enabled сообщает, включены ли реалистичные задержки
func (d *Delayer) Enabled() bool {
	return d.enabled
}

// Duration возвращает случайную задержку для указанного вида операции
func (d *Delayer) Duration(op Operation) time.Duration {
	if !d.enabled {
		return 0
	}

	switch op {
	case OpCreate:
		return createDelayBase + time.Duration(rand.Int63n(int64(createDelayJitter)))
	case OpConfirm:
		return confirmDelayBase + time.Duration(rand.Int63n(int64(confirmDelayJitter)))
	case OpWebhook:
		return d.webhookDelay
	default:
		return 0
	}
}

// Wait приостанавливает выполнение на длительность задержки операции.
// Возвращает ошибку контекста, если тот отменен раньше.
func (d *Delayer) Wait(ctx context.Context, op Operation) error {
	delay := d.Duration(op)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
