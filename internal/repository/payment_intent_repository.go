package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

// PaymentIntentRepository интерфейс для работы с платежными намерениями.
// Платежи никогда не удаляются и доступны по ID до конца жизни процесса.
type PaymentIntentRepository interface {
	GetAll(ctx context.Context) ([]domain.PaymentIntent, error)
	GetByID(ctx context.Context, id string) (domain.PaymentIntent, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]domain.PaymentIntent, error)
	Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error)
	Update(ctx context.Context, intent domain.PaymentIntent) error

	// UpdateIfStatus обновляет намерение, только если его текущий статус
	// равен expected. При несовпадении возвращает ErrConflict, запись
	// остается нетронутой.
	UpdateIfStatus(ctx context.Context, intent domain.PaymentIntent, expected domain.PaymentIntentStatus) error

	Count(ctx context.Context) int
}

// InMemoryPaymentIntentRepository реализация репозитория в памяти
type InMemoryPaymentIntentRepository struct {
	intents map[string]domain.PaymentIntent
	mutex   sync.RWMutex
	log     *logger.Logger
}

// NewInMemoryPaymentIntentRepository создает новый репозиторий платежных намерений в памяти
func NewInMemoryPaymentIntentRepository(log *logger.Logger) *InMemoryPaymentIntentRepository {
	return &InMemoryPaymentIntentRepository{
		intents: make(map[string]domain.PaymentIntent),
		log:     log,
	}
}

// GetAll возвращает все платежные намерения, новые в начале
func (r *InMemoryPaymentIntentRepository) GetAll(ctx context.Context) ([]domain.PaymentIntent, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	intents := make([]domain.PaymentIntent, 0, len(r.intents))
	for _, intent := range r.intents {
		intents = append(intents, intent)
	}

	sort.Slice(intents, func(i, j int) bool {
		return intents[i].CreatedAt.After(intents[j].CreatedAt)
	})

	return intents, nil
}

// GetByID возвращает платежное намерение по ID
func (r *InMemoryPaymentIntentRepository) GetByID(ctx context.Context, id string) (domain.PaymentIntent, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	intent, exists := r.intents[id]
	if !exists {
		return domain.PaymentIntent{}, ErrNotFound
	}

	return intent, nil
}

// GetByCustomerID возвращает платежные намерения клиента
func (r *InMemoryPaymentIntentRepository) GetByCustomerID(ctx context.Context, customerID string) ([]domain.PaymentIntent, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	intents := make([]domain.PaymentIntent, 0)
	for _, intent := range r.intents {
		if intent.CustomerID == customerID {
			intents = append(intents, intent)
		}
	}

	sort.Slice(intents, func(i, j int) bool {
		return intents[i].CreatedAt.After(intents[j].CreatedAt)
	})

	return intents, nil
}

// Create создает новое платежное намерение
func (r *InMemoryPaymentIntentRepository) Create(ctx context.Context, intent domain.PaymentIntent) (domain.PaymentIntent, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	intent.CreatedAt = time.Now()
	intent.UpdatedAt = time.Now()

	r.intents[intent.ID] = intent

	return intent, nil
}

// Update обновляет существующее платежное намерение
func (r *InMemoryPaymentIntentRepository) Update(ctx context.Context, intent domain.PaymentIntent) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, exists := r.intents[intent.ID]
	if !exists {
		return ErrNotFound
	}

	intent.UpdatedAt = time.Now()
	r.intents[intent.ID] = intent

	return nil
}

// UpdateIfStatus атомарно обновляет намерение при совпадении статуса.
// Проверка и запись выполняются под одной блокировкой, поэтому две
// конкурирующие финализации не могут пройти одновременно.
func (r *InMemoryPaymentIntentRepository) UpdateIfStatus(ctx context.Context, intent domain.PaymentIntent, expected domain.PaymentIntentStatus) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.intents[intent.ID]
	if !exists {
		return ErrNotFound
	}
	if existing.Status != expected {
		r.log.Debug("Status conflict for intent %s: have %s, expected %s", intent.ID, existing.Status, expected)
		return ErrConflict
	}

	intent.CreatedAt = existing.CreatedAt
	intent.UpdatedAt = time.Now()
	r.intents[intent.ID] = intent

	return nil
}

// Count возвращает число платежных намерений
func (r *InMemoryPaymentIntentRepository) Count(ctx context.Context) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.intents)
}
