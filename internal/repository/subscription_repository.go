package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

// SubscriptionRepository интерфейс для работы с подписками.
// Подписки никогда не удаляются, отмена меняет только статус.
type SubscriptionRepository interface {
	GetAll(ctx context.Context) ([]domain.Subscription, error)
	GetByID(ctx context.Context, id string) (domain.Subscription, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]domain.Subscription, error)
	Create(ctx context.Context, subscription domain.Subscription) (domain.Subscription, error)
	Update(ctx context.Context, subscription domain.Subscription) error
	Count(ctx context.Context) int
}

// InMemorySubscriptionRepository реализация репозитория в памяти
type InMemorySubscriptionRepository struct {
	subscriptions map[string]domain.Subscription
	mutex         sync.RWMutex
	log           *logger.Logger
}

// NewInMemorySubscriptionRepository создает новый репозиторий подписок в памяти
func NewInMemorySubscriptionRepository(log *logger.Logger) *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{
		subscriptions: make(map[string]domain.Subscription),
		log:           log,
	}
}

// GetAll возвращает все подписки, новые в начале
func (r *InMemorySubscriptionRepository) GetAll(ctx context.Context) ([]domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	subscriptions := make([]domain.Subscription, 0, len(r.subscriptions))
	for _, subscription := range r.subscriptions {
		subscriptions = append(subscriptions, subscription)
	}

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].CreatedAt.After(subscriptions[j].CreatedAt)
	})

	return subscriptions, nil
}

// GetByID возвращает подписку по ID
func (r *InMemorySubscriptionRepository) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	subscription, exists := r.subscriptions[id]
	if !exists {
		return domain.Subscription{}, ErrNotFound
	}

	return subscription, nil
}

// GetByCustomerID возвращает подписки клиента
func (r *InMemorySubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	subscriptions := make([]domain.Subscription, 0)
	for _, subscription := range r.subscriptions {
		if subscription.CustomerID == customerID {
			subscriptions = append(subscriptions, subscription)
		}
	}

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].CreatedAt.After(subscriptions[j].CreatedAt)
	})

	return subscriptions, nil
}

// Create создает новую подписку
func (r *InMemorySubscriptionRepository) Create(ctx context.Context, subscription domain.Subscription) (domain.Subscription, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	subscription.CreatedAt = time.Now()
	subscription.UpdatedAt = time.Now()

	r.subscriptions[subscription.ID] = subscription

	return subscription, nil
}

// Update обновляет существующую подписку
func (r *InMemorySubscriptionRepository) Update(ctx context.Context, subscription domain.Subscription) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, exists := r.subscriptions[subscription.ID]
	if !exists {
		return ErrNotFound
	}

	subscription.UpdatedAt = time.Now()
	r.subscriptions[subscription.ID] = subscription

	return nil
}

// Count возвращает число подписок
func (r *InMemorySubscriptionRepository) Count(ctx context.Context) int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.subscriptions)
}
