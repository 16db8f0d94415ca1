package repository

import (
	"context"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

// CachedSubscriptionRepository реализует SubscriptionRepository с кешированием
// чтений в Redis поверх основного хранилища. Ошибки кеша не прерывают
// основной поток.
type CachedSubscriptionRepository struct {
	repo  SubscriptionRepository
	cache *RedisCacheRepository
	log   *logger.Logger
}

// NewCachedSubscriptionRepository создает новый репозиторий с кешированием
func NewCachedSubscriptionRepository(
	repo SubscriptionRepository,
	cache *RedisCacheRepository,
	log *logger.Logger,
) SubscriptionRepository {
	return &CachedSubscriptionRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetAll возвращает все подписки из основного хранилища
func (r *CachedSubscriptionRepository) GetAll(ctx context.Context) ([]domain.Subscription, error) {
	return r.repo.GetAll(ctx)
}

// GetByID получает подписку по ID (сначала из кеша, потом из хранилища)
func (r *CachedSubscriptionRepository) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	cachedSub, err := r.cache.GetCachedSubscription(ctx, id)
	if err != nil {
		r.log.Warnw("Error getting subscription from cache", "error", err, "subscriptionID", id)
		// Продолжаем выполнение при ошибке кеша
	}

	if cachedSub != nil {
		r.log.Debugw("Subscription found in cache", "subscriptionID", id)
		return *cachedSub, nil
	}

	sub, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, err
	}

	if err := r.cache.CacheSubscription(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after fetching", "error", err, "subscriptionID", id)
	}

	return sub, nil
}

// GetByCustomerID возвращает подписки клиента (сначала из кеша, потом из хранилища)
func (r *CachedSubscriptionRepository) GetByCustomerID(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	cachedSubs, err := r.cache.GetCachedCustomerSubscriptions(ctx, customerID)
	if err != nil {
		r.log.Warnw("Error getting customer subscriptions from cache", "error", err, "customerID", customerID)
	}

	if len(cachedSubs) > 0 {
		r.log.Debugw("Customer subscriptions found in cache", "customerID", customerID, "count", len(cachedSubs))
		return cachedSubs, nil
	}

	subs, err := r.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if len(subs) > 0 {
		if err := r.cache.CacheCustomerSubscriptions(ctx, customerID, subs); err != nil {
			r.log.Warnw("Failed to cache customer subscriptions", "error", err, "customerID", customerID)
		}
	}

	return subs, nil
}

// Create сохраняет подписку в хранилище и кеширует ее
func (r *CachedSubscriptionRepository) Create(ctx context.Context, subscription domain.Subscription) (domain.Subscription, error) {
	created, err := r.repo.Create(ctx, subscription)
	if err != nil {
		return domain.Subscription{}, err
	}

	if err := r.cache.CacheSubscription(ctx, created); err != nil {
		r.log.Warnw("Failed to cache subscription after creation", "error", err, "subscriptionID", created.ID)
	}

	// Инвалидируем кеш списка подписок клиента
	if err := r.cache.InvalidateCustomerSubscriptionsCache(ctx, created.CustomerID); err != nil {
		r.log.Warnw("Failed to invalidate customer subscriptions cache", "error", err, "customerID", created.CustomerID)
	}

	return created, nil
}

// Update обновляет подписку в хранилище и кеше
func (r *CachedSubscriptionRepository) Update(ctx context.Context, subscription domain.Subscription) error {
	if err := r.repo.Update(ctx, subscription); err != nil {
		return err
	}

	if err := r.cache.CacheSubscription(ctx, subscription); err != nil {
		r.log.Warnw("Failed to update subscription in cache", "error", err, "subscriptionID", subscription.ID)
	}

	if err := r.cache.InvalidateCustomerSubscriptionsCache(ctx, subscription.CustomerID); err != nil {
		r.log.Warnw("Failed to invalidate customer subscriptions cache after update", "error", err, "customerID", subscription.CustomerID)
	}

	return nil
}

// Count возвращает число подписок в основном хранилище
func (r *CachedSubscriptionRepository) Count(ctx context.Context) int {
	return r.repo.Count(ctx)
}
