package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

const (
	// Префиксы ключей для различных типов данных
	subscriptionKeyPrefix          = "subscription:"
	customerSubscriptionsKeyPrefix = "customer_subscriptions:"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisCacheRepository реализует кеширование для репозиториев с использованием Redis
type RedisCacheRepository struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCacheRepository создает новый экземпляр Redis репозитория
func NewRedisCacheRepository(redisAddr, redisPassword string, redisDB int, log *logger.Logger) (*RedisCacheRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	// Проверяем соединение с Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infow("Connected to Redis successfully", "addr", redisAddr)
	return &RedisCacheRepository{
		client: client,
		log:    log,
	}, nil
}

// Close закрывает соединение с Redis
func (r *RedisCacheRepository) Close() error {
	return r.client.Close()
}

// CacheSubscription кеширует подписку в Redis
func (r *RedisCacheRepository) CacheSubscription(ctx context.Context, sub domain.Subscription) error {
	key := subscriptionKeyPrefix + sub.ID

	data, err := json.Marshal(sub)
	if err != nil {
		r.log.Errorw("Failed to marshal subscription for caching", "error", err, "subscriptionID", sub.ID)
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache subscription in Redis", "error", err, "subscriptionID", sub.ID)
		return fmt.Errorf("failed to cache subscription: %w", err)
	}

	r.log.Debugw("Subscription cached successfully", "subscriptionID", sub.ID)
	return nil
}

// GetCachedSubscription получает подписку из кеша.
// Отсутствие ключа не является ошибкой.
func (r *RedisCacheRepository) GetCachedSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	key := subscriptionKeyPrefix + subscriptionID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.log.Debugw("Subscription not found in cache", "subscriptionID", subscriptionID)
			return nil, nil
		}
		r.log.Errorw("Error getting subscription from Redis", "error", err, "subscriptionID", subscriptionID)
		return nil, fmt.Errorf("failed to get subscription from cache: %w", err)
	}

	var sub domain.Subscription
	if err := json.Unmarshal(data, &sub); err != nil {
		r.log.Errorw("Failed to unmarshal cached subscription", "error", err, "subscriptionID", subscriptionID)
		return nil, fmt.Errorf("failed to unmarshal cached subscription: %w", err)
	}

	r.log.Debugw("Subscription retrieved from cache", "subscriptionID", subscriptionID)
	return &sub, nil
}

// CacheCustomerSubscriptions кеширует список подписок клиента
func (r *RedisCacheRepository) CacheCustomerSubscriptions(ctx context.Context, customerID string, subs []domain.Subscription) error {
	key := customerSubscriptionsKeyPrefix + customerID

	data, err := json.Marshal(subs)
	if err != nil {
		r.log.Errorw("Failed to marshal customer subscriptions for caching", "error", err, "customerID", customerID)
		return fmt.Errorf("failed to marshal customer subscriptions: %w", err)
	}

	if err := r.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		r.log.Errorw("Failed to cache customer subscriptions in Redis", "error", err, "customerID", customerID)
		return fmt.Errorf("failed to cache customer subscriptions: %w", err)
	}

	r.log.Debugw("Customer subscriptions cached successfully", "customerID", customerID, "count", len(subs))
	return nil
}

// GetCachedCustomerSubscriptions получает список подписок клиента из кеша
func (r *RedisCacheRepository) GetCachedCustomerSubscriptions(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	key := customerSubscriptionsKeyPrefix + customerID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			r.log.Debugw("Customer subscriptions not found in cache", "customerID", customerID)
			return nil, nil
		}
		r.log.Errorw("Error getting customer subscriptions from Redis", "error", err, "customerID", customerID)
		return nil, fmt.Errorf("failed to get customer subscriptions from cache: %w", err)
	}

	var subs []domain.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		r.log.Errorw("Failed to unmarshal cached customer subscriptions", "error", err, "customerID", customerID)
		return nil, fmt.Errorf("failed to unmarshal cached customer subscriptions: %w", err)
	}

	r.log.Debugw("Customer subscriptions retrieved from cache", "customerID", customerID, "count", len(subs))
	return subs, nil
}

// InvalidateCustomerSubscriptionsCache удаляет кеш подписок клиента
func (r *RedisCacheRepository) InvalidateCustomerSubscriptionsCache(ctx context.Context, customerID string) error {
	key := customerSubscriptionsKeyPrefix + customerID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Errorw("Failed to invalidate customer subscriptions cache", "error", err, "customerID", customerID)
		return fmt.Errorf("failed to invalidate customer subscriptions cache: %w", err)
	}

	r.log.Debugw("Customer subscriptions cache invalidated", "customerID", customerID)
	return nil
}
