package service

import (
	"context"
	"fmt"
	"time"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/metrics"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

// SubscriptionService интерфейс сервиса подписок
type SubscriptionService interface {
	GetAll(ctx context.Context) ([]domain.Subscription, error)
	GetByID(ctx context.Context, id string) (domain.Subscription, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]domain.Subscription, error)

	// Create создает активную подписку с оплаченным периодом,
	// рассчитанным от момента создания
	Create(ctx context.Context, req domain.SubscriptionRequest) (domain.Subscription, error)

	// Update изменяет флаг отложенной отмены и метаданные подписки.
	// Установка CancelAtPeriodEnd не меняет статус подписки.
	Update(ctx context.Context, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error)

	// Cancel немедленно отменяет подписку. Повторная отмена идемпотентна.
	Cancel(ctx context.Context, id string) (domain.Subscription, error)

	// Renew продлевает подписку на следующий период, начинающийся
	// с конца текущего
	Renew(ctx context.Context, id string) (domain.Subscription, error)
}

type subscriptionService struct {
	repo       repository.SubscriptionRepository
	customers  repository.CustomerRepository
	catalog    *PriceCatalog
	delayer    *simulator.Delayer
	dispatcher WebhookDispatcher
	journal    *eventlog.Log
	metrics    metrics.SimulatorMetrics
	log        *logger.Logger
}

// NewSubscriptionService создает новый сервис подписок
func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	customers repository.CustomerRepository,
	catalog *PriceCatalog,
	delayer *simulator.Delayer,
	dispatcher WebhookDispatcher,
	journal *eventlog.Log,
	m metrics.SimulatorMetrics,
	log *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		repo:       repo,
		customers:  customers,
		catalog:    catalog,
		delayer:    delayer,
		dispatcher: dispatcher,
		journal:    journal,
		metrics:    m,
		log:        log,
	}
}

func (s *subscriptionService) GetAll(ctx context.Context) ([]domain.Subscription, error) {
	s.log.Debug("Getting all subscriptions")
	return s.repo.GetAll(ctx)
}

func (s *subscriptionService) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	s.log.Debug("Getting subscription by ID: %s", id)
	return s.repo.GetByID(ctx, id)
}

func (s *subscriptionService) GetByCustomerID(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	s.log.Debug("Getting subscriptions for customer: %s", customerID)
	return s.repo.GetByCustomerID(ctx, customerID)
}

// Create создает активную подписку
func (s *subscriptionService) Create(ctx context.Context, req domain.SubscriptionRequest) (domain.Subscription, error) {
	s.log.Debugw("Creating subscription", "customerID", req.CustomerID, "items", len(req.Items))

	if len(req.Items) == 0 {
		return domain.Subscription{}, domain.ErrInvalidInput
	}

	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return domain.Subscription{}, domain.NewNotFoundError("customer", req.CustomerID)
	}

	items := make([]domain.SubscriptionItem, 0, len(req.Items))
	var plan domain.PlanType
	for _, itemReq := range req.Items {
		item, itemPlan := s.catalog.Resolve(itemReq)
		// Разовые цены оформляются платежом, не подпиской
		if itemPlan == domain.PlanTypeLifetime {
			return domain.Subscription{}, fmt.Errorf("%w: price %s is not recurring", domain.ErrInvalidOperation, itemReq.PriceID)
		}
		if plan == "" {
			plan = itemPlan
		}
		items = append(items, item)
	}

	if err := s.delayer.Wait(ctx, simulator.OpCreate); err != nil {
		return domain.Subscription{}, err
	}

	now := time.Now()
	subscription := domain.Subscription{
		ID:                 domain.NewID(domain.IDPrefixSubscription),
		CustomerID:         req.CustomerID,
		Status:             domain.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.Add(PeriodLength(items[0].Interval)),
		Items:              items,
		Metadata:           req.Metadata,
	}

	created, err := s.repo.Create(ctx, subscription)
	if err != nil {
		s.log.Error("Failed to create subscription: %v", err)
		return domain.Subscription{}, err
	}

	s.journal.Append("subscription.created", map[string]interface{}{
		"subscription_id": created.ID,
		"customer_id":     created.CustomerID,
		"plan":            string(plan),
	})
	s.metrics.IncSubscriptionCreated(string(plan))
	s.metrics.IncSubscriptionStatus(string(created.Status))

	s.dispatcher.Dispatch(domain.WebhookEventTypeSubscriptionCreated, created)

	s.log.Infow("Created subscription", "subscriptionID", created.ID, "plan", plan)
	return created, nil
}

// Update изменяет флаг отложенной отмены и метаданные подписки
func (s *subscriptionService) Update(ctx context.Context, id string, req domain.SubscriptionUpdateRequest) (domain.Subscription, error) {
	s.log.Debugw("Updating subscription", "subscriptionID", id)

	subscription, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, domain.NewNotFoundError("subscription", id)
	}

	if subscription.Status == domain.SubscriptionStatusCanceled {
		return subscription, domain.ErrInvalidOperation
	}

	if req.CancelAtPeriodEnd != nil {
		subscription.CancelAtPeriodEnd = *req.CancelAtPeriodEnd
	}
	if len(req.Metadata) > 0 {
		if subscription.Metadata == nil {
			subscription.Metadata = make(map[string]string, len(req.Metadata))
		}
		for k, v := range req.Metadata {
			subscription.Metadata[k] = v
		}
	}

	if err := s.repo.Update(ctx, subscription); err != nil {
		return domain.Subscription{}, err
	}

	s.journal.Append("subscription.updated", map[string]interface{}{
		"subscription_id":      subscription.ID,
		"cancel_at_period_end": subscription.CancelAtPeriodEnd,
	})

	s.dispatcher.Dispatch(domain.WebhookEventTypeSubscriptionUpdated, subscription)

	s.log.Infow("Updated subscription", "subscriptionID", subscription.ID,
		"cancelAtPeriodEnd", subscription.CancelAtPeriodEnd)
	return subscription, nil
}

// Cancel немедленно отменяет подписку
func (s *subscriptionService) Cancel(ctx context.Context, id string) (domain.Subscription, error) {
	s.log.Debugw("Canceling subscription", "subscriptionID", id)

	subscription, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, domain.NewNotFoundError("subscription", id)
	}

	// Повторная отмена не публикует событие
	if subscription.Status == domain.SubscriptionStatusCanceled {
		return subscription, nil
	}

	now := time.Now()
	subscription.Status = domain.SubscriptionStatusCanceled
	subscription.CancelAtPeriodEnd = true
	subscription.CanceledAt = &now

	if err := s.repo.Update(ctx, subscription); err != nil {
		return domain.Subscription{}, err
	}

	s.journal.Append("subscription.canceled", map[string]interface{}{
		"subscription_id": subscription.ID,
	})
	s.metrics.IncSubscriptionStatus(string(subscription.Status))

	s.dispatcher.Dispatch(domain.WebhookEventTypeSubscriptionDeleted, subscription)

	s.log.Infow("Canceled subscription", "subscriptionID", subscription.ID)
	return subscription, nil
}

// Renew продлевает подписку на следующий период
func (s *subscriptionService) Renew(ctx context.Context, id string) (domain.Subscription, error) {
	s.log.Debugw("Renewing subscription", "subscriptionID", id)

	subscription, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Subscription{}, domain.NewNotFoundError("subscription", id)
	}

	if subscription.Status == domain.SubscriptionStatusCanceled {
		return subscription, domain.ErrInvalidOperation
	}
	if subscription.CancelAtPeriodEnd {
		// Отложенная отмена вступает в силу вместо продления
		return s.Cancel(ctx, id)
	}

	// Новый период начинается с конца текущего, без дрейфа
	subscription.CurrentPeriodStart = subscription.CurrentPeriodEnd
	subscription.CurrentPeriodEnd = subscription.CurrentPeriodStart.Add(PeriodLength(subscription.Interval()))
	subscription.Status = domain.SubscriptionStatusActive

	if err := s.repo.Update(ctx, subscription); err != nil {
		return domain.Subscription{}, err
	}

	s.journal.Append("subscription.renewed", map[string]interface{}{
		"subscription_id": subscription.ID,
		"period_end":      subscription.CurrentPeriodEnd,
	})

	s.dispatcher.Dispatch(domain.WebhookEventTypeSubscriptionUpdated, subscription)

	s.log.Infow("Renewed subscription", "subscriptionID", subscription.ID,
		"periodEnd", subscription.CurrentPeriodEnd)
	return subscription, nil
}
