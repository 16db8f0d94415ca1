package service

import (
	"context"

	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

// Snapshot сводка состояния симулятора на момент запроса
type Snapshot struct {
	Customers        int              `json:"customers"`
	PaymentIntents   int              `json:"payment_intents"`
	Subscriptions    int              `json:"subscriptions"`
	PendingWebhooks  int              `json:"pending_webhooks"`
	RecentEvents     []eventlog.Entry `json:"recent_events"`
	EventLogCapacity int              `json:"event_log_capacity"`
	RealisticDelays  bool             `json:"realistic_delays"`
	FailureInjection bool             `json:"failure_injection"`
}

// StatusService отладочная сводка внутреннего состояния симулятора
type StatusService interface {
	Snapshot(ctx context.Context) Snapshot
	RecentEvents(limit int) []eventlog.Entry
	TestCards() []simulator.TestCard
}

type statusService struct {
	customers     repository.CustomerRepository
	intents       repository.PaymentIntentRepository
	subscriptions repository.SubscriptionRepository
	dispatcher    WebhookDispatcher
	delayer       *simulator.Delayer
	injector      *simulator.FailureInjector
	journal       *eventlog.Log
	log           *logger.Logger
}

// NewStatusService создает новый сервис отладочной сводки
func NewStatusService(
	customers repository.CustomerRepository,
	intents repository.PaymentIntentRepository,
	subscriptions repository.SubscriptionRepository,
	dispatcher WebhookDispatcher,
	delayer *simulator.Delayer,
	injector *simulator.FailureInjector,
	journal *eventlog.Log,
	log *logger.Logger,
) StatusService {
	return &statusService{
		customers:     customers,
		intents:       intents,
		subscriptions: subscriptions,
		dispatcher:    dispatcher,
		delayer:       delayer,
		injector:      injector,
		journal:       journal,
		log:           log,
	}
}

// Snapshot возвращает сводку состояния симулятора
func (s *statusService) Snapshot(ctx context.Context) Snapshot {
	s.log.Debug("Building simulator status snapshot")

	return Snapshot{
		Customers:        s.customers.Count(ctx),
		PaymentIntents:   s.intents.Count(ctx),
		Subscriptions:    s.subscriptions.Count(ctx),
		PendingWebhooks:  s.dispatcher.PendingCount(),
		RecentEvents:     s.journal.Recent(10),
		EventLogCapacity: s.journal.Capacity(),
		RealisticDelays:  s.delayer.Enabled(),
		FailureInjection: s.injector.Enabled(),
	}
}

// RecentEvents возвращает последние записи журнала, новые в начале
func (s *statusService) RecentEvents(limit int) []eventlog.Entry {
	return s.journal.Recent(limit)
}

// TestCards возвращает список поддерживаемых тестовых карт
func (s *statusService) TestCards() []simulator.TestCard {
	return s.injector.Cards()
}
