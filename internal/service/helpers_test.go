package service

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/metrics"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

// testEnv собирает полный граф сервисов с выключенными задержками
// и без внешних зависимостей
type testEnv struct {
	customerRepo  *repository.InMemoryCustomerRepository
	intentRepo    *repository.InMemoryPaymentIntentRepository
	subscribeRepo *repository.InMemorySubscriptionRepository

	journal    *eventlog.Log
	injector   *simulator.FailureInjector
	dispatcher WebhookDispatcher

	customers     CustomerService
	intents       PaymentIntentService
	subscriptions SubscriptionService
	checkout      CheckoutService
	status        StatusService
}

func newTestLogger() *logger.Logger {
	log := logger.New(logger.FATAL)
	log.SetOutput(io.Discard)
	return log
}

func newTestEnv() *testEnv {
	log := newTestLogger()

	journal := eventlog.New(eventlog.DefaultCapacity)
	delayer := simulator.NewDelayer(false, 0)
	injector := simulator.NewFailureInjector(true)
	simMetrics := metrics.NewSimulatorMetrics(prometheus.NewRegistry(), log)

	customerRepo := repository.NewInMemoryCustomerRepository(log)
	intentRepo := repository.NewInMemoryPaymentIntentRepository(log)
	subscribeRepo := repository.NewInMemorySubscriptionRepository(log)

	dispatcher := NewWebhookDispatcher(delayer, 1, time.Millisecond, nil, journal, simMetrics, log)

	catalog := NewPriceCatalog()
	customers := NewCustomerService(customerRepo, journal, log)
	intents := NewPaymentIntentService(intentRepo, customers, delayer, injector, dispatcher, journal, simMetrics, log)
	subscriptions := NewSubscriptionService(subscribeRepo, customerRepo, catalog, delayer, dispatcher, journal, simMetrics, log)
	checkout := NewCheckoutService(customers, intents, subscriptions, catalog, journal, log)
	status := NewStatusService(customerRepo, intentRepo, subscribeRepo, dispatcher, delayer, injector, journal, log)

	return &testEnv{
		customerRepo:  customerRepo,
		intentRepo:    intentRepo,
		subscribeRepo: subscribeRepo,
		journal:       journal,
		injector:      injector,
		dispatcher:    dispatcher,
		customers:     customers,
		intents:       intents,
		subscriptions: subscriptions,
		checkout:      checkout,
		status:        status,
	}
}
