package app

import (
	"github.com/gin-gonic/gin"

	"github.com/velstore/paysim/internal/config"
	"github.com/velstore/paysim/internal/http/handlers"
	"github.com/velstore/paysim/internal/middleware"
	"github.com/velstore/paysim/internal/service"
	"github.com/velstore/paysim/pkg/logger"
)

// App представляет собой контейнер для всех компонентов приложения
type App struct {
	Config               *config.Config
	CustomerHandler      *handlers.CustomerHandler
	PaymentIntentHandler *handlers.PaymentIntentHandler
	SubscriptionHandler  *handlers.SubscriptionHandler
	CheckoutHandler      *handlers.CheckoutHandler
	DebugHandler         *handlers.DebugHandler
	LoggerMiddleware     gin.HandlerFunc
	Logger               *logger.Logger
}

// Services собирает сервисы симулятора для передачи в приложение
type Services struct {
	Customers      service.CustomerService
	PaymentIntents service.PaymentIntentService
	Subscriptions  service.SubscriptionService
	Checkout       service.CheckoutService
	Status         service.StatusService
	Webhooks       service.WebhookDispatcher
}

// NewApp создает и инициализирует новый экземпляр приложения
func NewApp(cfg *config.Config, services Services, log *logger.Logger) *App {
	return &App{
		Config:               cfg,
		CustomerHandler:      handlers.NewCustomerHandler(services.Customers, services.PaymentIntents, services.Subscriptions, log),
		PaymentIntentHandler: handlers.NewPaymentIntentHandler(services.PaymentIntents, log),
		SubscriptionHandler:  handlers.NewSubscriptionHandler(services.Subscriptions, log),
		CheckoutHandler:      handlers.NewCheckoutHandler(services.Checkout, log),
		DebugHandler:         handlers.NewDebugHandler(services.Status, services.Webhooks, log),
		LoggerMiddleware:     middleware.RequestLogger(log),
		Logger:               log,
	}
}
