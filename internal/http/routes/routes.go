package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velstore/paysim/internal/app"
	"github.com/velstore/paysim/pkg/logger"
)

// SetupRoutes настраивает все маршруты API для Gin роутера
func SetupRoutes(router *gin.Engine, app *app.App, registry *prometheus.Registry, log *logger.Logger) {
	// Промежуточное ПО для всех запросов
	router.Use(app.LoggerMiddleware)
	router.Use(gin.Recovery())

	// Метрики Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Группа API
	api := router.Group("/api/v1")
	{
		// Здоровье сервиса
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// Клиенты
		customers := api.Group("/customers")
		{
			customers.POST("", app.CustomerHandler.Create)
			customers.GET("", app.CustomerHandler.List)
			customers.GET("/:customer_id", app.CustomerHandler.Get)
			customers.GET("/:customer_id/payment_intents", app.CustomerHandler.PaymentIntents)
			customers.GET("/:customer_id/subscriptions", app.CustomerHandler.Subscriptions)
		}

		// Платежные намерения
		intents := api.Group("/payment_intents")
		{
			intents.POST("", app.PaymentIntentHandler.Create)
			intents.GET("", app.PaymentIntentHandler.List)
			intents.GET("/:intent_id", app.PaymentIntentHandler.Get)
			intents.POST("/:intent_id/confirm", app.PaymentIntentHandler.Confirm)
			intents.POST("/:intent_id/fail", app.PaymentIntentHandler.SimulateFailure)
		}

		// Подписки
		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.POST("", app.SubscriptionHandler.Create)
			subscriptions.GET("", app.SubscriptionHandler.List)
			subscriptions.GET("/:subscription_id", app.SubscriptionHandler.Get)
			subscriptions.PATCH("/:subscription_id", app.SubscriptionHandler.Update)
			subscriptions.DELETE("/:subscription_id", app.SubscriptionHandler.Cancel)
			subscriptions.POST("/:subscription_id/renew", app.SubscriptionHandler.Renew)
		}

		// Сценарии покупки
		checkout := api.Group("/checkout")
		{
			checkout.POST("/purchase", app.CheckoutHandler.Purchase)
			checkout.POST("/access_pass", app.CheckoutHandler.AccessPass)
		}

		// События вебхуков
		webhooks := api.Group("/webhook_events")
		{
			webhooks.GET("", app.DebugHandler.WebhookEvents)
			webhooks.GET("/:event_id", app.DebugHandler.WebhookEvent)
		}

		// Отладочная сводка симулятора
		debug := api.Group("/debug")
		{
			debug.GET("/status", app.DebugHandler.Status)
			debug.GET("/events", app.DebugHandler.Events)
			debug.GET("/test_cards", app.DebugHandler.TestCards)
		}
	}

	log.Infow("API routes successfully configured")
}
