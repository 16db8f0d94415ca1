package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/velstore/paysim/internal/app"
	"github.com/velstore/paysim/internal/config"
	"github.com/velstore/paysim/internal/eventlog"
	"github.com/velstore/paysim/internal/http/routes"
	"github.com/velstore/paysim/internal/kafka"
	"github.com/velstore/paysim/internal/metrics"
	"github.com/velstore/paysim/internal/repository"
	"github.com/velstore/paysim/internal/service"
	"github.com/velstore/paysim/internal/simulator"
	"github.com/velstore/paysim/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Инициализируем логгер
	log := logger.New(parseLogLevel(cfg.Logging.Level))
	log.Infow("Payment simulator starting up...")

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Журнал событий и примитивы симуляции
	journal := eventlog.New(cfg.Simulator.EventLogCapacity)
	delayer := simulator.NewDelayer(cfg.Simulator.RealisticDelays, cfg.Simulator.WebhookDelay)
	injector := simulator.NewFailureInjector(cfg.Simulator.FailureInjection)

	// Метрики Prometheus
	registry := prometheus.NewRegistry()
	simMetrics := metrics.NewSimulatorMetrics(registry, log)

	// Репозитории в памяти
	customerRepo := repository.NewInMemoryCustomerRepository(log)
	intentRepo := repository.NewInMemoryPaymentIntentRepository(log)
	baseSubscriptionRepo := repository.NewInMemorySubscriptionRepository(log)

	// Кеширование подписок через Redis, если настроено
	var subscriptionRepo repository.SubscriptionRepository = baseSubscriptionRepo
	if cfg.Redis.Enabled() {
		redisCache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Warnw("Failed to initialize Redis cache, continuing without caching", "error", err)
		} else {
			log.Infow("Redis cache initialized successfully")
			defer func() {
				if err := redisCache.Close(); err != nil {
					log.Errorw("Error closing Redis connection", "error", err)
				}
			}()
			subscriptionRepo = repository.NewCachedSubscriptionRepository(baseSubscriptionRepo, redisCache, log)
		}
	}

	// Kafka producer для зеркалирования событий, если настроен
	var producer kafka.Producer
	if cfg.Kafka.Enabled() {
		kafkaProducer, err := kafka.NewKafkaProducer(cfg.Kafka.Brokers, log)
		if err != nil {
			log.Warnw("Failed to initialize Kafka producer, continuing without event publishing", "error", err)
		} else {
			log.Infow("Kafka producer initialized")
			producer = kafkaProducer
			defer func() {
				if err := kafkaProducer.Close(); err != nil {
					log.Errorw("Error closing Kafka producer", "error", err)
				}
			}()
		}
	}

	// Диспетчер вебхуков
	dispatcher := service.NewWebhookDispatcher(
		delayer,
		cfg.Simulator.WebhookMaxRetries,
		cfg.Simulator.WebhookRetryBackoff,
		producer,
		journal,
		simMetrics,
		log,
	)

	// Сервисный слой
	catalog := service.NewPriceCatalog()
	customerService := service.NewCustomerService(customerRepo, journal, log)
	intentService := service.NewPaymentIntentService(intentRepo, customerService, delayer, injector, dispatcher, journal, simMetrics, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, customerRepo, catalog, delayer, dispatcher, journal, simMetrics, log)
	checkoutService := service.NewCheckoutService(customerService, intentService, subscriptionService, catalog, journal, log)
	statusService := service.NewStatusService(customerRepo, intentRepo, subscriptionRepo, dispatcher, delayer, injector, journal, log)

	// Приложение и HTTP сервер
	application := app.NewApp(cfg, app.Services{
		Customers:      customerService,
		PaymentIntents: intentService,
		Subscriptions:  subscriptionService,
		Checkout:       checkoutService,
		Status:         statusService,
		Webhooks:       dispatcher,
	}, log)

	router := gin.New()
	routes.SetupRoutes(router, application, registry, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Infow("Starting HTTP server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	// Даем запланированным доставкам вебхуков завершиться
	done := make(chan struct{})
	go func() {
		checkoutService.Wait()
		dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Infow("All pending webhook deliveries completed")
	case <-shutdownCtx.Done():
		log.Warnw("Shutdown timeout reached with pending webhook deliveries")
	}

	log.Infow("Payment simulator stopped")
}

// parseLogLevel преобразует строку уровня логирования в LogLevel
func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG
	case "warn", "warning":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
