package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config структура конфигурации приложения
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Simulator SimulatorConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// LoggingConfig конфигурация логгера
type LoggingConfig struct {
	Level string
}

// SimulatorConfig конфигурация платежного симулятора
type SimulatorConfig struct {
	// RealisticDelays включает искусственные задержки операций.
	// При false все операции завершаются немедленно.
	RealisticDelays bool

	// FailureInjection включает отказы по известным тестовым картам
	FailureInjection bool

	// WebhookDelay задержка перед доставкой вебхука
	WebhookDelay time.Duration

	// WebhookMaxRetries число повторных попыток доставки вебхука
	WebhookMaxRetries int

	// WebhookRetryBackoff базовая пауза перед повторной доставкой,
	// удваивается с каждой попыткой
	WebhookRetryBackoff time.Duration

	// EventLogCapacity емкость журнала событий
	EventLogCapacity int
}

// RedisConfig конфигурация Redis (опциональный кеш подписок)
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled сообщает, настроен ли Redis
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// KafkaConfig конфигурация Kafka (опциональная публикация событий)
type KafkaConfig struct {
	Brokers []string
}

// Enabled сообщает, настроена ли Kafka
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Load загружает конфигурацию из переменных окружения.
// Отсутствие .env файла не является ошибкой.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Simulator: SimulatorConfig{
			RealisticDelays:     getEnvAsBool("SIM_REALISTIC_DELAYS", true),
			FailureInjection:    getEnvAsBool("SIM_FAILURE_INJECTION", true),
			WebhookDelay:        getEnvAsDuration("SIM_WEBHOOK_DELAY", 2*time.Second),
			WebhookMaxRetries:   getEnvAsInt("SIM_WEBHOOK_MAX_RETRIES", 1),
			WebhookRetryBackoff: getEnvAsDuration("SIM_WEBHOOK_RETRY_BACKOFF", 5*time.Second),
			EventLogCapacity:    getEnvAsInt("SIM_EVENT_LOG_CAPACITY", 100),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsSlice("KAFKA_BROKERS"),
		},
	}

	return cfg, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration получает значение переменной окружения как time.Duration
// или возвращает значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsSlice получает значение переменной окружения как список строк,
// разделенных запятыми
func getEnvAsSlice(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
