package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/velstore/paysim/internal/domain"
	"github.com/velstore/paysim/pkg/logger"
)

// Топики для зеркалирования событий симулятора
const (
	TopicPaymentEvents      = "payment_events"
	TopicSubscriptionEvents = "subscription_events"
)

// TopicForEvent возвращает топик для события по его типу
func TopicForEvent(eventType domain.WebhookEventType) string {
	if strings.HasPrefix(string(eventType), "payment_intent.") {
		return TopicPaymentEvents
	}
	return TopicSubscriptionEvents
}

// Producer определяет интерфейс для публикации событий симулятора в Kafka.
type Producer interface {
	// PublishWebhookEvent отправляет событие вебхука в указанный топик.
	// Ключом сообщения служит ID события, чтобы сохранить порядок в партиции.
	PublishWebhookEvent(ctx context.Context, topic string, event domain.WebhookEvent) error
	// Close закрывает соединение продюсера Kafka.
	Close() error
}

// kafkaProducer реализует интерфейс Producer, используя segmentio/kafka-go.
type kafkaProducer struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewKafkaProducer создает и настраивает новый продюсер Kafka.
func NewKafkaProducer(brokers []string, log *logger.Logger) (Producer, error) {
	if len(brokers) == 0 {
		log.Errorw("Kafka brokers list is empty in config, cannot create producer")
		return nil, errors.New("kafka brokers are not configured")
	}

	// RequiredAcks: kafka.RequireOne - ждать подтверждения только от лидера партиции
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	log.Infow("Kafka producer initialized", "brokers", brokers)

	return &kafkaProducer{
		writer: writer,
		log:    log,
	}, nil
}

// PublishWebhookEvent преобразует событие в JSON и отправляет в указанный топик Kafka.
func (k *kafkaProducer) PublishWebhookEvent(ctx context.Context, topic string, event domain.WebhookEvent) error {
	messageValue, err := json.Marshal(event)
	if err != nil {
		k.log.Errorw("Failed to marshal webhook event to JSON for Kafka", "error", err, "eventID", event.ID, "topic", topic)
		return fmt.Errorf("kafka: failed to marshal message data: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(event.ID),
		Value: messageValue,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err = k.writer.WriteMessages(writeCtx, message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			k.log.Errorw("Kafka write timeout exceeded", "error", err, "topic", topic, "eventID", event.ID)
			return fmt.Errorf("kafka: write timeout: %w", err)
		}
		k.log.Errorw("Failed to write message to Kafka", "error", err, "topic", topic, "eventID", event.ID)
		return fmt.Errorf("kafka: failed to write message: %w", err)
	}

	k.log.Debugw("Published webhook event to Kafka", "topic", topic, "eventID", event.ID, "type", event.Type)
	return nil
}

// Close закрывает соединение Kafka Writer.
func (k *kafkaProducer) Close() error {
	k.log.Infow("Closing Kafka producer writer...")
	err := k.writer.Close()
	if err != nil {
		k.log.Errorw("Failed to close Kafka writer", "error", err)
		return fmt.Errorf("kafka: failed to close writer: %w", err)
	}
	k.log.Infow("Kafka producer writer closed successfully")
	return nil
}
