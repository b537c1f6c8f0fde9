package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"servicehub/background-worker-service/internal/app/background-worker/entity"
	"servicehub/background-worker-service/internal/app/background-worker/service"
	"servicehub/pkg/logger"
	"servicehub/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaConsumer читает события маркетплейса из одного топика
// На каждый топик (review_events, service_events) создается свой consumer
// в одной группе потребителей
type KafkaConsumer struct {
	reader    *kafka.Reader
	ratingSvc service.RatingServiceInterface
	topic     string
	groupID   string
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewKafkaConsumer создает новый Kafka consumer
func NewKafkaConsumer(
	brokers []string,
	topic string,
	groupID string,
	minBytes int,
	maxBytes int,
	ratingSvc service.RatingServiceInterface,
) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
		ReadBackoffMin: 100 * time.Millisecond,
		ReadBackoffMax: 1 * time.Second,
	})

	return &KafkaConsumer{
		reader:    reader,
		ratingSvc: ratingSvc,
		topic:     topic,
		groupID:   groupID,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start запускает consumer в отдельной горутине
func (c *KafkaConsumer) Start(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Msg("Starting Kafka consumer")
	go c.consume(ctx)
}

// Stop останавливает consumer и дожидается завершения обработки
func (c *KafkaConsumer) Stop() {
	logger.Info().Str("topic", c.topic).Msg("Stopping Kafka consumer")
	close(c.stopChan)
	<-c.doneChan
	c.reader.Close()
	logger.Info().Str("topic", c.topic).Msg("Kafka consumer stopped")
}

// consume читает и обрабатывает сообщения из Kafka
func (c *KafkaConsumer) consume(ctx context.Context) {
	defer close(c.doneChan)

	for {
		select {
		case <-c.stopChan:
			return
		default:
			readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			message, err := c.reader.FetchMessage(readCtx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				// Таймаут чтения при пустом топике - штатная ситуация
				if readCtx.Err() != nil {
					continue
				}
				logger.Error().Err(err).Str("topic", c.topic).Msg("Error fetching message")
				metrics.RecordKafkaError("background-worker", c.topic, "fetch")
				time.Sleep(time.Second)
				continue
			}

			if err := c.processMessage(ctx, message); err != nil {
				logger.Error().
					Err(err).
					Str("topic", c.topic).
					Int64("offset", message.Offset).
					Msg("Error processing message")
				metrics.RecordKafkaError("background-worker", c.topic, "process")
				// Offset не коммитим - сообщение будет обработано повторно
			} else {
				metrics.RecordKafkaMessageConsumed("background-worker", c.topic, c.groupID)
				if err := c.reader.CommitMessages(ctx, message); err != nil {
					logger.Error().Err(err).Str("topic", c.topic).Msg("Error committing message")
				}
			}
		}
	}
}

// processMessage обрабатывает одно сообщение из Kafka
func (c *KafkaConsumer) processMessage(ctx context.Context, message kafka.Message) error {
	var event entity.MarketplaceEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal marketplace event: %w", err)
	}

	logger.Info().
		Str("event_type", event.EventType).
		Str("topic", c.topic).
		Int64("offset", message.Offset).
		Int("partition", message.Partition).
		Msg("Received event")

	if err := c.ratingSvc.ProcessEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to process marketplace event: %w", err)
	}

	return nil
}

// GetStats возвращает статистику consumer
func (c *KafkaConsumer) GetStats() kafka.ReaderStats {
	return c.reader.Stats()
}
