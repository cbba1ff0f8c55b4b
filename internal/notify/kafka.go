package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"appointment-booking/pkg/utils"
)

// KafkaPublisher writes booking events to a single topic, keyed by
// enrollment id so one booking's events stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(config utils.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      config.Brokers,
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	})

	return &KafkaPublisher{
		writer: writer,
		log:    log.With(zap.String("component", "kafka")),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EnrollmentID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	p.log.Debug("Event published",
		zap.String("type", event.Type),
		zap.String("enrollment_id", event.EnrollmentID.String()),
	)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
