package infra

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher forwards domain events to a topic, keyed by entity id so
// all events of one resource land on one partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		w: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		}),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev models.ResourceEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("kafka write %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
