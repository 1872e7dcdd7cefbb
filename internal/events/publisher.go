package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
)

const TypeStatusChanged = "plant.status_changed"

// StatusChanged is emitted when a watering command changes a plant's status.
type StatusChanged struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	PlantID    string    `json:"plant_id"`
	Owner      string    `json:"owner"`
	Command    string    `json:"command"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewStatusChanged(plantID, owner, command, status string) StatusChanged {
	return StatusChanged{
		EventID:    uuid.NewString(),
		Type:       TypeStatusChanged,
		PlantID:    plantID,
		Owner:      owner,
		Command:    command,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by plant id, so one plant's events stay
// ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
	cb     *gobreaker.CircuitBreaker
}

// NewKafkaPublisher builds a publisher for topic. While cb is open, publishes
// fail immediately instead of waiting on the write timeout. cb may be nil.
func NewKafkaPublisher(brokers []string, topic string, cb *gobreaker.CircuitBreaker) *KafkaPublisher {
	return &KafkaPublisher{writer: newWriter(brokers, topic), cb: cb}
}

// newWriter publishes from the request path, one event per call, so a batch
// is flushed as soon as it holds one message.
func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

func (p *KafkaPublisher) PublishStatusChanged(ctx context.Context, ev StatusChanged) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.PlantID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	}
	write := func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	}
	if p.cb != nil {
		_, err = p.cb.Execute(write)
	} else {
		_, err = write()
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Close shuts down the Kafka producer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
