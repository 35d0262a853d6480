package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/ride-dispatch/internal/models"
)

// RideEvent is one committed lifecycle transition, as published to the
// event stream.
type RideEvent struct {
	RideID    string            `json:"ride_id"`
	Status    models.RideStatus `json:"status"`
	CaptainID string            `json:"captain_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Publisher writes ride lifecycle events to Kafka. A nil Publisher is valid
// and publishes nothing, which is how the stream is disabled when no
// brokers are configured. Publish failures are logged and swallowed; the
// ride's durable state is authoritative regardless.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a lifecycle event publisher, or nil when no brokers
// are given.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Publisher{writer: w}
}

// Publish emits one transition, fire-and-forget.
func (p *Publisher) Publish(ride *models.Ride) {
	if p == nil {
		return
	}

	event := RideEvent{
		RideID:    ride.ID.Hex(),
		Status:    ride.Status,
		Timestamp: time.Now(),
	}
	if ride.Captain != nil {
		event.CaptainID = ride.Captain.Hex()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	value, _ := json.Marshal(event)
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RideID),
		Value: value,
	})
	if err != nil {
		log.WithError(err).WithField("ride", event.RideID).Warn("Failed to publish lifecycle event")
	}
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
