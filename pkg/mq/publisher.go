// Package mq publishes domain events to RabbitMQ. Publish failures are
// logged and returned so callers can treat event delivery as best-effort.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Queue names used by the API.
const (
	QueueTimetableGenerated = "timetable.generated"
	QueueTimetablePublished = "timetable.published"
	QueueLeaveDecided       = "leave.decided"
	QueueReassignmentDone   = "reassignment.completed"
)

// Publisher maintains a single AMQP connection and declares queues lazily.
// A nil *Publisher is valid and drops events, which keeps event delivery
// optional in deployments without a broker.
type Publisher struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *zap.Logger

	mu       sync.Mutex
	declared map[string]bool
}

// NewPublisher dials the broker and opens a channel.
func NewPublisher(url string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	return &Publisher{
		conn:     conn,
		ch:       ch,
		logger:   logger,
		declared: make(map[string]bool),
	}, nil
}

// Publish marshals the event and delivers it to the named queue. Messages
// are persistent and the queue is declared durable on first use.
func (p *Publisher) Publish(ctx context.Context, queue string, event interface{}) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[queue] {
		if _, err := p.ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.logger.Error("queue declare failed", zap.String("queue", queue), zap.Error(err))
			return fmt.Errorf("queue declare: %w", err)
		}
		p.declared[queue] = true
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		p.logger.Error("publish failed", zap.String("queue", queue), zap.Error(err))
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
