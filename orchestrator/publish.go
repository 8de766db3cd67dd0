package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Publisher ships a finished bundle to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, b *Bundle) error
	Close() error
}

// AMQPPublisher publishes bundles as persistent JSON messages to a durable
// queue on the default exchange.
type AMQPPublisher struct {
	logger *logrus.Logger
	queue  string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher dials url and declares queue.
func NewAMQPPublisher(logger *logrus.Logger, url, queue string) (*AMQPPublisher, error) {
	if url == "" || queue == "" {
		return nil, fmt.Errorf("amqp: url and queue are required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP server: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	logger.WithField("queue", queue).Info("Connected to AMQP server")
	return &AMQPPublisher{logger: logger, queue: queue, conn: conn, channel: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, b *Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return fmt.Errorf("amqp: publisher closed")
	}
	err = p.channel.Publish(
		"",      // default exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    b.SessionID,
			Type:         "edmo.interaction.report",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish report %s: %w", b.SessionID, err)
	}
	p.logger.WithFields(logrus.Fields{"session_id": b.SessionID, "queue": p.queue}).Debug("Published report")
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return nil
	}
	chErr := p.channel.Close()
	connErr := p.conn.Close()
	p.channel, p.conn = nil, nil
	if chErr != nil {
		return chErr
	}
	return connErr
}
