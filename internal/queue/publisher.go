package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends domain events to RabbitMQ.  Errors are logged and
// returned so callers can ignore failures without interrupting the main
// request flow.  Connections are dialed per publish; event volume here is
// one message per sync or webhook, not a hot path.
type Publisher struct {
	url string
	log *zap.Logger
}

// NewPublisher returns a Publisher for the given broker URL.
func NewPublisher(url string, log *zap.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PublishCatalogSynced publishes a CatalogSyncedEvent to the
// catalog.synced queue.
func (p *Publisher) PublishCatalogSynced(ctx context.Context, event CatalogSyncedEvent) error {
	return p.publish(ctx, CatalogSyncedQueue, event)
}

// PublishPaymentStatus publishes a PaymentStatusEvent to the
// payment.status queue.
func (p *Publisher) PublishPaymentStatus(ctx context.Context, event PaymentStatusEvent) error {
	return p.publish(ctx, PaymentStatusQueue, event)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent).  Durable so messages survive
	// broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		p.log.Warn("rabbitmq queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("event marshal failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		p.log.Warn("rabbitmq publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}
	return nil
}
