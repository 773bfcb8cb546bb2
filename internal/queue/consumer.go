package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartConsumer connects to RabbitMQ, declares both event queues (durable),
// and consumes them, appending one human-readable line per message to
// logs/events.log.  It runs a reconnect loop with capped backoff and keeps
// running across broker restarts; processing errors are logged and the
// offending message rejected without requeue so the loop never wedges.
func StartConsumer(url string, log *zap.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("event consumer dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn("event consume loop ended, reconnecting", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("event consumer set QoS failed", zap.Error(err))
	}

	for _, name := range []string{CatalogSyncedQueue, PaymentStatusQueue} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	synced, err := ch.Consume(CatalogSyncedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", CatalogSyncedQueue, err)
	}
	payments, err := ch.Consume(PaymentStatusQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", PaymentStatusQueue, err)
	}

	for {
		select {
		case d, ok := <-synced:
			if !ok {
				return fmt.Errorf("%s channel closed", CatalogSyncedQueue)
			}
			handleDelivery(d, formatCatalogSynced, log)
		case d, ok := <-payments:
			if !ok {
				return fmt.Errorf("%s channel closed", PaymentStatusQueue)
			}
			handleDelivery(d, formatPaymentStatus, log)
		}
	}
}

func handleDelivery(d amqp.Delivery, format func([]byte) (string, error), log *zap.Logger) {
	line, err := format(d.Body)
	if err != nil {
		log.Warn("event consumer message rejected", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	if err := appendLine(line); err != nil {
		log.Warn("event log append failed", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func formatCatalogSynced(body []byte) (string, error) {
	var ev CatalogSyncedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal catalog event: %w", err)
	}
	return fmt.Sprintf("%s catalog.synced shop=%s shows=%d events=%d buildings=%d categories=%d",
		ev.SyncedAt, ev.ShopID, ev.Shows, ev.Events, ev.Buildings, ev.Categories), nil
}

func formatPaymentStatus(body []byte) (string, error) {
	var ev PaymentStatusEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", fmt.Errorf("unmarshal payment event: %w", err)
	}
	return fmt.Sprintf("%s payment.status payment=%s external=%s %s->%s",
		ev.OccurredAt, ev.PaymentID, ev.ExternalID, ev.OldStatus, ev.NewStatus), nil
}

func appendLine(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join("logs", "events.log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintln(f, line)
	return err
}
