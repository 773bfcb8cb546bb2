package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/showtix/ticketing-server/internal/queue"
	"github.com/showtix/ticketing-server/internal/repository"
)

// ErrBadSignature is returned when the webhook signature does not match
// the request body.
var ErrBadSignature = errors.New("invalid webhook signature")

// ErrUnknownEvent is returned for webhook event names outside the
// supported set.
var ErrUnknownEvent = errors.New("unknown webhook event")

// eventStatus maps gateway webhook event names onto target statuses.
var eventStatus = map[string]Status{
	"payment.pending":             StatusPending,
	"payment.waiting_for_capture": StatusWaitingForCapture,
	"payment.succeeded":           StatusSucceeded,
	"payment.canceled":            StatusCancelled,
}

// PaymentStore is the persistence slice the webhook service needs.
type PaymentStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*repository.Payment, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// Publisher emits a queue event after a recorded transition.  May be nil.
type Publisher interface {
	PublishPaymentStatus(ctx context.Context, ev queue.PaymentStatusEvent) error
}

// webhookBody is the gateway's notification payload.
type webhookBody struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

// WebhookService validates gateway webhooks and applies their status
// transitions to stored payments.
type WebhookService struct {
	payments  PaymentStore
	publisher Publisher
	secret    string
	log       *zap.Logger
}

// NewWebhookService wires the service.  An empty secret disables signature
// validation (matching a deployment that has not configured one yet).
func NewWebhookService(payments PaymentStore, publisher Publisher, secret string, log *zap.Logger) *WebhookService {
	return &WebhookService{payments: payments, publisher: publisher, secret: secret, log: log}
}

// Process verifies the signature over the raw body, resolves the payment
// by the gateway's id and records the reported status.  Re-delivery of an
// already-applied status is an accepted no-op.
func (s *WebhookService) Process(ctx context.Context, raw []byte, signature string) error {
	if !s.validSignature(raw, signature) {
		return ErrBadSignature
	}

	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode webhook body: %w", err)
	}

	target, ok := eventStatus[body.Event]
	if !ok {
		s.log.Warn("unknown webhook event", zap.String("event", body.Event))
		return fmt.Errorf("%w: %s", ErrUnknownEvent, body.Event)
	}

	payment, err := s.payments.GetByExternalID(ctx, body.Object.ID)
	if err != nil {
		return fmt.Errorf("lookup payment %s: %w", body.Object.ID, err)
	}

	current := Status(payment.Status)
	if current == target {
		return nil // webhook re-delivery
	}
	if !current.CanTransition(target) {
		s.log.Warn("rejected payment transition",
			zap.String("payment_id", payment.ID),
			zap.String("from", string(current)),
			zap.String("to", string(target)))
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, current, target)
	}

	if err := s.payments.UpdateStatus(ctx, payment.ID, string(target)); err != nil {
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}
	s.log.Info("payment status updated",
		zap.String("payment_id", payment.ID),
		zap.String("from", string(current)),
		zap.String("to", string(target)))

	s.publish(ctx, payment, current, target)
	return nil
}

func (s *WebhookService) publish(ctx context.Context, p *repository.Payment, from, to Status) {
	if s.publisher == nil {
		return
	}
	ev := queue.PaymentStatusEvent{
		PaymentID:  p.ID,
		ExternalID: p.ExternalID,
		OldStatus:  string(from),
		NewStatus:  string(to),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishPaymentStatus(ctx, ev); err != nil {
		s.log.Warn("payment.status publish failed", zap.String("payment_id", p.ID), zap.Error(err))
	}
}

// validSignature compares an HMAC SHA-256 of the raw body against the
// presented signature.  No configured secret skips the check; no presented
// signature always fails.
func (s *WebhookService) validSignature(raw []byte, signature string) bool {
	if s.secret == "" {
		s.log.Warn("webhook secret not configured, skipping signature validation")
		return true
	}
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
