package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/showtix/ticketing-server/internal/queue"
	"github.com/showtix/ticketing-server/internal/repository"
)

const testWebhookSecret = "hook-secret"

type fakePaymentStore struct {
	payments map[string]*repository.Payment // by external id
	updates  []string                       // "id:status" in apply order
}

func newFakePaymentStore(status Status) *fakePaymentStore {
	return &fakePaymentStore{
		payments: map[string]*repository.Payment{
			"ext-1": {ID: "pay-1", ExternalID: "ext-1", Status: string(status)},
		},
	}
}

func (f *fakePaymentStore) GetByExternalID(_ context.Context, externalID string) (*repository.Payment, error) {
	if p, ok := f.payments[externalID]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePaymentStore) UpdateStatus(_ context.Context, id, status string) error {
	for _, p := range f.payments {
		if p.ID == id {
			p.Status = status
		}
	}
	f.updates = append(f.updates, id+":"+status)
	return nil
}

type fakeStatusPublisher struct {
	events []queue.PaymentStatusEvent
}

func (f *fakeStatusPublisher) PublishPaymentStatus(_ context.Context, ev queue.PaymentStatusEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBodyFor(event, id string) []byte {
	return []byte(fmt.Sprintf(`{"event":%q,"object":{"id":%q,"status":""}}`, event, id))
}

func TestWebhookAppliesTransition(t *testing.T) {
	store := newFakePaymentStore(StatusPending)
	pub := &fakeStatusPublisher{}
	svc := NewWebhookService(store, pub, testWebhookSecret, zap.NewNop())

	body := webhookBodyFor("payment.succeeded", "ext-1")
	require.NoError(t, svc.Process(context.Background(), body, sign(body)))

	assert.Equal(t, string(StatusSucceeded), store.payments["ext-1"].Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "pay-1", pub.events[0].PaymentID)
	assert.Equal(t, string(StatusPending), pub.events[0].OldStatus)
	assert.Equal(t, string(StatusSucceeded), pub.events[0].NewStatus)
}

func TestWebhookIdempotentRedelivery(t *testing.T) {
	store := newFakePaymentStore(StatusSucceeded)
	pub := &fakeStatusPublisher{}
	svc := NewWebhookService(store, pub, testWebhookSecret, zap.NewNop())

	body := webhookBodyFor("payment.succeeded", "ext-1")
	require.NoError(t, svc.Process(context.Background(), body, sign(body)))

	assert.Empty(t, store.updates, "re-delivered status must not be re-applied")
	assert.Empty(t, pub.events)
}

func TestWebhookRejectsIllegalTransition(t *testing.T) {
	store := newFakePaymentStore(StatusCancelled)
	svc := NewWebhookService(store, nil, testWebhookSecret, zap.NewNop())

	body := webhookBodyFor("payment.succeeded", "ext-1")
	err := svc.Process(context.Background(), body, sign(body))
	require.ErrorIs(t, err, ErrBadTransition)
	assert.Equal(t, string(StatusCancelled), store.payments["ext-1"].Status)
}

func TestWebhookUnknownEvent(t *testing.T) {
	svc := NewWebhookService(newFakePaymentStore(StatusPending), nil, testWebhookSecret, zap.NewNop())

	body := webhookBodyFor("payment.refunded", "ext-1")
	err := svc.Process(context.Background(), body, sign(body))
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestWebhookUnknownPayment(t *testing.T) {
	svc := NewWebhookService(newFakePaymentStore(StatusPending), nil, testWebhookSecret, zap.NewNop())

	body := webhookBodyFor("payment.succeeded", "ext-missing")
	err := svc.Process(context.Background(), body, sign(body))
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWebhookSignature(t *testing.T) {
	store := newFakePaymentStore(StatusPending)
	svc := NewWebhookService(store, nil, testWebhookSecret, zap.NewNop())
	body := webhookBodyFor("payment.succeeded", "ext-1")

	err := svc.Process(context.Background(), body, "")
	require.ErrorIs(t, err, ErrBadSignature)

	err = svc.Process(context.Background(), body, "deadbeef")
	require.ErrorIs(t, err, ErrBadSignature)

	// Signature over different bytes must not validate this body.
	err = svc.Process(context.Background(), body, sign([]byte("other")))
	require.ErrorIs(t, err, ErrBadSignature)

	assert.Empty(t, store.updates)
}

func TestWebhookNoSecretSkipsValidation(t *testing.T) {
	store := newFakePaymentStore(StatusPending)
	svc := NewWebhookService(store, nil, "", zap.NewNop())

	body := webhookBodyFor("payment.succeeded", "ext-1")
	require.NoError(t, svc.Process(context.Background(), body, ""))
	assert.Equal(t, string(StatusSucceeded), store.payments["ext-1"].Status)
}
