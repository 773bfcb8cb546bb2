package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/showtix/ticketing-server/internal/payments"
	"github.com/showtix/ticketing-server/internal/repository"
)

type stubPaymentStore struct {
	payment *repository.Payment
}

func (s *stubPaymentStore) GetByExternalID(_ context.Context, externalID string) (*repository.Payment, error) {
	if s.payment != nil && s.payment.ExternalID == externalID {
		return s.payment, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubPaymentStore) UpdateStatus(_ context.Context, _, status string) error {
	s.payment.Status = status
	return nil
}

func webhookRequest(t *testing.T, h *PaymentHandler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	_ = h.Webhook(e.NewContext(req, rec))
	return rec
}

func TestWebhookStatusCodes(t *testing.T) {
	const secret = "hook-secret"
	sign := func(body string) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(body))
		return hex.EncodeToString(mac.Sum(nil))
	}

	newHandler := func(status string) (*PaymentHandler, *stubPaymentStore) {
		store := &stubPaymentStore{payment: &repository.Payment{ID: "pay-1", ExternalID: "ext-1", Status: status}}
		return NewPaymentHandler(payments.NewWebhookService(store, nil, secret, zap.NewNop())), store
	}

	t.Run("applied", func(t *testing.T) {
		h, store := newHandler("pending")
		body := `{"event":"payment.succeeded","object":{"id":"ext-1"}}`
		rec := webhookRequest(t, h, body, sign(body))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "succeeded", store.payment.Status)
	})

	t.Run("bad signature", func(t *testing.T) {
		h, _ := newHandler("pending")
		body := `{"event":"payment.succeeded","object":{"id":"ext-1"}}`
		rec := webhookRequest(t, h, body, "bogus")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		h, _ := newHandler("pending")
		body := `{"event":"payment.refunded","object":{"id":"ext-1"}}`
		rec := webhookRequest(t, h, body, sign(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown payment", func(t *testing.T) {
		h, _ := newHandler("pending")
		body := `{"event":"payment.succeeded","object":{"id":"ext-missing"}}`
		rec := webhookRequest(t, h, body, sign(body))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("illegal transition", func(t *testing.T) {
		h, _ := newHandler("cancelled")
		body := `{"event":"payment.succeeded","object":{"id":"ext-1"}}`
		rec := webhookRequest(t, h, body, sign(body))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
