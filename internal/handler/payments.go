package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/showtix/ticketing-server/internal/payments"
	"github.com/showtix/ticketing-server/internal/repository"
)

// SignatureHeader carries the gateway's HMAC over the raw webhook body.
const SignatureHeader = "X-Webhook-Signature"

// PaymentHandler receives payment gateway webhooks.
type PaymentHandler struct {
	Webhooks *payments.WebhookService
}

func NewPaymentHandler(w *payments.WebhookService) *PaymentHandler {
	return &PaymentHandler{Webhooks: w}
}

// Webhook validates and applies one gateway notification.  The body must
// be read raw before any JSON decoding so the signature covers the exact
// bytes the gateway signed.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Webhooks.Process(ctx, raw, c.Request().Header.Get(SignatureHeader))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	case errors.Is(err, payments.ErrBadSignature), errors.Is(err, payments.ErrUnknownEvent):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
	case errors.Is(err, payments.ErrBadTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "webhook processing failed"})
	}
}
