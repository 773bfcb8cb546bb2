package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment mirrors the 'payments' table.  ExternalID is the gateway's
// payment id; status transitions are validated by the payments package,
// this repository only records them.
type Payment struct {
	ID         string
	ExternalID string
	EventID    *string
	Amount     float64
	Currency   string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PaymentRepo manages persistence for payment bookkeeping rows.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// Create inserts a payment row in its initial status.
func (r *PaymentRepo) Create(ctx context.Context, p *Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (id, external_id, event_id, amount, currency, status) VALUES (?,?,?,?,?,?)",
		p.ID, p.ExternalID, p.EventID, p.Amount, p.Currency, p.Status)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrDuplicate
	}
	return err
}

// GetByExternalID fetches a payment by the gateway's id.
func (r *PaymentRepo) GetByExternalID(ctx context.Context, externalID string) (*Payment, error) {
	var (
		p       Payment
		eventID sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,external_id,event_id,amount,currency,status,created_at,updated_at FROM payments WHERE external_id=? LIMIT 1",
		externalID).Scan(&p.ID, &p.ExternalID, &eventID, &p.Amount, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if eventID.Valid {
		p.EventID = &eventID.String
	}
	return &p, nil
}

// UpdateStatus records a new status for the payment.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE payments SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", status, id)
	return err
}
