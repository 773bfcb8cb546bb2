// Package queue defines message payloads exchanged over the message broker.
package queue

// CatalogSyncedEvent is published after a catalog sync completes.  It
// carries enough information for downstream consumers to log or trigger
// analytics without querying the primary database.
type CatalogSyncedEvent struct {
	ShopID     string `json:"shop_id"`
	Message    string `json:"message"`
	Shows      int    `json:"shows"`
	Events     int    `json:"events"`
	Buildings  int    `json:"buildings"`
	Categories int    `json:"categories"`
	SyncedAt   string `json:"synced_at"`
}

// PaymentStatusEvent is published when a gateway webhook moves a payment
// to a new status.
type PaymentStatusEvent struct {
	PaymentID  string `json:"payment_id"`
	ExternalID string `json:"external_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	OccurredAt string `json:"occurred_at"`
}

// Queue names.  Both queues are declared durable by publishers and the
// consumer alike so declaration order does not matter.
const (
	CatalogSyncedQueue = "catalog.synced"
	PaymentStatusQueue = "payment.status"
)
