package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCatalogSynced(t *testing.T) {
	body, err := json.Marshal(CatalogSyncedEvent{
		ShopID:     "shop-1",
		Shows:      3,
		Events:     12,
		Buildings:  2,
		Categories: 5,
		SyncedAt:   "2026-08-30T10:00:00Z",
	})
	require.NoError(t, err)

	line, err := formatCatalogSynced(body)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30T10:00:00Z catalog.synced shop=shop-1 shows=3 events=12 buildings=2 categories=5", line)

	_, err = formatCatalogSynced([]byte("not json"))
	require.Error(t, err)
}

func TestFormatPaymentStatus(t *testing.T) {
	body, err := json.Marshal(PaymentStatusEvent{
		PaymentID:  "pay-1",
		ExternalID: "ext-1",
		OldStatus:  "pending",
		NewStatus:  "succeeded",
		OccurredAt: "2026-08-30T10:00:00Z",
	})
	require.NoError(t, err)

	line, err := formatPaymentStatus(body)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30T10:00:00Z payment.status payment=pay-1 external=ext-1 pending->succeeded", line)

	_, err = formatPaymentStatus([]byte("{"))
	require.Error(t, err)
}
