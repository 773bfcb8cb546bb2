// Package metrics exposes Prometheus counters for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketing",
			Subsystem: "catalog",
			Name:      "syncs_total",
			Help:      "Total number of catalog sync runs",
		},
		[]string{"shop_id", "result"},
	)

	syncedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketing",
			Subsystem: "catalog",
			Name:      "synced_records_total",
			Help:      "Total number of catalog records written by sync runs",
		},
		[]string{"shop_id", "record"},
	)
)

// ObserveSync records the outcome of one sync run.
func ObserveSync(shopID string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	syncsTotal.WithLabelValues(shopID, result).Inc()
}

// AddRecords bumps the per-record counters for a completed run.
func AddRecords(shopID string, shows, events, buildings, categories int) {
	syncedRecords.WithLabelValues(shopID, "shows").Add(float64(shows))
	syncedRecords.WithLabelValues(shopID, "events").Add(float64(events))
	syncedRecords.WithLabelValues(shopID, "buildings").Add(float64(buildings))
	syncedRecords.WithLabelValues(shopID, "categories").Add(float64(categories))
}
