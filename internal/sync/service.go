package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/showtix/ticketing-server/internal/catalog"
	"github.com/showtix/ticketing-server/internal/metrics"
	"github.com/showtix/ticketing-server/internal/queue"
)

// ErrSyncFailed is the only error the service surfaces to callers; the
// underlying cause is logged with shop context and never crosses the API
// boundary.
var ErrSyncFailed = errors.New("failed to sync data")

// Result summarizes one sync run for the caller.
type Result struct {
	Message string `json:"message"`
	Stats   Stats  `json:"stats"`
}

// Fetcher retrieves the catalog snapshot for one shop.
type Fetcher interface {
	FetchCatalog(ctx context.Context, shopID string) (*catalog.ShowsResponse, error)
}

// Publisher emits a queue event after a completed sync.  Publishing is
// best effort; failures are logged and do not fail the sync.
type Publisher interface {
	PublishCatalogSynced(ctx context.Context, ev queue.CatalogSyncedEvent) error
}

// Service orchestrates fetch + reconcile for one shop.  Shows are
// processed sequentially so building/event resolution order stays
// deterministic and the write load on the database is bounded.  Concurrent
// syncs of different shops are independent; two concurrent syncs of the
// same shop converge through the upserts but event/category ordering is
// then unspecified.
type Service struct {
	fetcher    Fetcher
	reconciler *Reconciler
	publisher  Publisher
	log        *zap.Logger
}

// NewService wires the orchestrator.  publisher may be nil when no message
// broker is configured.
func NewService(fetcher Fetcher, reconciler *Reconciler, publisher Publisher, log *zap.Logger) *Service {
	return &Service{fetcher: fetcher, reconciler: reconciler, publisher: publisher, log: log}
}

// SyncShop fetches the shop's catalog and reconciles every show.  An empty
// catalog is a valid outcome, not an error.  A failing show is logged and
// skipped so one bad record cannot starve the rest of the batch; if any
// show failed the run as a whole is still reported as failed.
func (s *Service) SyncShop(ctx context.Context, shopID string) (*Result, error) {
	s.log.Info("starting catalog sync", zap.String("shop_id", shopID))

	payload, err := s.fetcher.FetchCatalog(ctx, shopID)
	if err != nil {
		s.log.Error("catalog sync failed", zap.String("shop_id", shopID), zap.Error(err))
		metrics.ObserveSync(shopID, false)
		return nil, ErrSyncFailed
	}

	if len(payload.Shows) == 0 {
		s.log.Warn("no shows found", zap.String("shop_id", shopID))
		return &Result{Message: "No shows found"}, nil
	}

	var stats Stats
	failed := 0
	for i := range payload.Shows {
		if err := s.reconciler.ReconcileShow(ctx, &payload.Shows[i], shopID, &stats); err != nil {
			// Already logged with show context by the reconciler.
			failed++
		}
	}

	if failed > 0 {
		s.log.Error("catalog sync failed",
			zap.String("shop_id", shopID),
			zap.Int("failed_shows", failed),
			zap.Int("synced_shows", stats.Shows))
		metrics.ObserveSync(shopID, false)
		return nil, ErrSyncFailed
	}

	s.log.Info("catalog sync completed",
		zap.String("shop_id", shopID),
		zap.Int("shows", stats.Shows),
		zap.Int("events", stats.Events),
		zap.Int("buildings", stats.Buildings),
		zap.Int("categories", stats.Categories))
	metrics.ObserveSync(shopID, true)
	metrics.AddRecords(shopID, stats.Shows, stats.Events, stats.Buildings, stats.Categories)

	result := &Result{Message: "Data synchronized successfully", Stats: stats}
	s.publish(ctx, shopID, result)
	return result, nil
}

func (s *Service) publish(ctx context.Context, shopID string, res *Result) {
	if s.publisher == nil {
		return
	}
	ev := queue.CatalogSyncedEvent{
		ShopID:     shopID,
		Message:    res.Message,
		Shows:      res.Stats.Shows,
		Events:     res.Stats.Events,
		Buildings:  res.Stats.Buildings,
		Categories: res.Stats.Categories,
		SyncedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishCatalogSynced(ctx, ev); err != nil {
		s.log.Warn("catalog.synced publish failed", zap.String("shop_id", shopID), zap.Error(err))
	}
}
