// Package sync merges externally fetched catalog snapshots into local
// storage.  Shows, events and buildings are upserted on their externally
// assigned ids; categories are replaced wholesale per show.
package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/showtix/ticketing-server/internal/catalog"
	"github.com/showtix/ticketing-server/internal/repository"
)

// Stats accumulates counts of records touched during one sync run.
type Stats struct {
	Shows      int `json:"shows"`
	Events     int `json:"events"`
	Buildings  int `json:"buildings"`
	Categories int `json:"categories"`
}

// ShowStore is the slice of the show repository the reconciler needs.
type ShowStore interface {
	Upsert(ctx context.Context, s *repository.Show) (string, error)
	ReplaceCategories(ctx context.Context, showID string, names []string) error
}

// EventStore persists events.
type EventStore interface {
	Upsert(ctx context.Context, e *repository.Event) (string, error)
}

// BuildingStore persists venues.
type BuildingStore interface {
	Upsert(ctx context.Context, b *repository.Building) (string, error)
}

// Reconciler upserts one show subtree at a time.  A persistence failure
// anywhere in a subtree aborts that show and propagates; batch isolation
// is the orchestrator's job.
type Reconciler struct {
	shows     ShowStore
	events    EventStore
	buildings BuildingStore
	log       *zap.Logger
}

func NewReconciler(shows ShowStore, events EventStore, buildings BuildingStore, log *zap.Logger) *Reconciler {
	return &Reconciler{shows: shows, events: events, buildings: buildings, log: log}
}

// ReconcileShow upserts the show, replaces its category set when the
// payload carries one, then processes nested events in input order.
func (r *Reconciler) ReconcileShow(ctx context.Context, apiShow *catalog.Show, shopID string, stats *Stats) error {
	show := repository.Show{
		ExternalID:   apiShow.ID,
		Name:         apiShow.Name,
		Image:        optString(apiShow.Image),
		Desc:         optString(apiShow.Desc),
		PartnerID:    apiShow.PartnerID,
		AgeLimit:     apiShow.AgeLimit,
		ShortInfo:    optString(apiShow.ShortInfo),
		FullInfo:     optString(apiShow.FullInfo),
		PublDate:     optString(apiShow.PublDate),
		PremiereDate: optString(apiShow.PremiereDate),
		Duration:     optString(apiShow.Duration),
		MinPrice:     parsePrice(apiShow.MinPrice),
		MaxPrice:     parsePrice(apiShow.MaxPrice),
		IsPushkin:    apiShow.IsPushkin,
		TypeNum:      typeNum(apiShow),
		DetailedURL:  optString(apiShow.DetailedURL),
		ShopID:       shopID,
	}
	showID, err := r.shows.Upsert(ctx, &show)
	if err != nil {
		r.log.Error("show upsert failed",
			zap.String("shop_id", shopID),
			zap.Int64("show_external_id", apiShow.ID),
			zap.Error(err))
		return fmt.Errorf("upsert show %d: %w", apiShow.ID, err)
	}
	stats.Shows++

	if len(apiShow.ShowCategories) > 0 {
		names := make([]string, 0, len(apiShow.ShowCategories))
		for _, c := range apiShow.ShowCategories {
			names = append(names, c.Name)
		}
		if err := r.shows.ReplaceCategories(ctx, showID, names); err != nil {
			r.log.Error("category replace failed",
				zap.String("shop_id", shopID),
				zap.Int64("show_external_id", apiShow.ID),
				zap.Error(err))
			return fmt.Errorf("replace categories of show %d: %w", apiShow.ID, err)
		}
		stats.Categories += len(names)
	}

	for i := range apiShow.Events {
		if err := r.reconcileEvent(ctx, &apiShow.Events[i], showID, shopID, stats); err != nil {
			return err
		}
	}
	return nil
}

// reconcileEvent resolves the event's building first so the venue row is
// persisted before anything references it, then upserts the event itself.
func (r *Reconciler) reconcileEvent(ctx context.Context, apiEvent *catalog.Event, showID, shopID string, stats *Stats) error {
	var buildingID *string
	if apiEvent.Building != nil {
		id, err := r.reconcileBuilding(ctx, apiEvent.Building, stats)
		if err != nil {
			r.log.Error("building upsert failed",
				zap.String("shop_id", shopID),
				zap.Int64("event_external_id", apiEvent.ID),
				zap.Int64("building_external_id", apiEvent.Building.ID),
				zap.Error(err))
			return fmt.Errorf("upsert building %d: %w", apiEvent.Building.ID, err)
		}
		buildingID = &id
	}

	event := repository.Event{
		ExternalID:       apiEvent.ID,
		Name:             apiEvent.Name,
		ShowRef:          showID,
		ShowID:           apiEvent.ShowID,
		BuildingID:       buildingID,
		TimeType:         apiEvent.TimeType,
		Date:             parseDate(apiEvent.Date),
		FixDate:          parseDate(apiEvent.FixDate),
		EndDate:          parseDate(apiEvent.EndDate),
		Timestamp:        apiEvent.Timestamp,
		LocationID:       apiEvent.LocationID,
		LocationName:     optString(apiEvent.LocationName),
		ServiceName:      optString(apiEvent.ServiceName),
		Count:            apiEvent.Count,
		MinPrice:         parsePrice(apiEvent.MinPrice),
		MaxPrice:         parsePrice(apiEvent.MaxPrice),
		Image:            optString(apiEvent.Image),
		AgeLimit:         apiEvent.AgeLimit,
		Desc:             optString(apiEvent.Desc),
		CityID:           apiEvent.CityID,
		Address:          optString(apiEvent.Address),
		IsSeason:         apiEvent.IsSeason,
		IsCovidFree:      apiEvent.IsCovidFree,
		PipelineEventID:  apiEvent.PipelineEventID,
		IsAccessOnlyLink: apiEvent.IsAccessOnlyLink,
	}
	if _, err := r.events.Upsert(ctx, &event); err != nil {
		r.log.Error("event upsert failed",
			zap.String("shop_id", shopID),
			zap.Int64("event_external_id", apiEvent.ID),
			zap.Error(err))
		return fmt.Errorf("upsert event %d: %w", apiEvent.ID, err)
	}
	stats.Events++
	return nil
}

func (r *Reconciler) reconcileBuilding(ctx context.Context, apiBuilding *catalog.Building, stats *Stats) (string, error) {
	building := repository.Building{
		ExternalID: apiBuilding.ID,
		Name:       apiBuilding.Name,
		CityID:     apiBuilding.CityID,
		Address:    apiBuilding.Address,
		Lat:        parsePrice(apiBuilding.Lat),
		Lon:        parsePrice(apiBuilding.Lon),
	}
	id, err := r.buildings.Upsert(ctx, &building)
	if err != nil {
		return "", err
	}
	stats.Buildings++
	return id, nil
}

// typeNum prefers the wire field and falls back to deriving the code from
// the detail URL.  Empty stays NULL.
func typeNum(s *catalog.Show) *string {
	if s.TypeNum != "" {
		v := s.TypeNum
		return &v
	}
	if derived := catalog.TypeNumFromURL(s.DetailedURL); derived != "" {
		return &derived
	}
	return nil
}

// optString maps the wire's empty string to NULL so repeated syncs are
// byte-for-byte idempotent on missing data.
func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parsePrice converts upstream string decimals; absent or unparseable
// values become NULL rather than failing the record.
func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// dateLayouts are tried in order; upstream is inconsistent about which
// shape it sends.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate best-effort-parses an upstream timestamp; unparseable dates
// are stored as NULL rather than rejecting the whole record.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
