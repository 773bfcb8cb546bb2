package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event mirrors the 'events' table.  ShowRef is the internal id of the
// owning show; ShowID is the upstream's own show reference, kept verbatim.
// BuildingID is nullable because not every event has a resolved venue.
type Event struct {
	ID               string
	ExternalID       int64
	Name             string
	ShowRef          string
	ShowID           int64
	BuildingID       *string
	TimeType         int64
	Date             *time.Time
	FixDate          *time.Time
	EndDate          *time.Time
	Timestamp        int64
	LocationID       int64
	LocationName     *string
	ServiceName      *string
	Count            int64
	MinPrice         *float64
	MaxPrice         *float64
	Image            *string
	AgeLimit         int64
	Desc             *string
	CityID           int64
	Address          *string
	IsSeason         bool
	IsCovidFree      bool
	PipelineEventID  int64
	IsAccessOnlyLink bool
}

// EventRepo manages persistence for events.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Upsert inserts the event or overwrites the row sharing its external_id,
// re-pointing it at the given show and building.  Returns the internal id.
func (r *EventRepo) Upsert(ctx context.Context, e *Event) (string, error) {
	const q = `INSERT INTO events
		(id, external_id, name, show_ref, show_id, building_id, time_type, event_date, fix_date,
		 end_date, external_ts, location_id, location_name, service_name, seat_count,
		 min_price, max_price, image, age_limit, description, city_id, address,
		 is_season, is_covid_free, pipeline_event_id, is_access_only_link)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
		 name=VALUES(name), show_ref=VALUES(show_ref), show_id=VALUES(show_id),
		 building_id=VALUES(building_id), time_type=VALUES(time_type),
		 event_date=VALUES(event_date), fix_date=VALUES(fix_date), end_date=VALUES(end_date),
		 external_ts=VALUES(external_ts), location_id=VALUES(location_id),
		 location_name=VALUES(location_name), service_name=VALUES(service_name),
		 seat_count=VALUES(seat_count), min_price=VALUES(min_price), max_price=VALUES(max_price),
		 image=VALUES(image), age_limit=VALUES(age_limit), description=VALUES(description),
		 city_id=VALUES(city_id), address=VALUES(address), is_season=VALUES(is_season),
		 is_covid_free=VALUES(is_covid_free), pipeline_event_id=VALUES(pipeline_event_id),
		 is_access_only_link=VALUES(is_access_only_link), updated_at=CURRENT_TIMESTAMP`
	_, err := r.DB.ExecContext(ctx, q,
		uuid.NewString(), e.ExternalID, e.Name, e.ShowRef, e.ShowID, e.BuildingID,
		e.TimeType, e.Date, e.FixDate, e.EndDate, e.Timestamp, e.LocationID,
		e.LocationName, e.ServiceName, e.Count, e.MinPrice, e.MaxPrice, e.Image,
		e.AgeLimit, e.Desc, e.CityID, e.Address, e.IsSeason, e.IsCovidFree,
		e.PipelineEventID, e.IsAccessOnlyLink)
	if err != nil {
		return "", err
	}
	var id string
	err = r.DB.QueryRowContext(ctx,
		"SELECT id FROM events WHERE external_id=? LIMIT 1", e.ExternalID).Scan(&id)
	if err != nil {
		return "", err
	}
	e.ID = id
	return id, nil
}
