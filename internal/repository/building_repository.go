package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Building mirrors the 'buildings' table.  Buildings are shared across
// events by reference and upserted on external_id like shows.
type Building struct {
	ID         string
	ExternalID int64
	Name       string
	CityID     int64
	Address    string
	Lat        *float64
	Lon        *float64
}

// BuildingRepo manages persistence for venues.
type BuildingRepo struct{ DB *sql.DB }

func NewBuildingRepo(db *sql.DB) *BuildingRepo { return &BuildingRepo{DB: db} }

// Upsert inserts the building or overwrites the row sharing its
// external_id.  Returns the internal id for event foreign keys.
func (r *BuildingRepo) Upsert(ctx context.Context, b *Building) (string, error) {
	const q = `INSERT INTO buildings (id, external_id, name, city_id, address, lat, lon)
		VALUES (?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
		 name=VALUES(name), city_id=VALUES(city_id), address=VALUES(address),
		 lat=VALUES(lat), lon=VALUES(lon), updated_at=CURRENT_TIMESTAMP`
	_, err := r.DB.ExecContext(ctx, q,
		uuid.NewString(), b.ExternalID, b.Name, b.CityID, b.Address, b.Lat, b.Lon)
	if err != nil {
		return "", err
	}
	var id string
	err = r.DB.QueryRowContext(ctx,
		"SELECT id FROM buildings WHERE external_id=? LIMIT 1", b.ExternalID).Scan(&id)
	if err != nil {
		return "", err
	}
	b.ID = id
	return id, nil
}
