// Package repository contains data access logic for the catalog and
// credential tables.  Catalog rows are keyed internally by uuid but
// upserted on the externally assigned id, which the upstream system
// guarantees stable across syncs.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Show mirrors the 'shows' table.  Optional columns are pointers so that
// absent upstream fields round-trip as NULL and repeated syncs stay
// idempotent.
type Show struct {
	ID           string
	ExternalID   int64
	Name         string
	Image        *string
	Desc         *string
	PartnerID    int64
	AgeLimit     int64
	ShortInfo    *string
	FullInfo     *string
	PublDate     *string
	PremiereDate *string
	Duration     *string
	MinPrice     *float64
	MaxPrice     *float64
	IsPushkin    bool
	TypeNum      *string
	DetailedURL  *string
	ShopID       string
}

// ShopStats aggregates row counts for one shop's catalog.
type ShopStats struct {
	Shows      int `json:"shows"`
	Events     int `json:"events"`
	Categories int `json:"categories"`
}

// ShowRepo manages persistence for shows and their categories.
type ShowRepo struct{ DB *sql.DB }

func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{DB: db} }

// Upsert inserts the show or, when a row with the same external_id exists,
// overwrites all mutable fields and bumps updated_at.  It returns the
// internal id of the row.
func (r *ShowRepo) Upsert(ctx context.Context, s *Show) (string, error) {
	const q = `INSERT INTO shows
		(id, external_id, name, image, description, partner_id, age_limit, short_info, full_info,
		 publ_date, premiere_date, duration, min_price, max_price, is_pushkin, type_num, detailed_url, shop_id)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
		 name=VALUES(name), image=VALUES(image), description=VALUES(description),
		 partner_id=VALUES(partner_id), age_limit=VALUES(age_limit),
		 short_info=VALUES(short_info), full_info=VALUES(full_info),
		 publ_date=VALUES(publ_date), premiere_date=VALUES(premiere_date),
		 duration=VALUES(duration), min_price=VALUES(min_price), max_price=VALUES(max_price),
		 is_pushkin=VALUES(is_pushkin), type_num=VALUES(type_num),
		 detailed_url=VALUES(detailed_url), shop_id=VALUES(shop_id),
		 updated_at=CURRENT_TIMESTAMP`
	_, err := r.DB.ExecContext(ctx, q,
		uuid.NewString(), s.ExternalID, s.Name, s.Image, s.Desc, s.PartnerID, s.AgeLimit,
		s.ShortInfo, s.FullInfo, s.PublDate, s.PremiereDate, s.Duration,
		s.MinPrice, s.MaxPrice, s.IsPushkin, s.TypeNum, s.DetailedURL, s.ShopID)
	if err != nil {
		return "", err
	}
	// The upsert may have kept the existing row's id; resolve it explicitly.
	var id string
	err = r.DB.QueryRowContext(ctx,
		"SELECT id FROM shows WHERE external_id=? LIMIT 1", s.ExternalID).Scan(&id)
	if err != nil {
		return "", err
	}
	s.ID = id
	return id, nil
}

// ReplaceCategories removes every category of the show and inserts the
// incoming set, all inside one transaction.  This is a full replace, not a
// diff: tracking removals is not worth O(categories) writes per sync.
func (r *ShowRepo) ReplaceCategories(ctx context.Context, showID string, names []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM show_categories WHERE show_id=?", showID); err != nil {
		return err
	}
	for _, name := range names {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO show_categories (id, show_id, name) VALUES (?,?,?)",
			uuid.NewString(), showID, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// StatsByShop counts catalog rows belonging to one shop.
func (r *ShowRepo) StatsByShop(ctx context.Context, shopID string) (ShopStats, error) {
	var st ShopStats
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM shows WHERE shop_id=?", shopID).Scan(&st.Shows); err != nil {
		return st, err
	}
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events e JOIN shows s ON s.id = e.show_ref WHERE s.shop_id=?`,
		shopID).Scan(&st.Events); err != nil {
		return st, err
	}
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM show_categories c JOIN shows s ON s.id = c.show_id WHERE s.shop_id=?`,
		shopID).Scan(&st.Categories); err != nil {
		return st, err
	}
	return st, nil
}
