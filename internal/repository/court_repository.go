package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-reservation/internal/model"
)

// CourtRepo stores the courts each user marked as favorite.
type CourtRepo struct{ DB *sql.DB }

func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{DB: db} }

// Apply upserts places and deletes the listed court ids for uid in one
// transaction.  Deleting an id that is not saved is not an error.
func (r *CourtRepo) Apply(ctx context.Context, uid string, places []model.Place, deleteIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range places {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO saved_courts
				(user_uid, court_id, osm_id, display_name, lat, lng, formatted_address, sport, distance_meters)
			VALUES (?,?,?,?,?,?,?,?,?)
			ON DUPLICATE KEY UPDATE
				display_name=VALUES(display_name), lat=VALUES(lat), lng=VALUES(lng),
				formatted_address=VALUES(formatted_address), sport=VALUES(sport),
				distance_meters=VALUES(distance_meters)`,
			uid, p.CourtID(), p.ID, p.DisplayName, p.Location.Lat, p.Location.Lng,
			p.FormattedAddress, p.Sport, p.DistanceMeters); err != nil {
			return err
		}
	}
	for _, id := range deleteIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM saved_courts WHERE user_uid=? AND court_id=?", uid, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns the saved courts of uid, oldest first.
func (r *CourtRepo) List(ctx context.Context, uid string) ([]model.Place, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT osm_id, display_name, lat, lng, formatted_address, sport, distance_meters
		FROM saved_courts WHERE user_uid=? ORDER BY saved_at, court_id`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Place{}
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Location.Lat, &p.Location.Lng,
			&p.FormattedAddress, &p.Sport, &p.DistanceMeters); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
