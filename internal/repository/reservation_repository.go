package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/court-reservation/internal/model"
)

// ReservationRepo stores the court bookings of each user.
type ReservationRepo struct{ DB *sql.DB }

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{DB: db} }

// IDs returns the set of reservation ids already stored for uid.
func (r *ReservationRepo) IDs(ctx context.Context, uid string) (map[string]bool, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT reservation_id FROM reservations WHERE user_uid=?", uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Apply inserts the given reservations and deletes the listed ids in one
// transaction.  Reservations whose id is already stored are left untouched.
func (r *ReservationRepo) Apply(ctx context.Context, uid string, create []model.Reservation, deleteIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, res := range create {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (user_uid, reservation_id, starts_at, court_type, location)
			VALUES (?,?,?,?,?)
			ON DUPLICATE KEY UPDATE reservation_id=reservation_id`,
			uid, res.ID(), res.Datetime.UTC(), res.CourtType, res.Location); err != nil {
			return err
		}
	}
	for _, id := range deleteIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM reservations WHERE user_uid=? AND reservation_id=?", uid, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// List returns the reservations of uid ordered by start time.
func (r *ReservationRepo) List(ctx context.Context, uid string) ([]model.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT starts_at, court_type, location
		FROM reservations WHERE user_uid=? ORDER BY starts_at`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.Datetime, &res.CourtType, &res.Location); err != nil {
			return nil, err
		}
		res.Datetime = res.Datetime.UTC()
		out = append(out, res)
	}
	return out, rows.Err()
}
