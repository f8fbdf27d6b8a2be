package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/court-reservation/internal/model"
)

// ProfileRepo stores the personal data of users, keyed by identity subject.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

// Get returns the profile of uid or ErrNotFound.
func (r *ProfileRepo) Get(ctx context.Context, uid string) (model.Profile, error) {
	var (
		p   model.Profile
		pfp sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT name, last_name, cedula, email, pfp_src FROM profiles WHERE user_uid=? LIMIT 1", uid).
		Scan(&p.Name, &p.LastName, &p.Cedula, &p.Email, &pfp)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	p.PfpSrc = pfp.String
	return p, err
}

// Upsert creates or replaces the profile of uid.  An empty PfpSrc keeps the
// stored picture.
func (r *ProfileRepo) Upsert(ctx context.Context, uid string, p model.Profile) error {
	var pfp sql.NullString
	if p.PfpSrc != "" {
		pfp = sql.NullString{String: p.PfpSrc, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO profiles (user_uid, name, last_name, cedula, email, pfp_src)
		VALUES (?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			name=VALUES(name), last_name=VALUES(last_name), cedula=VALUES(cedula),
			email=VALUES(email), pfp_src=COALESCE(VALUES(pfp_src), pfp_src)`,
		uid, p.Name, p.LastName, p.Cedula, p.Email, pfp)
	return err
}

// SetPicture stores the avatar URL of uid.  It returns ErrNotFound when the
// user has no profile yet.
func (r *ProfileRepo) SetPicture(ctx context.Context, uid, url string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE profiles SET pfp_src=? WHERE user_uid=?", url, uid)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
