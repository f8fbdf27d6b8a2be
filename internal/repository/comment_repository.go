package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/court-reservation/internal/model"
)

// CommentRepo stores court reviews and their replies.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts c authored by uid.  A taken id yields ErrConflict.
func (r *CommentRepo) Create(ctx context.Context, uid string, c model.Comment) error {
	var (
		parent sql.NullString
		court  []byte
	)
	if c.ParentID != "" {
		parent = sql.NullString{String: c.ParentID, Valid: true}
	}
	if c.Cancha != nil {
		b, err := json.Marshal(c.Cancha)
		if err != nil {
			return err
		}
		court = b
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO comments (id, parent_id, user_uid, display_name, pfp_src, posted_at, stars, body, court_json)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, parent, uid, c.DisplayName, c.PfpSrc, c.Date.UTC(), c.Stars, c.Text, court)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// ParentOf returns the parent id of the comment with id ("" for top-level
// comments) or ErrNotFound.
func (r *CommentRepo) ParentOf(ctx context.Context, id string) (string, error) {
	var parent sql.NullString
	err := r.DB.QueryRowContext(ctx, "SELECT parent_id FROM comments WHERE id=? LIMIT 1", id).Scan(&parent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return parent.String, err
}

// List returns every comment and reply, newest first.
func (r *CommentRepo) List(ctx context.Context) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, parent_id, display_name, pfp_src, posted_at, stars, body, court_json
		FROM comments ORDER BY posted_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		var (
			c      model.Comment
			parent sql.NullString
			court  []byte
		)
		if err := rows.Scan(&c.ID, &parent, &c.DisplayName, &c.PfpSrc, &c.Date, &c.Stars, &c.Text, &court); err != nil {
			return nil, err
		}
		c.ParentID = parent.String
		c.Date = c.Date.UTC()
		if len(court) > 0 {
			var p model.Place
			if err := json.Unmarshal(court, &p); err == nil {
				c.Cancha = &p
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the comment with id together with its replies.
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=? OR parent_id=?", id, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
