package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
)

// CommentStore persists comments.
type CommentStore interface {
	Create(ctx context.Context, uid string, c model.Comment) error
	ParentOf(ctx context.Context, id string) (string, error)
	List(ctx context.Context) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// ProfileReader looks up author data for comments.
type ProfileReader interface {
	Get(ctx context.Context, uid string) (model.Profile, error)
}

// Comments manages court reviews.
type Comments struct {
	store    CommentStore
	profiles ProfileReader
	now      func() time.Time
}

func NewComments(store CommentStore, profiles ProfileReader) *Comments {
	return &Comments{store: store, profiles: profiles, now: time.Now}
}

// Post publishes a top-level review by the caller.
func (s *Comments) Post(ctx context.Context, id identity.Identity, c model.Comment) (model.Comment, error) {
	c.ParentID = ""
	if err := ValidateComment(c, false); err != nil {
		return model.Comment{}, err
	}
	return s.create(ctx, id, c)
}

// Reply answers an existing comment.  Replies are attached to the top-level
// comment of the thread, so a reply to a reply joins the same thread.
func (s *Comments) Reply(ctx context.Context, id identity.Identity, c model.Comment) (model.Comment, error) {
	if err := ValidateComment(c, true); err != nil {
		return model.Comment{}, err
	}
	parent, err := s.store.ParentOf(ctx, c.ParentID)
	if err != nil {
		return model.Comment{}, err
	}
	if parent != "" {
		c.ParentID = parent
	}
	return s.create(ctx, id, c)
}

func (s *Comments) create(ctx context.Context, id identity.Identity, c model.Comment) (model.Comment, error) {
	author := ""
	if s.profiles != nil {
		p, err := s.profiles.Get(ctx, id.Subject)
		switch {
		case err == nil:
			author = p.Name
			c.DisplayName = p.FullName()
			if p.PfpSrc != "" {
				c.PfpSrc = p.PfpSrc
			}
		case !errors.Is(err, repository.ErrNotFound):
			return model.Comment{}, err
		}
	}
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	if c.DisplayName == "" {
		return model.Comment{}, invalid("displayName is required")
	}
	if author == "" {
		author = strings.Fields(c.DisplayName)[0]
	}

	c.Date = s.now().UTC().Truncate(time.Second)
	if c.ID == "" {
		c.ID = model.CommentID(author, c.Date)
	}
	c.Text = strings.TrimSpace(c.Text)
	c.Replies = nil
	if err := s.store.Create(ctx, id.Subject, c); err != nil {
		return model.Comment{}, err
	}
	return c, nil
}

// All returns the top-level comments newest first, each with its replies
// oldest first.  Replies whose parent is gone are dropped.
func (s *Comments) All(ctx context.Context) ([]model.Comment, error) {
	flat, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Thread(flat), nil
}

// Thread nests replies under their parents.  flat must be ordered newest
// first.
func Thread(flat []model.Comment) []model.Comment {
	replies := map[string][]model.Comment{}
	top := make([]model.Comment, 0, len(flat))
	for _, c := range flat {
		if c.ParentID == "" {
			top = append(top, c)
			continue
		}
		replies[c.ParentID] = append(replies[c.ParentID], c)
	}
	for i := range top {
		rs := replies[top[i].ID]
		sort.SliceStable(rs, func(a, b int) bool { return rs[a].Date.Before(rs[b].Date) })
		top[i].Replies = rs
	}
	return top
}

// Delete removes a comment and its replies.
func (s *Comments) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("comment id is required")
	}
	return s.store.Delete(ctx, id)
}
