package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/court-reservation/internal/identity"
	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/repository"
)

type memComments struct {
	byID  map[string]model.Comment
	order []string
}

func newMemComments() *memComments { return &memComments{byID: map[string]model.Comment{}} }

func (m *memComments) Create(_ context.Context, _ string, c model.Comment) error {
	if _, ok := m.byID[c.ID]; ok {
		return repository.ErrConflict
	}
	m.byID[c.ID] = c
	m.order = append(m.order, c.ID)
	return nil
}

func (m *memComments) ParentOf(_ context.Context, id string) (string, error) {
	c, ok := m.byID[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return c.ParentID, nil
}

func (m *memComments) List(context.Context) ([]model.Comment, error) {
	out := []model.Comment{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if c, ok := m.byID[m.order[i]]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComments) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	for k, c := range m.byID {
		if k == id || c.ParentID == id {
			delete(m.byID, k)
		}
	}
	return nil
}

func TestCommentsPostAndReply(t *testing.T) {
	store := newMemComments()
	profiles := memProfiles{"u1": {Name: "Ana", LastName: "Pérez", PfpSrc: "https://cdn/ana.png"}}
	s := NewComments(store, profiles)
	clock := time.Date(2026, 3, 10, 15, 4, 5, 123e6, time.UTC)
	s.now = func() time.Time { return clock }
	ctx := context.Background()
	ana := identity.Identity{Subject: "u1"}

	top, err := s.Post(ctx, ana, model.Comment{Stars: 4, Text: " Buena grama ", Cancha: &model.Place{ID: 77}})
	if err != nil {
		t.Fatal(err)
	}
	if top.ID != "Ana-2026-03-10T15:04:05" {
		t.Fatalf("id = %q", top.ID)
	}
	if top.DisplayName != "Ana Pérez" || top.PfpSrc != "https://cdn/ana.png" || top.Text != "Buena grama" {
		t.Fatalf("author data not filled: %+v", top)
	}

	// Same author in the same second collides.
	if _, err := s.Post(ctx, ana, model.Comment{Stars: 4, Text: "otra", Cancha: &model.Place{ID: 77}}); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	clock = clock.Add(time.Minute)
	guest := identity.Identity{Subject: "u2"}
	reply, err := s.Reply(ctx, guest, model.Comment{ParentID: top.ID, DisplayName: "Luis Gómez", Stars: 5, Text: "De acuerdo"})
	if err != nil {
		t.Fatal(err)
	}
	if reply.ID != "Luis-2026-03-10T15:05:05" {
		t.Fatalf("reply id = %q", reply.ID)
	}

	clock = clock.Add(time.Minute)
	nested, err := s.Reply(ctx, guest, model.Comment{ParentID: reply.ID, DisplayName: "Luis Gómez", Stars: 3, Text: "Otra vez"})
	if err != nil {
		t.Fatal(err)
	}
	if nested.ParentID != top.ID {
		t.Fatalf("reply to reply should join thread %q, got %q", top.ID, nested.ParentID)
	}

	if _, err := s.Reply(ctx, guest, model.Comment{ParentID: "missing", DisplayName: "Luis", Stars: 3, Text: "x"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Post(ctx, identity.Identity{Subject: "anon"}, model.Comment{Stars: 3, Text: "x", Cancha: &model.Place{ID: 1}}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation without author, got %v", err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || len(all[0].Replies) != 2 {
		t.Fatalf("threads = %+v", all)
	}
	if all[0].Replies[0].ID != reply.ID || all[0].Replies[1].ID != nested.ID {
		t.Fatalf("replies should be oldest first: %+v", all[0].Replies)
	}

	if err := s.Delete(ctx, top.ID); err != nil {
		t.Fatal(err)
	}
	if all, _ := s.All(ctx); len(all) != 0 {
		t.Fatalf("expected no comments after delete, got %+v", all)
	}
}

func TestThreadDropsOrphans(t *testing.T) {
	now := time.Now()
	flat := []model.Comment{
		{ID: "b", Date: now},
		{ID: "r", ParentID: "gone", Date: now},
		{ID: "a", Date: now.Add(-time.Hour)},
	}
	got := Thread(flat)
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("got %+v", got)
	}
}
