package service

import (
	"context"
	"strings"

	"github.com/iliyamo/court-reservation/internal/model"
)

// CourtStore persists saved courts.
type CourtStore interface {
	Apply(ctx context.Context, uid string, places []model.Place, deleteIDs []string) error
	List(ctx context.Context, uid string) ([]model.Place, error)
}

// Courts manages the favorite courts of each user.
type Courts struct {
	store CourtStore
}

func NewCourts(store CourtStore) *Courts { return &Courts{store: store} }

// Store saves update and removes deleteIDs ("cancha-<id>") for uid.  A court
// listed twice is saved once with its last values.
func (s *Courts) Store(ctx context.Context, uid string, update []model.Place, deleteIDs []string) error {
	byID := make(map[int64]int, len(update))
	places := make([]model.Place, 0, len(update))
	for _, p := range update {
		if err := ValidatePlace(p); err != nil {
			return err
		}
		if i, ok := byID[p.ID]; ok {
			places[i] = p
			continue
		}
		byID[p.ID] = len(places)
		places = append(places, p)
	}
	for _, id := range deleteIDs {
		if !strings.HasPrefix(id, "cancha-") {
			return invalid("unknown court id %q", id)
		}
	}
	return s.store.Apply(ctx, uid, places, deleteIDs)
}

// Saved lists the courts saved by uid.
func (s *Courts) Saved(ctx context.Context, uid string) ([]model.Place, error) {
	return s.store.List(ctx, uid)
}
