package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/court-reservation/internal/model"
	"github.com/iliyamo/court-reservation/internal/queue"
)

// ReservationStore persists reservations.
type ReservationStore interface {
	IDs(ctx context.Context, uid string) (map[string]bool, error)
	Apply(ctx context.Context, uid string, create []model.Reservation, deleteIDs []string) error
	List(ctx context.Context, uid string) ([]model.Reservation, error)
}

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// Reservations manages court bookings.
type Reservations struct {
	store     ReservationStore
	publisher EventPublisher
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewReservations wires the service.  publisher may be nil; loc is the zone
// bookable slots are expressed in.
func NewReservations(store ReservationStore, publisher EventPublisher, loc *time.Location, logger *slog.Logger) *Reservations {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reservations{store: store, publisher: publisher, loc: loc, now: time.Now, logger: logger}
}

// Store creates the reservations of update that are not stored yet and
// deletes deleteIDs ("reservation-<unix ms>").  Reservations already stored
// are not validated again.  It returns the newly created reservations.
func (s *Reservations) Store(ctx context.Context, uid string, update []model.Reservation, deleteIDs []string) ([]model.Reservation, error) {
	existing, err := s.store.IDs(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, id := range deleteIDs {
		if !strings.HasPrefix(id, "reservation-") {
			return nil, invalid("unknown reservation id %q", id)
		}
	}

	now := s.now()
	created := make([]model.Reservation, 0, len(update))
	pending := map[string]bool{}
	for _, r := range update {
		id := r.ID()
		if existing[id] || pending[id] {
			continue
		}
		if strings.TrimSpace(r.CourtType) == "" {
			r.CourtType = model.DefaultCourtType
		}
		if err := ValidateNewReservation(r, now, s.loc); err != nil {
			return nil, err
		}
		r.Datetime = r.Datetime.UTC()
		pending[id] = true
		created = append(created, r)
	}

	if err := s.store.Apply(ctx, uid, created, deleteIDs); err != nil {
		return nil, err
	}
	s.publish(ctx, uid, created, now)
	return created, nil
}

func (s *Reservations) publish(ctx context.Context, uid string, created []model.Reservation, now time.Time) {
	if s.publisher == nil {
		return
	}
	for _, r := range created {
		ev := queue.ReservationConfirmedEvent{
			ReservationID: r.ID(),
			UserUID:       uid,
			Datetime:      r.Datetime.Format(time.RFC3339),
			CourtType:     r.CourtType,
			Location:      r.Location,
			ConfirmedAt:   now.UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishReservationConfirmed(ctx, ev); err != nil {
			s.logger.Warn("publish reservation event failed", "reservation_id", ev.ReservationID, "err", err)
		}
	}
}

// Saved lists the reservations of uid ordered by datetime.
func (s *Reservations) Saved(ctx context.Context, uid string) ([]model.Reservation, error) {
	return s.store.List(ctx, uid)
}
