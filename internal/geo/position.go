package geo

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const positionsKey = "positions:users"

// PositionStore keeps the last position reported by each user in a Redis
// GEO set so later searches can start from it.
type PositionStore struct {
	rdb *redis.Client
}

// NewPositionStore returns a store backed by rdb.  A nil client yields a
// store that never has a position.
func NewPositionStore(rdb *redis.Client) *PositionStore {
	return &PositionStore{rdb: rdb}
}

func memberName(uid string) string {
	return "user:" + uid
}

// Save records p as the latest position of uid.
func (s *PositionStore) Save(ctx context.Context, uid string, p Point) error {
	if s == nil || s.rdb == nil {
		return ErrUnavailable
	}
	if !p.Valid() {
		return fmt.Errorf("geo: invalid point %v,%v", p.Lat, p.Lon)
	}
	return s.rdb.GeoAdd(ctx, positionsKey, &redis.GeoLocation{
		Name:      memberName(uid),
		Longitude: p.Lon,
		Latitude:  p.Lat,
	}).Err()
}

// Last returns the stored position of uid or ErrUnavailable.
func (s *PositionStore) Last(ctx context.Context, uid string) (Point, error) {
	if s == nil || s.rdb == nil {
		return Point{}, ErrUnavailable
	}
	pos, err := s.rdb.GeoPos(ctx, positionsKey, memberName(uid)).Result()
	if err != nil {
		return Point{}, fmt.Errorf("geo: read position: %w", err)
	}
	if len(pos) == 0 || pos[0] == nil {
		return Point{}, ErrUnavailable
	}
	return Point{Lat: pos[0].Latitude, Lon: pos[0].Longitude}, nil
}

// LocatorFor returns a Locator reading the stored position of uid.
func (s *PositionStore) LocatorFor(uid string) Locator {
	return LocatorFunc(func(ctx context.Context) (Point, error) {
		if uid == "" {
			return Point{}, ErrUnavailable
		}
		return s.Last(ctx, uid)
	})
}
