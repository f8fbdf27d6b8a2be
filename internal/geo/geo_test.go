package geo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

var fallback = Point{Lat: 18.4549376, Lon: -69.9400192}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{"same point", fallback, fallback, 0, 1e-9},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 111194.93, 0.5},
		{"one degree of longitude at equator", Point{0, 0}, Point{0, 1}, 111194.93, 0.5},
		{"santo domingo to santiago", Point{18.4861, -69.9312}, Point{19.4517, -70.6970}, 134000, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Fatalf("Distance = %.2f, want %.2f ± %.2f", got, tt.want, tt.tol)
			}
			if back := Distance(tt.b, tt.a); math.Abs(back-got) > 1e-6 {
				t.Fatalf("Distance not symmetric: %.6f vs %.6f", got, back)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	here := Point{Lat: 18.47, Lon: -69.89}
	tests := []struct {
		name         string
		locator      Locator
		want         Point
		wantFallback bool
	}{
		{"nil locator", nil, fallback, true},
		{"static", Static(here), here, false},
		{
			name: "error",
			locator: LocatorFunc(func(context.Context) (Point, error) {
				return Point{}, errors.New("permission denied")
			}),
			want:         fallback,
			wantFallback: true,
		},
		{"out of range", Static(Point{Lat: 95, Lon: 0}), fallback, true},
		{
			name: "timeout",
			locator: LocatorFunc(func(ctx context.Context) (Point, error) {
				<-ctx.Done()
				time.Sleep(10 * time.Millisecond)
				return here, nil
			}),
			want:         fallback,
			wantFallback: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fb := Resolve(context.Background(), tt.locator, 50*time.Millisecond, fallback)
			if got != tt.want || fb != tt.wantFallback {
				t.Fatalf("Resolve = %v,%v want %v,%v", got, fb, tt.want, tt.wantFallback)
			}
		})
	}
}

func TestChain(t *testing.T) {
	here := Point{Lat: 18.5, Lon: -69.9}
	failing := LocatorFunc(func(context.Context) (Point, error) { return Point{}, ErrUnavailable })

	p, err := Chain(nil, failing, Static(here)).Locate(context.Background())
	if err != nil || p != here {
		t.Fatalf("Chain = %v,%v want %v", p, err, here)
	}

	if _, err := Chain(failing).Locate(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPositionStoreDegrades(t *testing.T) {
	ctx := context.Background()

	var nilStore *PositionStore
	if _, err := nilStore.Last(ctx, "u1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil store: expected ErrUnavailable, got %v", err)
	}
	if err := NewPositionStore(nil).Save(ctx, "u1", fallback); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("no client: expected ErrUnavailable, got %v", err)
	}

	rdb := deadRedis()
	defer rdb.Close()
	store := NewPositionStore(rdb)
	if err := store.Save(ctx, "u1", fallback); err == nil {
		t.Fatal("expected error from unreachable redis")
	}

	// Resolve falls back when the stored position cannot be read.
	got, fb := Resolve(ctx, store.LocatorFor("u1"), time.Second, fallback)
	if !fb || got != fallback {
		t.Fatalf("Resolve = %v,%v want fallback", got, fb)
	}
}
