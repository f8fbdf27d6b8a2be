package nominatim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name string
		in   Address
		want string
	}{
		{"all parts", Address{Road: "Calle 1", Neighbourhood: "Piantini", County: "Santo Domingo", State: "Distrito Nacional"},
			"Calle 1, Piantini, Santo Domingo, Distrito Nacional"},
		{"quarter when no neighbourhood", Address{Road: "Calle 1", Quarter: "Naco", State: "DN"}, "Calle 1, Naco, DN"},
		{"neighbourhood wins over quarter", Address{Neighbourhood: "A", Quarter: "B"}, "A"},
		{"empty", Address{}, ""},
		{"blank parts skipped", Address{Road: " ", County: "X"}, "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAddress(tt.in); got != tt.want {
				t.Fatalf("FormatAddress = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientReverse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantName    string
		wantErr     bool
		errContains string
	}{
		{
			name:     "ok",
			status:   http.StatusOK,
			body:     `{"name":"Estadio Quisqueya","display_name":"x","address":{"road":"Av. Tiradentes","state":"DN"}}`,
			wantName: "Estadio Quisqueya",
		},
		{name: "provider error body", status: http.StatusOK, body: `{"error":"Unable to geocode"}`, wantErr: true, errContains: "Unable to geocode"},
		{name: "forbidden", status: http.StatusForbidden, body: "blocked", wantErr: true, errContains: "403"},
		{name: "bad json", status: http.StatusOK, body: "<html>", wantErr: true, errContains: "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("format") != "jsonv2" || q.Get("addressdetails") != "1" {
					t.Errorf("unexpected query %s", r.URL.RawQuery)
				}
				if q.Get("lat") != "18.45" || q.Get("lon") != "-69.94" {
					t.Errorf("unexpected coordinates %s", r.URL.RawQuery)
				}
				if ua := r.Header.Get("User-Agent"); ua != "court-test/1.0" {
					t.Errorf("user agent = %q", ua)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := NewClient(srv.Client(), srv.URL, "court-test/1.0").Reverse(context.Background(), 18.45, -69.94)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error %v does not contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Name != tt.wantName {
				t.Fatalf("name = %q, want %q", res.Name, tt.wantName)
			}
		})
	}
}

type geocoderFunc func(ctx context.Context, lat, lon float64) (Result, error)

func (f geocoderFunc) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	return f(ctx, lat, lon)
}

type countingLimiter struct {
	calls int
	err   error
}

func (l *countingLimiter) Wait(context.Context) error {
	l.calls++
	return l.err
}

func TestThrottle(t *testing.T) {
	var hits int
	next := geocoderFunc(func(context.Context, float64, float64) (Result, error) {
		hits++
		return Result{Name: "x"}, nil
	})

	lim := &countingLimiter{}
	g := Throttle(next, lim)
	for i := 0; i < 3; i++ {
		if _, err := g.Reverse(context.Background(), 1, 2); err != nil {
			t.Fatal(err)
		}
	}
	if lim.calls != 3 || hits != 3 {
		t.Fatalf("limiter calls = %d, geocoder hits = %d; want 3 and 3", lim.calls, hits)
	}

	blocked := &countingLimiter{err: context.Canceled}
	if _, err := Throttle(next, blocked).Reverse(context.Background(), 1, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected limiter error, got %v", err)
	}
	if hits != 3 {
		t.Fatal("geocoder must not be called when the limiter refuses")
	}
}

func TestCacheDegradesWithoutRedis(t *testing.T) {
	next := geocoderFunc(func(context.Context, float64, float64) (Result, error) {
		return Result{Name: "n"}, nil
	})
	if g := NewCache(next, nil, time.Hour, nil); g == nil {
		t.Fatal("NewCache returned nil")
	}

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	res, err := NewCache(next, rdb, time.Hour, logger).Reverse(context.Background(), 18.45, -69.94)
	if err != nil || res.Name != "n" {
		t.Fatalf("Reverse = %+v, %v", res, err)
	}
}
