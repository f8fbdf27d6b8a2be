// Package nominatim is a reverse-geocoding client for the Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the public reverse endpoint.
const DefaultURL = "https://nominatim.openstreetmap.org/reverse"

// Address holds the address components used to format a court address.
type Address struct {
	Road          string `json:"road,omitempty"`
	Neighbourhood string `json:"neighbourhood,omitempty"`
	Quarter       string `json:"quarter,omitempty"`
	County        string `json:"county,omitempty"`
	State         string `json:"state,omitempty"`
}

// Result is a reverse-geocode answer.
type Result struct {
	Name        string  `json:"name,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Address     Address `json:"address"`
	Error       string  `json:"error,omitempty"`
}

// FormatAddress joins road, neighbourhood (or quarter), county and state
// with ", ", leaving out empty components.
func FormatAddress(a Address) string {
	area := a.Neighbourhood
	if area == "" {
		area = a.Quarter
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Road, area, a.County, a.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ErrNoResult is returned when the provider answers without a match.
var ErrNoResult = errors.New("nominatim: no result")

// Geocoder resolves coordinates to a place.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Result, error)
}

// Client calls a Nominatim /reverse endpoint.  Nominatim's usage policy
// requires an identifying User-Agent.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

// NewClient constructs a client.  Empty endpoint selects DefaultURL.
func NewClient(httpClient *http.Client, endpoint, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{httpClient: httpClient, url: endpoint, userAgent: userAgent}
}

func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("nominatim: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("nominatim: decode response: %w", err)
	}
	if out.Error != "" {
		return Result{}, fmt.Errorf("%w: %s", ErrNoResult, out.Error)
	}
	return out, nil
}
