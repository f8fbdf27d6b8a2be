// Package overpass builds Overpass QL queries for playing courts and runs
// them against an Overpass API interpreter endpoint.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultURL is the public interpreter endpoint.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// PitchFilter returns the tag filter selecting playing courts, optionally
// restricted to one OSM sport key.
func PitchFilter(sport string) string {
	f := `["leisure"="pitch"]`
	if sport != "" {
		f += `["sport"="` + sport + `"]`
	}
	return f
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildQuery returns a query matching nodes, ways and relations carrying
// filter within radius meters of (lat, lon), asking for at most limit
// elements with a computed center for non-node elements.
func BuildQuery(filter string, lat, lon float64, radius, limit int) string {
	around := fmt.Sprintf("(around:%d,%s,%s)", radius, formatCoord(lat), formatCoord(lon))
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		b.WriteString("  ")
		b.WriteString(kind)
		b.WriteString(filter)
		b.WriteString(around)
		b.WriteString(";\n")
	}
	b.WriteString(");\nout center ")
	b.WriteString(strconv.Itoa(limit))
	b.WriteString(";")
	return b.String()
}

// Center is the computed center of a way or relation.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Element is one OSM object of an interpreter response.  Lat and Lon are
// set for nodes, Center for ways and relations queried with "out center".
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat,omitempty"`
	Lon    *float64          `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Coordinates returns the element position, preferring its own lat/lon over
// the computed center.  ok is false when neither is present.
func (e Element) Coordinates() (lat, lon float64, ok bool) {
	if e.Lat != nil && e.Lon != nil {
		return *e.Lat, *e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

type response struct {
	Elements []Element `json:"elements"`
}

// StatusError reports a non-2xx interpreter response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("overpass: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("overpass: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to an Overpass interpreter.
type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

// NewClient constructs a client.  Empty endpoint selects DefaultURL and a
// nil httpClient gets a 30 second timeout.
func NewClient(httpClient *http.Client, endpoint, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{httpClient: httpClient, url: endpoint, userAgent: userAgent}
}

// Interpreter posts query as plain text and decodes the returned elements.
// A response without elements yields an empty slice.  There is no retry.
func (c *Client) Interpreter(ctx context.Context, query string) ([]Element, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("overpass: build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("overpass: decode response: %w", err)
	}
	if out.Elements == nil {
		out.Elements = []Element{}
	}
	return out.Elements, nil
}
