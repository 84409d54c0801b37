package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// DefaultNominatimURL is the public OpenStreetMap search endpoint
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// publicInterval spaces requests to the public endpoint, which allows one per second
const publicInterval = time.Second

// Nominatim geocodes locations with an OpenStreetMap Nominatim search endpoint
type Nominatim struct {
	client    *http.Client
	baseURL   string
	userAgent string

	interval time.Duration
	mu       sync.Mutex
	next     time.Time
}

// NewNominatim returns a Nominatim geocoder. Nominatim's usage policy requires an
// identifying User-Agent.
func NewNominatim(client *http.Client, baseURL, userAgent string) *Nominatim {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	n := &Nominatim{client: client, baseURL: baseURL, userAgent: userAgent}
	if baseURL == DefaultNominatimURL {
		n.interval = publicInterval
	}
	return n
}

// wait blocks until the next request slot is free
func (n *Nominatim) wait(ctx context.Context) error {
	if n.interval <= 0 {
		return nil
	}
	n.mu.Lock()
	now := time.Now()
	slot := n.next
	if slot.Before(now) {
		slot = now
	}
	n.next = slot.Add(n.interval)
	n.mu.Unlock()

	t := time.NewTimer(time.Until(slot))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve looks up the first search result for location
func (n *Nominatim) Resolve(ctx context.Context, location string) (Coordinates, error) {
	if err := n.wait(ctx); err != nil {
		return Coordinates{}, err
	}

	q := url.Values{}
	q.Set("q", location)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("create request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Coordinates{}, fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&places); err != nil {
		return Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(places) == 0 {
		return Coordinates{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}
