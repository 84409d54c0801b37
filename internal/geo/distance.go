package geo

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const earthRadiusKM = 6371.0088

// DefaultTimeout bounds a single geocoding lookup
const DefaultTimeout = 3 * time.Second

// FailureTTL is how long a failed lookup is remembered before the geocoder is asked again
const FailureTTL = 5 * time.Minute

// Haversine returns the great-circle distance between two points in kilometres
func Haversine(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Estimator measures the distance between two free-text locations through a Geocoder.
// Resolved locations are remembered for the lifetime of the Estimator and failed ones
// for FailureTTL, so a batch asks the geocoder at most once per distinct location.
type Estimator struct {
	geocoder Geocoder
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	memo   map[string]lookup
	flight singleflight.Group
}

type lookup struct {
	coords Coordinates
	err    error
	at     time.Time
}

// NewEstimator returns an Estimator whose lookups are each bounded by timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewEstimator(geocoder Geocoder, timeout time.Duration) *Estimator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Estimator{
		geocoder: geocoder,
		timeout:  timeout,
		now:      time.Now,
		memo:     make(map[string]lookup),
	}
}

// Distance resolves both locations and returns the distance between them in kilometres
func (e *Estimator) Distance(ctx context.Context, from, to string) (float64, error) {
	if e == nil || e.geocoder == nil {
		return 0, ErrUnavailable
	}

	a, err := e.resolve(ctx, from)
	if err != nil {
		return 0, err
	}
	b, err := e.resolve(ctx, to)
	if err != nil {
		return 0, err
	}
	return Haversine(a, b), nil
}

func (e *Estimator) resolve(ctx context.Context, location string) (Coordinates, error) {
	key := normalizeLocation(location)
	if key == "" {
		return Coordinates{}, fmt.Errorf("%w: empty location", ErrNoResult)
	}
	if l, ok := e.remembered(key); ok {
		return l.coords, l.err
	}

	ch := e.flight.DoChan(key, func() (v any, _ error) {
		// a flight that finished after the check above has already filled the memo
		if l, ok := e.remembered(key); ok {
			return l, nil
		}
		l := lookup{at: e.now()}
		defer func() {
			if r := recover(); r != nil {
				l.err = fmt.Errorf("resolve %q: geocoder panic: %v", location, r)
			}
			e.mu.Lock()
			e.memo[key] = l
			e.mu.Unlock()
			v = l
		}()

		// shared by every waiter, so bounded by the timeout only
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		l.coords, l.err = e.geocoder.Resolve(lctx, location)
		if l.err != nil {
			l.err = fmt.Errorf("resolve %q: %w", location, l.err)
		}
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return Coordinates{}, ctx.Err()
	case r := <-ch:
		l := r.Val.(lookup)
		return l.coords, l.err
	}
}

func (e *Estimator) remembered(key string) (lookup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.memo[key]
	if !ok {
		return lookup{}, false
	}
	if l.err != nil && e.now().Sub(l.at) >= FailureTTL {
		delete(e.memo, key)
		return lookup{}, false
	}
	return l, true
}
