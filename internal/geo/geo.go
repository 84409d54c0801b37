// Package geo resolves free-text locations to coordinates and measures the
// great-circle distance between them.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnavailable means the geocoding service could not be reached or answered with an error
	ErrUnavailable = errors.New("geocoder unavailable")
	// ErrNoResult means the geocoder answered but did not know the location
	ErrNoResult = errors.New("location not found")
)

// Coordinates is a WGS84 point in decimal degrees
type Coordinates struct {
	Lat float64
	Lon float64
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(c.Lon, 'f', 6, 64)
}

// ParseCoordinates reads the "lat,lon" form produced by Coordinates.String
func ParseCoordinates(s string) (Coordinates, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return Coordinates{}, fmt.Errorf("malformed coordinates %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse longitude: %w", err)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Geocoder resolves a free-text location
type Geocoder interface {
	Resolve(ctx context.Context, location string) (Coordinates, error)
}

func normalizeLocation(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
