// Package geo implements great-circle distance and geofence checks.
package geo

import (
	"math"

	"jobsite-timeclock/internal/apperr"
)

// EarthRadiusMeters is the spherical Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks latitude ∈ [-90,90] and longitude ∈ [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return apperr.ErrInvalidCoordinates.WithMessagef("lat=%v lng=%v out of range", p.Lat, p.Lng)
	}
	return nil
}

// FromPtr builds an optional point. Both values or neither must be given.
func FromPtr(lat, lng *float64) (*Point, error) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, apperr.ErrInvalidCoordinates.WithMessage("latitude and longitude must be given together")
	}
	p := Point{Lat: *lat, Lng: *lng}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Distance returns the Haversine distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// WithinRadius reports whether b lies within radiusMeters of a.
func WithinRadius(a, b Point, radiusMeters float64) bool {
	return Distance(a, b) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
