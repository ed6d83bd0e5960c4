package geo

import (
	"errors"
	"testing"

	"jobsite-timeclock/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metersNorth shifts p north by roughly m meters.
func metersNorth(p Point, m float64) Point {
	return Point{Lat: p.Lat + m/111195.0, Lng: p.Lng}
}

func TestDistance_KnownPair(t *testing.T) {
	// Paris -> London, about 343.5 km on a 6371 km sphere
	paris := Point{Lat: 48.8566, Lng: 2.3522}
	london := Point{Lat: 51.5074, Lng: -0.1278}

	d := Distance(paris, london)
	assert.InDelta(t, 343_500, d, 1_000)
	assert.InDelta(t, d, Distance(london, paris), 1e-6, "symmetric")
}

func TestWithinRadius_SamePoint(t *testing.T) {
	points := []Point{{0, 0}, {90, 0}, {-90, 180}, {37.7749, -122.4194}, {-33.8688, 151.2093}}
	for _, p := range points {
		for _, r := range []float64{0, 10, 100, 1000} {
			assert.True(t, WithinRadius(p, p, r), "point %v radius %v", p, r)
		}
	}
}

func TestWithinRadius_Boundary(t *testing.T) {
	site := Point{Lat: 40.7128, Lng: -74.0060}

	assert.True(t, WithinRadius(site, metersNorth(site, 50), 100))
	assert.True(t, WithinRadius(site, metersNorth(site, 99), 100))
	assert.False(t, WithinRadius(site, metersNorth(site, 150), 100))
}

func TestDistance_Antipodal(t *testing.T) {
	d := Distance(Point{0, 0}, Point{0, 180})
	assert.InDelta(t, 3.14159265*EarthRadiusMeters, d, 1)
}

func TestFromPtr(t *testing.T) {
	lat, lng := 12.5, 99.1

	p, err := FromPtr(&lat, &lng)
	require.NoError(t, err)
	assert.Equal(t, &Point{Lat: 12.5, Lng: 99.1}, p)

	p, err = FromPtr(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = FromPtr(&lat, nil)
	assert.True(t, errors.Is(err, apperr.ErrInvalidCoordinates))

	bad := 91.0
	_, err = FromPtr(&bad, &lng)
	assert.True(t, errors.Is(err, apperr.ErrInvalidCoordinates))
}
