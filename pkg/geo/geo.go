// Package geo provides the planar area approximation used for farm-scale
// parcels. Coordinates are always [longitude, latitude] pairs in degrees.
package geo

import "math"

const (
	// earthRadiusMeters is the WGS84 semi-major axis used by the spherical
	// Web-Mercator projection.
	earthRadiusMeters = 6378137.0

	squareMetersPerAcre = 4046.8564224
)

// Point is a [longitude, latitude] pair in degrees.
type Point [2]float64

// Lng returns the longitude component.
func (p Point) Lng() float64 { return p[0] }

// Lat returns the latitude component.
func (p Point) Lat() float64 { return p[1] }

// project maps a lng/lat vertex to planar meters using a spherical
// Web-Mercator approximation. Valid for small parcels; not an ellipsoidal
// geodesic computation.
func project(p Point) (x, y float64) {
	x = earthRadiusMeters * p.Lng() * math.Pi / 180
	y = earthRadiusMeters * math.Log(math.Tan(math.Pi/4+p.Lat()*math.Pi/360))
	return x, y
}

// RingAreaSquareMeters computes the enclosed area of an ordered ring via the
// shoelace formula over the projected vertices. The ring is treated as
// implicitly closed. Returns nil when fewer than 3 vertices are given.
// Self-intersecting or degenerate rings are not detected; the formula simply
// yields a small or zero value for them.
func RingAreaSquareMeters(ring []Point) *float64 {
	if len(ring) < 3 {
		return nil
	}

	xs := make([]float64, len(ring))
	ys := make([]float64, len(ring))
	for i, p := range ring {
		xs[i], ys[i] = project(p)
	}

	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += xs[i]*ys[j] - xs[j]*ys[i]
	}

	area := math.Abs(sum) / 2
	return &area
}

// RingAreaAcres converts the ring area to acres, rounded to 2 decimal places.
// Returns nil when fewer than 3 vertices are given.
func RingAreaAcres(ring []Point) *float64 {
	sqm := RingAreaSquareMeters(ring)
	if sqm == nil {
		return nil
	}
	acres := math.Round(*sqm/squareMetersPerAcre*100) / 100
	return &acres
}
