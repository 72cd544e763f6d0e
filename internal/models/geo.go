package models

import "math"

// kmPerDegree is the rough length of one degree of latitude.
const kmPerDegree = 111.0

// BoundingBox is a lat/lon rectangle used to narrow candidate selection.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// NewBoundingBox derives a box around (lat, lon) covering radiusKM using the
// 1 degree latitude = 111 km approximation, with longitude scaled by
// cos(lat). The box may include points up to ~1.4x the radius near its
// corners and degrades near the poles and the antimeridian. That bias is
// deliberate: a too-wide box costs a preference check, a too-narrow one
// misses an at-risk user.
func NewBoundingBox(lat, lon float64, radiusKM int) BoundingBox {
	latOffset := float64(radiusKM) / kmPerDegree
	lonOffset := float64(radiusKM) / (kmPerDegree * math.Cos(lat*math.Pi/180))
	return BoundingBox{
		MinLat: lat - latOffset,
		MaxLat: lat + latOffset,
		MinLon: lon - lonOffset,
		MaxLon: lon + lonOffset,
	}
}

// Contains reports whether the point falls inside the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}
