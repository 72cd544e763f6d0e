package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoundingBox_Equator(t *testing.T) {
	// 111 km at the equator is one degree in both axes.
	box := NewBoundingBox(0, 0, 111)

	assert.InDelta(t, -1.0, box.MinLat, 0.001)
	assert.InDelta(t, 1.0, box.MaxLat, 0.001)
	assert.InDelta(t, -1.0, box.MinLon, 0.001)
	assert.InDelta(t, 1.0, box.MaxLon, 0.001)

	assert.True(t, box.Contains(1.0, 0))
	assert.True(t, box.Contains(0, 1.0))
	assert.False(t, box.Contains(2.0, 0))
	assert.False(t, box.Contains(0, 2.0))
}

func TestNewBoundingBox_LongitudeWidensWithLatitude(t *testing.T) {
	// At 60 degrees north cos(lat) is 0.5, so the longitude span doubles.
	box := NewBoundingBox(60, 10, 111)

	assert.InDelta(t, 59.0, box.MinLat, 0.001)
	assert.InDelta(t, 61.0, box.MaxLat, 0.001)
	assert.InDelta(t, 8.0, box.MinLon, 0.01)
	assert.InDelta(t, 12.0, box.MaxLon, 0.01)
}

func TestBoundingBox_ContainsIsInclusive(t *testing.T) {
	box := NewBoundingBox(40.0, -74.0, 50)

	assert.True(t, box.Contains(box.MinLat, -74.0))
	assert.True(t, box.Contains(box.MaxLat, -74.0))
	assert.True(t, box.Contains(40.0, box.MinLon))
	assert.True(t, box.Contains(40.0, box.MaxLon))
}
