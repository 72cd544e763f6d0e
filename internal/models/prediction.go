package models

import (
	"fmt"
	"time"
)

// Prediction is a disaster-risk estimate produced by the inference pipeline.
// It is read-only input to the dispatch cycle and never mutated here.
type Prediction struct {
	ID           string       `json:"prediction_id"`
	DisasterType DisasterType `json:"disaster_type"`
	Probability  float64      `json:"probability"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	RadiusKM     int          `json:"radius_km"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Validate rejects malformed predictions before any part of a cycle runs.
func (p *Prediction) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("prediction id is required")
	}
	if !p.DisasterType.Known() {
		return fmt.Errorf("unknown disaster type %q", p.DisasterType)
	}
	if p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("probability %f out of range [0,1]", p.Probability)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90,90]", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180,180]", p.Longitude)
	}
	if p.RadiusKM <= 0 {
		return fmt.Errorf("radius_km must be positive, got %d", p.RadiusKM)
	}
	return nil
}
