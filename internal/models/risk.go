package models

// RiskLevel is the severity bucket a risk score falls into.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// riskThresholds is the fixed minimum probability for each level.
var riskThresholds = map[RiskLevel]float64{
	RiskLow:      0.30,
	RiskMedium:   0.60,
	RiskHigh:     0.80,
	RiskCritical: 0.95,
}

// Threshold returns the minimum probability that satisfies the level.
// Unknown levels fall back to MEDIUM.
func (l RiskLevel) Threshold() float64 {
	if t, ok := riskThresholds[l]; ok {
		return t
	}
	return riskThresholds[RiskMedium]
}

// Valid reports whether l is one of the four defined levels.
func (l RiskLevel) Valid() bool {
	_, ok := riskThresholds[l]
	return ok
}

// RiskLevelFromScore buckets a probability into a risk level.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= riskThresholds[RiskCritical]:
		return RiskCritical
	case score >= riskThresholds[RiskHigh]:
		return RiskHigh
	case score >= riskThresholds[RiskMedium]:
		return RiskMedium
	default:
		return RiskLow
	}
}
