package models

// DisasterType identifies the kind of disaster a prediction concerns.
type DisasterType string

const (
	DisasterHurricane   DisasterType = "hurricane"
	DisasterHeatWave    DisasterType = "heat_wave"
	DisasterFlood       DisasterType = "flood"
	DisasterSevereStorm DisasterType = "severe_storm"
	DisasterTornado     DisasterType = "tornado"
	DisasterWildfire    DisasterType = "wildfire"
)

// disasterFlagColumn is the fixed many-to-one mapping from disaster type to
// the user_preferences column that gates it. Tornado and wildfire share the
// severe storm toggle. Both the candidate query and the eligibility filter
// consult this table so the two can never diverge.
var disasterFlagColumn = map[DisasterType]string{
	DisasterHurricane:   "hurricane_alerts",
	DisasterHeatWave:    "heat_wave_alerts",
	DisasterFlood:       "flood_alerts",
	DisasterSevereStorm: "severe_storm_alerts",
	DisasterTornado:     "severe_storm_alerts",
	DisasterWildfire:    "severe_storm_alerts",
}

// Known reports whether the type has a preference mapping.
func (dt DisasterType) Known() bool {
	_, ok := disasterFlagColumn[dt]
	return ok
}

// FlagColumn returns the user_preferences column gating this disaster type.
func (dt DisasterType) FlagColumn() string {
	return disasterFlagColumn[dt]
}
