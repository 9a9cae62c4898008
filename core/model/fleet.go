package model

import "time"

// FleetMetrics is the fleet-wide rollup. The status counts and the two
// derived percentages are recomputed from the trainsets; SchedulesGenerated
// and AvgAIConfidence are running KPIs updated after each scheduling run.
type FleetMetrics struct {
	TotalFleet         int       `json:"total_fleet"`
	Ready              int       `json:"ready"`
	Standby            int       `json:"standby"`
	Maintenance        int       `json:"maintenance"`
	Critical           int       `json:"critical"`
	Serviceability     int       `json:"serviceability"`
	AvgAvailability    int       `json:"avg_availability"`
	SchedulesGenerated int       `json:"schedules_generated"`
	AvgAIConfidence    float64   `json:"avg_ai_confidence"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
}

// Count returns the number of trainsets in status s.
func (m FleetMetrics) Count(s Status) int {
	switch s {
	case StatusReady:
		return m.Ready
	case StatusStandby:
		return m.Standby
	case StatusMaintenance:
		return m.Maintenance
	case StatusCritical:
		return m.Critical
	}
	return 0
}
