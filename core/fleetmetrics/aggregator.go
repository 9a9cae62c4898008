// Package fleetmetrics recomputes the fleet-wide status rollup.
//
// The rollup is a value: it is produced from a trainset snapshot and handed
// to whatever persists it. Nothing in this package holds shared state.
package fleetmetrics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/railfleet/core/model"
)

// Recompute derives the status counts, serviceability and average
// availability from trainsets. Trainsets with an unknown status are left out
// so that the four counts always sum to TotalFleet. Availability values
// outside [0,100], NaN included, are counted by status but left out of the
// average. An empty fleet yields zero for every field.
func Recompute(trainsets []model.Trainset) model.FleetMetrics {
	var m model.FleetMetrics
	avail := make([]float64, 0, len(trainsets))
	for _, t := range trainsets {
		switch t.Status {
		case model.StatusReady:
			m.Ready++
		case model.StatusStandby:
			m.Standby++
		case model.StatusMaintenance:
			m.Maintenance++
		case model.StatusCritical:
			m.Critical++
		default:
			continue
		}
		m.TotalFleet++
		if a := t.AvailabilityPercentage; a >= 0 && a <= 100 {
			avail = append(avail, a)
		}
	}
	if m.TotalFleet == 0 {
		return m
	}
	m.Serviceability = int(math.Round(100 * float64(m.Ready+m.Standby) / float64(m.TotalFleet)))
	if len(avail) > 0 {
		m.AvgAvailability = int(math.Round(stat.Mean(avail, nil)))
	}
	return m
}

// Refresh recomputes the status rollup from trainsets while keeping the
// running KPIs of prev.
func Refresh(prev model.FleetMetrics, trainsets []model.Trainset, at time.Time) model.FleetMetrics {
	m := Recompute(trainsets)
	m.SchedulesGenerated = prev.SchedulesGenerated
	m.AvgAIConfidence = prev.AvgAIConfidence
	m.UpdatedAt = at
	return m
}

// RecordSchedule counts one more scheduling run and folds its average
// confidence into the running mean over all runs.
func RecordSchedule(prev model.FleetMetrics, averageConfidence float64, at time.Time) model.FleetMetrics {
	m := prev
	m.SchedulesGenerated++
	n := float64(m.SchedulesGenerated)
	m.AvgAIConfidence = math.Round((prev.AvgAIConfidence*(n-1)+averageConfidence)/n*100) / 100
	m.UpdatedAt = at
	return m
}
