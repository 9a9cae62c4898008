package schedule

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/railfleet/core/model"
)

// TimestampLayout is the ISO-8601 layout used for OptimizationTimestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Summary is the fleet-level view of a scheduling run.
type Summary struct {
	TotalTrainsets int `json:"total_trainsets"`
	// Recommendations maps each recommended status to its count. Statuses
	// that were never recommended are absent.
	Recommendations       map[model.Status]int `json:"recommendations"`
	AverageConfidence     float64              `json:"average_confidence"`
	HighRiskCount         int                  `json:"high_risk_count"`
	OptimizationTimestamp string               `json:"optimization_timestamp"`
}

// Summarize builds the summary for recs. total is the number of trainsets
// submitted to the run, including skipped ones.
func Summarize(recs []model.Recommendation, total int, now time.Time) Summary {
	sum := Summary{
		TotalTrainsets:        total,
		Recommendations:       make(map[model.Status]int),
		OptimizationTimestamp: now.UTC().Format(TimestampLayout),
	}
	conf := make([]float64, 0, len(recs))
	for _, r := range recs {
		sum.Recommendations[r.RecommendedStatus]++
		conf = append(conf, r.ConfidenceScore)
		if r.HighRisk() {
			sum.HighRiskCount++
		}
	}
	if len(conf) > 0 {
		sum.AverageConfidence = math.Round(stat.Mean(conf, nil)*100) / 100
	}
	return sum
}
