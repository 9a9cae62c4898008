package logging

import (
	"context"
	"time"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
)

// LogRecord captures one scheduling run.
type LogRecord struct {
	RunID           string                   `json:"run_id"`
	Timestamp       time.Time                `json:"timestamp"`
	TargetDate      time.Time                `json:"target_date"`
	Summary         schedule.Summary         `json:"summary"`
	Recommendations []model.Recommendation   `json:"recommendations"`
	Errors          []schedule.TrainsetError `json:"errors,omitempty"`
}

// NewLogRecord builds a record from a scheduling result.
func NewLogRecord(runID string, ts, target time.Time, res schedule.Result) LogRecord {
	return LogRecord{
		RunID:           runID,
		Timestamp:       ts,
		TargetDate:      target,
		Summary:         res.Summary,
		Recommendations: res.Recommendations,
		Errors:          res.Errors,
	}
}

// LogQuery defines filters for retrieving records. Zero values match
// everything.
type LogQuery struct {
	Start      time.Time
	End        time.Time
	TrainsetID string
	Status     model.Status
}

// matchesRecommendations reports whether r holds a recommendation satisfying
// the trainset and status filters of q.
func (q LogQuery) matchesRecommendations(r LogRecord) bool {
	if q.TrainsetID == "" && q.Status == "" {
		return true
	}
	for _, rec := range r.Recommendations {
		if q.TrainsetID != "" && rec.TrainsetID != q.TrainsetID {
			continue
		}
		if q.Status != "" && rec.RecommendedStatus != q.Status {
			continue
		}
		return true
	}
	return false
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
