package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/railfleet/core/logger"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/monitoring"
	"github.com/kilianp07/railfleet/core/recommend"
)

// TrainsetError records a trainset that could not be scored.
type TrainsetError struct {
	Index      int    `json:"index"`
	TrainsetID string `json:"trainset_id"`
	Message    string `json:"error"`
	Err        error  `json:"-"`
}

// Result is the outcome of one scheduling run.
type Result struct {
	Recommendations []model.Recommendation `json:"recommendations"`
	Summary         Summary                `json:"summary"`
	Errors          []TrainsetError        `json:"errors"`
	// InductionOrder lists the trainsets recommended for ready or standby,
	// best candidate first.
	InductionOrder []string `json:"induction_order"`
}

// Scheduler applies a Recommender to every trainset of a fleet.
type Scheduler struct {
	engine  recommend.Recommender
	log     logger.Logger
	monitor monitoring.Monitor
}

// NewScheduler returns a scheduler. log and mon may be nil.
func NewScheduler(engine recommend.Recommender, log logger.Logger, mon monitoring.Monitor) (*Scheduler, error) {
	if engine == nil {
		return nil, fmt.Errorf("schedule: nil recommender")
	}
	if mon == nil {
		mon = monitoring.NopMonitor{}
	}
	return &Scheduler{engine: engine, log: log, monitor: mon}, nil
}

// ScheduleAll recommends a status for every trainset at now. Recommendations
// keep the input order.
func (s *Scheduler) ScheduleAll(trainsets []model.Trainset, now time.Time) Result {
	res := Result{
		Recommendations: make([]model.Recommendation, 0, len(trainsets)),
		Errors:          []TrainsetError{},
	}
	for i, t := range trainsets {
		rec, err := s.engine.Recommend(t, now)
		if err != nil {
			res.Errors = append(res.Errors, TrainsetError{Index: i, TrainsetID: t.ID, Message: err.Error(), Err: err})
			if s.log != nil {
				s.log.Warnf("skipping trainset %q at position %d: %v", t.ID, i, err)
			}
			s.monitor.CaptureException(err, map[string]string{"trainset_id": t.ID, "component": "scheduler"})
			continue
		}
		res.Recommendations = append(res.Recommendations, rec)
	}
	res.Summary = Summarize(res.Recommendations, len(trainsets), now)
	res.InductionOrder = InductionOrder(res.Recommendations)
	if s.log != nil {
		s.log.Infof("scheduled %d of %d trainsets (avg confidence %.2f, %d high risk)",
			len(res.Recommendations), len(trainsets), res.Summary.AverageConfidence, res.Summary.HighRiskCount)
	}
	return res
}

// InductionOrder returns the ids of trainsets recommended ready or standby.
// Ready comes before standby; within a status higher priority, then higher
// confidence, then the smaller trainset id wins.
func InductionOrder(recs []model.Recommendation) []string {
	cands := make([]model.Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.RecommendedStatus.Serviceable() {
			cands = append(cands, r)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.RecommendedStatus != b.RecommendedStatus {
			return a.RecommendedStatus == model.StatusReady
		}
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		return a.TrainsetID < b.TrainsetID
	})
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.TrainsetID
	}
	return ids
}
