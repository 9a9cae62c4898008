package recommend

import (
	"math"
	"time"

	"github.com/kilianp07/railfleet/core/model"
)

// Recommender produces a recommendation for one trainset.
type Recommender interface {
	Recommend(t model.Trainset, now time.Time) (model.Recommendation, error)
}

// Engine is the rule-based recommender. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	th Thresholds
}

// NewEngine returns an engine using th. Zero thresholds fall back to the
// defaults.
func NewEngine(th Thresholds) *Engine {
	th.SetDefaults()
	return &Engine{th: th}
}

// NewDefaultEngine returns an engine using DefaultThresholds.
func NewDefaultEngine() *Engine { return NewEngine(DefaultThresholds()) }

// Thresholds returns the cut-offs used by the engine.
func (e *Engine) Thresholds() Thresholds { return e.th }

// Recommend evaluates the cascade for t at now. It fails with an error
// wrapping model.ErrInvalidTrainset when t does not satisfy the record
// invariants.
func (e *Engine) Recommend(t model.Trainset, now time.Time) (model.Recommendation, error) {
	if err := t.Validate(); err != nil {
		return model.Recommendation{}, err
	}
	ev := newEvaluation(t, now, e.th)
	v := ev.decide()
	ev.annotate(&v)
	return v.recommendation(t), nil
}

// evaluation caches the derived facts the rules look at.
type evaluation struct {
	t            model.Trainset
	now          time.Time
	th           Thresholds
	certified    bool
	expired      []model.FitnessCertificate
	openJobs     int
	criticalJobs int
}

func newEvaluation(t model.Trainset, now time.Time, th Thresholds) *evaluation {
	ev := &evaluation{t: t, now: now, th: th, certified: t.CertificateAware()}
	for _, c := range t.FitnessCertificates {
		if c.Expired(now) {
			ev.expired = append(ev.expired, c)
		}
	}
	for _, j := range t.JobCards {
		if !j.Open() {
			continue
		}
		ev.openJobs++
		if j.Priority >= th.CriticalJobPriority {
			ev.criticalJobs++
		}
	}
	return ev
}

// decide returns the verdict of the first matching rule, or the standby
// default.
func (ev *evaluation) decide() verdict {
	for _, r := range cascade {
		if v, ok := r.apply(ev); ok {
			v.rule = r.name
			return v
		}
	}
	v := standby(ev)
	v.rule = "standby"
	return v
}

type verdict struct {
	rule       string
	status     model.Status
	confidence float64
	priority   int
	reasoning  []string
	risks      []string
}

func (v *verdict) addRisk(r string) {
	for _, existing := range v.risks {
		if existing == r {
			return
		}
	}
	v.risks = append(v.risks, r)
}

func (v verdict) recommendation(t model.Trainset) model.Recommendation {
	conf := math.Round(v.confidence*100) / 100
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	prio := v.priority
	if prio < 1 {
		prio = 1
	}
	if prio > 10 {
		prio = 10
	}
	reasons := append([]string{}, v.reasoning...)
	risks := append([]string{}, v.risks...)
	return model.Recommendation{
		TrainsetID:        t.ID,
		TrainsetNumber:    t.Number,
		RecommendedStatus: v.status,
		ConfidenceScore:   conf,
		PriorityScore:     prio,
		DecisionRule:      v.rule,
		Reasoning:         reasons,
		RiskFactors:       risks,
	}
}
