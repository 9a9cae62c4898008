package events

import (
	"time"

	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
)

// Event is implemented by every fleet event.
type Event interface {
	EventTime() time.Time
}

// StatusChangedEvent is published after a status update was applied and the
// fleet metrics recomputed.
type StatusChangedEvent struct {
	TrainsetID string
	From       model.Status
	To         model.Status
	Metrics    model.FleetMetrics
	Time       time.Time
}

func (e StatusChangedEvent) EventTime() time.Time { return e.Time }

// ScheduleEvent is published when a scheduling run completes.
type ScheduleEvent struct {
	RunID    string
	Result   schedule.Result
	Metrics  model.FleetMetrics
	Duration time.Duration
	Time     time.Time
}

func (e ScheduleEvent) EventTime() time.Time { return e.Time }
