package mqtt

import (
	"context"

	"github.com/kilianp07/railfleet/core/events"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
	"github.com/kilianp07/railfleet/infra/logger"
	"github.com/kilianp07/railfleet/internal/eventbus"
)

// EventPublisher is the subset of Publisher used by the forwarder.
type EventPublisher interface {
	PublishSchedule(runID string, res schedule.Result) error
	PublishFleetMetrics(m model.FleetMetrics) error
	PublishStatusChange(msg StatusMessage) error
}

// StartEventForwarder publishes bus events to MQTT until ctx is canceled or
// the bus is closed. The returned channel is closed once it has exited.
func StartEventForwarder(ctx context.Context, bus *eventbus.Bus[events.Event], pub EventPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := forward(pub, ev); err != nil {
					log.Warnf("forward %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func forward(pub EventPublisher, ev events.Event) error {
	switch e := ev.(type) {
	case events.StatusChangedEvent:
		if err := pub.PublishStatusChange(StatusMessage{TrainsetID: e.TrainsetID, From: e.From, To: e.To}); err != nil {
			return err
		}
		return pub.PublishFleetMetrics(e.Metrics)
	case events.ScheduleEvent:
		if err := pub.PublishSchedule(e.RunID, e.Result); err != nil {
			return err
		}
		return pub.PublishFleetMetrics(e.Metrics)
	}
	return nil
}
