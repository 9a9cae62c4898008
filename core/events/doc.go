// Package events defines the fleet events emitted on the event bus.
//
// Available event types:
//   - StatusChangedEvent: an operator changed a trainset status
//   - ScheduleEvent: a scheduling run completed
package events
