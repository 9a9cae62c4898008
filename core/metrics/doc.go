// Package metrics defines interfaces for recording fleet observability
// data. Sinks like PromSink and InfluxSink record fleet metrics snapshots,
// recommendations, scheduling runs and status changes, and can be combined
// with NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
package metrics
