package metrics

import "github.com/kilianp07/railfleet/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusPort enables the /metrics endpoint when set, e.g. ":9090".
	PrometheusPort string `json:"prometheus_port" yaml:"prometheus_port"`
}
