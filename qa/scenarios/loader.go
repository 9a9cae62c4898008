package scenarios

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/railfleet/core/model"
)

// MetricsDef is the fleet rollup expected once recommendations are applied.
type MetricsDef struct {
	Ready          int `yaml:"ready"`
	Standby        int `yaml:"standby"`
	Maintenance    int `yaml:"maintenance"`
	Critical       int `yaml:"critical"`
	Serviceability int `yaml:"serviceability"`
}

type Expected struct {
	Statuses    map[string]model.Status `yaml:"statuses"`
	Priorities  map[string]int          `yaml:"priorities,omitempty"`
	Confidences map[string]float64      `yaml:"confidences,omitempty"`
	// Reasoning and RiskFactors map a trainset id to a substring that one of
	// its entries must contain.
	Reasoning      map[string]string    `yaml:"reasoning,omitempty"`
	RiskFactors    map[string]string    `yaml:"risk_factors,omitempty"`
	Summary        map[model.Status]int `yaml:"summary,omitempty"`
	Skipped        []string             `yaml:"skipped,omitempty"`
	InductionOrder []string             `yaml:"induction_order,omitempty"`
	Metrics        *MetricsDef          `yaml:"metrics,omitempty"`
}

type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Date        time.Time        `yaml:"date"`
	Apply       bool             `yaml:"apply,omitempty"`
	Trainsets   []model.Trainset `yaml:"trainsets"`
	Expected    Expected         `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
