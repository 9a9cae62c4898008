package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/railfleet/config"
	schedlog "github.com/kilianp07/railfleet/core/schedule/logging"
)

// LogStoreFactory builds a schedule run log store from raw config.
type LogStoreFactory func(name string, conf map[string]any) (schedlog.LogStore, error)

var LogStores = map[string]LogStoreFactory{}

func RegisterLogStore(name string, f LogStoreFactory) { LogStores[name] = f }

// LogStoreNames lists the registered backends.
func LogStoreNames() []string {
	names := make([]string, 0, len(LogStores))
	for n := range LogStores {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewLogStore builds the backend selected by cfg.Backend.
func NewLogStore(cfg config.LoggingConfig) (schedlog.LogStore, error) {
	f, ok := LogStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown log store %q", cfg.Backend)
	}
	conf := map[string]any{
		"backend":      cfg.Backend,
		"path":         cfg.Path,
		"max_size_mb":  cfg.MaxSizeMB,
		"max_backups":  cfg.MaxBackups,
		"max_age_days": cfg.MaxAgeDays,
	}
	store, err := f(cfg.Backend, conf)
	if err != nil {
		return nil, fmt.Errorf("log store %s: %w", cfg.Backend, err)
	}
	return store, nil
}
