package config

import "fmt"

// FleetConfig selects where the fleet lives and how it is seeded.
type FleetConfig struct {
	// SnapshotPath is an optional yaml or json fleet file loaded at startup.
	SnapshotPath string `json:"snapshot_path"`
	// Store is "memory" or "sqlite".
	Store string `json:"store"`
	// DatabasePath is the sqlite file used when Store is "sqlite".
	DatabasePath string `json:"database_path"`
}

func (c *FleetConfig) SetDefaults() {
	if c.Store == "" {
		c.Store = "memory"
	}
	if c.Store == "sqlite" && c.DatabasePath == "" {
		c.DatabasePath = "railfleet.db"
	}
}

func (c FleetConfig) Validate() error {
	switch c.Store {
	case "memory":
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("database_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store %s", c.Store)
	}
	return nil
}

// HTTPConfig configures the API server. Token protects the scheduling run
// log when set.
type HTTPConfig struct {
	Address string `json:"address"`
	Token   string `json:"token"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
