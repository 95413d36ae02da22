package scheduler

import "time"

// Config controls the periodic lifecycle sweep.
type Config struct {
	// RunInterval is how often the sweep fires when running in-process.
	RunInterval time.Duration
	// BatchSize caps how many candidate tenants a single run processes.
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.RunInterval <= 0 {
		c.RunInterval = time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	return c
}
