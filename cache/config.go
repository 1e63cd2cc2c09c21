package cache

import (
	"fmt"
	"time"
)

const (
	defaultMaxAge     = 5 * time.Minute
	defaultMaxEntries = 1000
)

// Config configures the cache.
type Config struct {
	// MaxAge is the default time-to-live for entries. Defaults to 5m.
	MaxAge time.Duration `yaml:"max_age" mapstructure:"max_age" validate:"omitempty,min=0"`

	// MaxEntries is the maximum number of stored entries before FIFO
	// eviction kicks in. Defaults to 1000.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries" validate:"omitempty,min=1"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxAge <= 0 {
		c.MaxAge = defaultMaxAge
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = defaultMaxEntries
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxAge <= 0 {
		return fmt.Errorf("cache: max_age must be positive")
	}
	if c.MaxEntries <= 0 {
		return fmt.Errorf("cache: max_entries must be positive")
	}
	return nil
}
