package client

import (
	"github.com/kbukum/ghkit/cache"
	"github.com/kbukum/ghkit/resilience"
)

// Config configures a client instance.
type Config struct {
	// Cache configures result memoization.
	Cache cache.Config `yaml:"cache" mapstructure:"cache"`

	// Retry configures the retry orchestrator applied to every call.
	Retry resilience.Policy `yaml:"retry" mapstructure:"retry"`

	// CircuitBreaker configures the breaker shared by all calls of this
	// client. One breaker guards one logical remote dependency.
	CircuitBreaker resilience.BreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Retry:          resilience.DefaultPolicy(),
		CircuitBreaker: resilience.DefaultBreakerConfig("github-api"),
	}
}
