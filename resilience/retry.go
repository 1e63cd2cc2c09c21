package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/kbukum/ghkit/errors"
)

const (
	// maxBackoff caps worst-case exponential backoff.
	maxBackoff = 30 * time.Second
	// minDelay floors every computed delay.
	minDelay = 100 * time.Millisecond
	// jitterFraction is the ±10% randomization that prevents synchronized
	// retry storms across concurrent callers.
	jitterFraction = 0.1
	// maxRetryCeiling bounds the configurable retry count.
	maxRetryCeiling = 10
)

// Policy configures the retry orchestrator for one call.
type Policy struct {
	// Enabled turns retrying on. When false every failure propagates
	// after the first attempt.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Retries is the number of extra attempts beyond the first, 0..10.
	// Defaults to 3 in DefaultPolicy.
	Retries int `yaml:"retries" mapstructure:"retries" validate:"min=0,max=10"`

	// BaseDelay is the first backoff step. Defaults to 1s.
	BaseDelay time.Duration `yaml:"base_delay" mapstructure:"base_delay" validate:"omitempty,min=0"`

	// DoNotRetry lists HTTP statuses that are never retried.
	DoNotRetry []int `yaml:"do_not_retry" mapstructure:"do_not_retry"`

	// Breaker, when set, gates every attempt.
	Breaker *CircuitBreaker `yaml:"-" mapstructure:"-"`

	// ShouldRetry overrides the built-in classifier outright.
	ShouldRetry func(err error) bool `yaml:"-" mapstructure:"-"`

	// OnRetry observes the retry loop. Before each wait it receives the
	// classified error, the next attempt number, and the computed delay.
	// After a success that needed retries it is invoked once more with a
	// nil error and zero delay.
	OnRetry func(nextAttempt int, err error, delay time.Duration) `yaml:"-" mapstructure:"-"`
}

// DefaultPolicy returns the default retry policy: 3 extra attempts, 1s
// base delay, client errors 400/401/403/404/422 never retried.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:    true,
		Retries:    3,
		BaseDelay:  time.Second,
		DoNotRetry: []int{400, 401, 403, 404, 422},
	}
}

// Execute runs op with retry, breaker gating, and classified failure
// handling. The final error is always a *errors.APIError annotated with
// the attempt count and configured ceiling.
//
// Attempt flow per index 0..Retries:
//  1. A breaker that refuses execution fails the call immediately with
//     KindCircuitOpen carrying a recovery estimate; this never consumes
//     a retry attempt.
//  2. Success records on the breaker and returns.
//  3. Failure records on the breaker; the last allowed attempt, or a
//     non-retryable classification, stops the loop without waiting.
//  4. Otherwise the orchestrator waits for the computed delay (or until
//     ctx is done) and re-invokes op.
func Execute[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var zero T

	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.Retries > maxRetryCeiling {
		p.Retries = maxRetryCeiling
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}

	var lastErr *errors.APIError
	attempts := 0

	for attempt := 0; attempt <= p.Retries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, errors.Classify(ctx.Err())
		default:
		}

		if p.Breaker != nil && !p.Breaker.CanExecute() {
			return zero, errors.CircuitOpen(p.Breaker.RecoveryEstimate())
		}

		result, err := op()
		attempts++

		if err == nil {
			if p.Breaker != nil {
				p.Breaker.RecordSuccess()
			}
			if attempt > 0 && p.OnRetry != nil {
				p.OnRetry(attempt, nil, 0)
			}
			return result, nil
		}

		if p.Breaker != nil {
			p.Breaker.RecordFailure()
		}
		lastErr = errors.Classify(err)

		if attempt == p.Retries || !p.shouldRetry(err, lastErr) {
			break
		}

		delay := retryDelay(attempt, p.BaseDelay, lastErr)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, errors.Classify(ctx.Err())
		case <-timer.C:
		}
	}

	return zero, lastErr.
		WithDetail("attempts", attempts).
		WithDetail("max_retries", p.Retries)
}

// shouldRetry decides whether a classified failure is worth retrying.
func (p Policy) shouldRetry(err error, apiErr *errors.APIError) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	if !p.Enabled {
		return false
	}

	switch apiErr.Kind {
	case errors.KindRateLimit, errors.KindSecondaryRateLimit:
		return true
	case errors.KindTimeout, errors.KindNetwork:
		return true
	case errors.KindHTTPAPI:
		return p.retryableStatus(apiErr.StatusCode)
	case errors.KindGraphQL:
		return graphQLRetryable(apiErr.Errors)
	default:
		return false
	}
}

// retryableStatus applies the do-not-retry list, then the always-retry
// status rules.
func (p Policy) retryableStatus(status int) bool {
	for _, s := range p.DoNotRetry {
		if s == status {
			return false
		}
	}
	if status >= 500 {
		return true
	}
	switch status {
	case 408, 409, 429:
		return true
	}
	return false
}

// graphQLRetryable inspects a GraphQL errors array. Rate-limited queries
// always retry; validation, parse, and auth failures never do. An array
// with no recognized type retries: such errors are usually transient
// infrastructure failures rather than query defects.
func graphQLRetryable(items []errors.GraphQLErrorItem) bool {
	for _, item := range items {
		if item.Type == errors.GraphQLTypeRateLimited {
			return true
		}
	}
	for _, item := range items {
		switch item.Type {
		case errors.GraphQLTypeValidation,
			errors.GraphQLTypeParseFailed,
			errors.GraphQLTypeForbidden,
			errors.GraphQLTypeUnauthorized:
			return false
		}
	}
	return true
}

// retryDelay computes the wait before the next attempt. An explicit
// retry-after advertised by the remote wins outright over exponential
// backoff; both paths get ±10% jitter and a 100ms floor.
func retryDelay(attempt int, base time.Duration, apiErr *errors.APIError) time.Duration {
	if apiErr != nil && apiErr.RetryAfter > 0 {
		d := applyJitter(float64(apiErr.RetryAfter))
		if d < float64(minDelay) {
			d = float64(minDelay)
		}
		return time.Duration(d)
	}

	d := float64(base) * math.Pow(2, float64(attempt))
	if d > float64(maxBackoff) {
		d = float64(maxBackoff)
	}
	d = applyJitter(d)
	if d > float64(maxBackoff) {
		d = float64(maxBackoff)
	}
	if d < float64(minDelay) {
		d = float64(minDelay)
	}
	return time.Duration(d)
}

// applyJitter randomizes d multiplicatively within ±jitterFraction.
func applyJitter(d float64) float64 {
	return d * (1 + (rand.Float64()*2-1)*jitterFraction)
}
