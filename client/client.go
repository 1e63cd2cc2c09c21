package client

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/ghkit/auth"
	"github.com/kbukum/ghkit/cache"
	"github.com/kbukum/ghkit/errors"
	"github.com/kbukum/ghkit/logger"
	"github.com/kbukum/ghkit/resilience"
)

const instrumentationName = "github.com/kbukum/ghkit/client"

// Client owns the cache, the circuit breaker, and the retry policy for
// one remote API. Instances are independent; nothing is shared through
// package-level state.
type Client struct {
	cfg     Config
	cache   *cache.Cache
	breaker *resilience.CircuitBreaker
	tokens  auth.TokenProvider
	log     *logger.Logger

	tracer      trace.Tracer
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	retries     metric.Int64Counter
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTokenProvider sets the token provider used by BearerToken.
func WithTokenProvider(tp auth.TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		cache:  cache.New(cfg.Cache),
		log:    logger.Nop(),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("client")

	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		log := c.log
		breakerCfg.OnStateChange = func(name string, from, to resilience.State) {
			log.Warn("circuit breaker state change", logger.Fields(
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			))
		}
	}
	c.breaker = resilience.NewCircuitBreaker(breakerCfg)

	meter := otel.Meter(instrumentationName)
	c.cacheHits, _ = meter.Int64Counter("ghkit.cache.hits",
		metric.WithDescription("Cache hits for orchestrated calls"))
	c.cacheMisses, _ = meter.Int64Counter("ghkit.cache.misses",
		metric.WithDescription("Cache misses for orchestrated calls"))
	c.retries, _ = meter.Int64Counter("ghkit.retry.attempts",
		metric.WithDescription("Retry attempts for orchestrated calls"))

	return c
}

// Cache returns the client's cache.
func (c *Client) Cache() *cache.Cache { return c.cache }

// Breaker returns the client's circuit breaker.
func (c *Client) Breaker() *resilience.CircuitBreaker { return c.breaker }

// BearerToken returns the Authorization header value for the configured
// token provider.
func (c *Client) BearerToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", fmt.Errorf("client: no token provider configured")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + token, nil
}

// CallSpec describes one orchestrated remote call.
type CallSpec[T any] struct {
	// Method is the logical API method name; it seeds the cache key.
	Method string
	// Operation names the call for error context. Defaults to Method.
	Operation string
	// Params are fingerprinted into the cache key and summarized
	// (truncated, redacted) into error context.
	Params any
	// TTL overrides the cache default for this call's result.
	TTL time.Duration
	// BypassCache skips both the lookup and the write-back.
	BypassCache bool
	// Call is the remote-call thunk, issued exactly as given.
	Call func(ctx context.Context) (T, error)
	// Validate is the optional response schema check. A failure becomes
	// a non-retryable validation error.
	Validate func(T) error
}

// Do executes one call: cache lookup, retry orchestration behind the
// client's breaker, schema validation, cache write-back. Two concurrent
// misses for the same key both call the remote and both write back;
// last write wins. There is no single-flight coalescing.
func Do[T any](ctx context.Context, c *Client, spec CallSpec[T]) (T, error) {
	var zero T
	if spec.Call == nil {
		return zero, errors.Internal(fmt.Errorf("client: CallSpec.Call is required"))
	}
	operation := spec.Operation
	if operation == "" {
		operation = spec.Method
	}

	ctx, span := c.tracer.Start(ctx, "ghkit.call", trace.WithAttributes(
		attribute.String("api.method", spec.Method),
		attribute.String("api.operation", operation),
	))
	defer span.End()

	key := cache.BuildKey(spec.Method, spec.Params)
	start := time.Now()

	if !spec.BypassCache {
		if v, ok := c.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				c.cacheHits.Add(ctx, 1)
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return typed, nil
			}
			// A type mismatch means the key was reused across result
			// types; drop the stale entry and fall through to the call.
			c.cache.Delete(key)
		}
		c.cacheMisses.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cache.hit", false))
	}

	policy := c.cfg.Retry
	policy.Breaker = c.breaker
	policy.OnRetry = func(nextAttempt int, err error, delay time.Duration) {
		if err == nil {
			return
		}
		c.retries.Add(ctx, 1)
		c.log.Warn("retrying call", logger.Fields(
			"method", spec.Method,
			"attempt", nextAttempt,
			"delay", delay.String(),
			"error", err.Error(),
		))
	}

	result, err := resilience.Execute(ctx, policy, func() (T, error) {
		out, callErr := spec.Call(ctx)
		if callErr != nil {
			return out, callErr
		}
		if spec.Validate != nil {
			if vErr := spec.Validate(out); vErr != nil {
				return out, errors.Validation(vErr.Error()).WithCause(vErr)
			}
		}
		return out, nil
	})
	if err != nil {
		apiErr := errors.Classify(err).WithDetails(map[string]any{
			"method":      spec.Method,
			"operation":   operation,
			"params":      summarizeParams(spec.Params),
			"max_retries": policy.Retries,
			"started_at":  start.UTC().Format(time.RFC3339Nano),
		})
		span.RecordError(apiErr)
		span.SetStatus(codes.Error, string(apiErr.Kind))
		c.log.ErrorErr("call failed", apiErr, logger.Fields(
			"method", spec.Method,
			"operation", operation,
		))
		return zero, apiErr
	}

	if !spec.BypassCache {
		c.cache.SetWithTTL(key, result, spec.TTL)
	}
	return result, nil
}
