// Package resilience provides the failure-handling core for remote API
// calls: a three-state circuit breaker and a classifying retry
// orchestrator with jittered exponential backoff.
//
// The two compose through Policy:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultBreakerConfig("github"))
//	p := resilience.DefaultPolicy()
//	p.Breaker = cb
//
//	repo, err := resilience.Execute(ctx, p, func() (*Repo, error) {
//	    return fetchRepo(ctx, owner, name)
//	})
//
// Failures are classified through the errors package before any retry
// decision; the orchestrator never inspects error values structurally.
package resilience
