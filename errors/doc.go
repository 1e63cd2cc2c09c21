// Package errors provides the unified error taxonomy for the API
// execution core. Every failure that crosses a component boundary is
// converted into a tagged *APIError by Classify, so that retry and
// circuit-breaker logic switch on the Kind tag instead of probing
// arbitrary error values structurally.
package errors
