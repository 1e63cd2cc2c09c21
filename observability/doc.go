// Package observability wires OpenTelemetry tracing and metrics for
// the client. InitTracer and InitMeter install global providers, so
// spans and counters recorded by the client package are exported once
// either is called; without them everything stays a no-op.
package observability
