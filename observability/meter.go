package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs
// it globally. Returns a MeterProvider that should be shut down on
// application exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds instruments for API call and webhook observability.
type Metrics struct {
	callTotal       metric.Int64Counter
	callDuration    metric.Float64Histogram
	webhookTotal    metric.Int64Counter
	webhookDuration metric.Float64Histogram
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	callTotal, err := meter.Int64Counter("api.call.total",
		metric.WithDescription("Total number of API calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating api.call.total counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram("api.call.duration",
		metric.WithDescription("Duration of API calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating api.call.duration histogram: %w", err)
	}

	webhookTotal, err := meter.Int64Counter("webhook.delivery.total",
		metric.WithDescription("Total number of webhook deliveries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhook.delivery.total counter: %w", err)
	}

	webhookDuration, err := meter.Float64Histogram("webhook.delivery.duration",
		metric.WithDescription("Duration of webhook processing in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating webhook.delivery.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("error.total",
		metric.WithDescription("Total errors by kind and component"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error.total counter: %w", err)
	}

	return &Metrics{
		callTotal:       callTotal,
		callDuration:    callDuration,
		webhookTotal:    webhookTotal,
		webhookDuration: webhookDuration,
		errorTotal:      errorTotal,
	}, nil
}

// RecordAPICall records a completed API call.
func (m *Metrics) RecordAPICall(ctx context.Context, method, operation, status string, duration time.Duration) {
	m.callTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.callDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("operation", operation),
	))
}

// RecordWebhookDelivery records a processed webhook delivery.
func (m *Metrics) RecordWebhookDelivery(ctx context.Context, eventType, status string, duration time.Duration) {
	m.webhookTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", status),
	))
	m.webhookDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// RecordError records an error by kind and component.
func (m *Metrics) RecordError(ctx context.Context, kind, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("component", component),
	))
}
