package errors

import (
	"fmt"
	"strings"
	"time"
)

// Kind is a machine-readable classification tag.
type Kind string

const (
	// KindValidation indicates a response that failed its schema check.
	KindValidation Kind = "validation"
	// KindHTTPAPI indicates a non-2xx HTTP status from the remote API.
	KindHTTPAPI Kind = "http_api"
	// KindNetwork indicates a connection-level failure (reset, refused, DNS).
	KindNetwork Kind = "network"
	// KindTimeout indicates a request or connection timeout.
	KindTimeout Kind = "timeout"
	// KindRateLimit indicates a primary rate limit response.
	KindRateLimit Kind = "rate_limit"
	// KindSecondaryRateLimit indicates an abuse/secondary rate limit response.
	KindSecondaryRateLimit Kind = "secondary_rate_limit"
	// KindGraphQL indicates a query-level GraphQL errors array.
	KindGraphQL Kind = "graphql"
	// KindCircuitOpen indicates the circuit breaker rejected the call.
	KindCircuitOpen Kind = "circuit_open"
	// KindWebhookSignature indicates an invalid webhook signature.
	KindWebhookSignature Kind = "webhook_signature"
	// KindWebhookPayload indicates a malformed webhook payload.
	KindWebhookPayload Kind = "webhook_payload"
	// KindWebhookDeliveryID indicates a malformed webhook delivery identifier.
	KindWebhookDeliveryID Kind = "webhook_delivery_id"
	// KindInternal indicates an unclassified failure.
	KindInternal Kind = "internal"
)

// GraphQL error type strings recognized by the retry classifier.
const (
	GraphQLTypeRateLimited  = "RATE_LIMITED"
	GraphQLTypeValidation   = "VALIDATION"
	GraphQLTypeParseFailed  = "GRAPHQL_PARSE_FAILED"
	GraphQLTypeForbidden    = "FORBIDDEN"
	GraphQLTypeUnauthorized = "UNAUTHORIZED"
)

// GraphQLErrorItem is a single entry of a GraphQL errors array.
type GraphQLErrorItem struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

// APIError is the unified error type for the execution core.
type APIError struct {
	// Kind classifies the error.
	Kind Kind `json:"kind"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// StatusCode is the HTTP status code, if the error is HTTP-shaped.
	StatusCode int `json:"status_code,omitempty"`
	// RetryAfter is the wait advertised by the remote, if any.
	RetryAfter time.Duration `json:"-"`
	// RecoveryIn estimates the time until the breaker allows a call again.
	// Only set for KindCircuitOpen.
	RecoveryIn time.Duration `json:"-"`
	// Errors holds the GraphQL errors array for KindGraphQL.
	Errors []GraphQLErrorItem `json:"errors,omitempty"`
	// Retryable is the constructor's default retry hint. Retry policy may
	// override it per configuration.
	Retryable bool `json:"retryable"`
	// Details carries request context (method, attempts, params summary).
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause and returns the receiver.
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges the provided details and returns the receiver.
func (e *APIError) WithDetails(details map[string]any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// --- Constructors ---

// Validation creates an error for a response that failed its schema check.
func Validation(message string) *APIError {
	return &APIError{Kind: KindValidation, Message: message, Retryable: false}
}

// HTTPAPI creates an error for a non-2xx HTTP response.
func HTTPAPI(statusCode int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return &APIError{
		Kind:       KindHTTPAPI,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500 || statusCode == 408 || statusCode == 409 || statusCode == 429,
	}
}

// Network creates an error for a connection-level failure.
func Network(cause error) *APIError {
	return &APIError{Kind: KindNetwork, Message: cause.Error(), Retryable: true, Cause: cause}
}

// Timeout creates an error for a request that timed out.
func Timeout(cause error) *APIError {
	msg := "request timed out"
	if cause != nil {
		msg = cause.Error()
	}
	return &APIError{Kind: KindTimeout, Message: msg, Retryable: true, Cause: cause}
}

// RateLimit creates a primary rate limit error. retryAfter may be zero
// when the remote did not advertise a wait.
func RateLimit(retryAfter time.Duration) *APIError {
	return &APIError{
		Kind:       KindRateLimit,
		Message:    "rate limit exceeded",
		StatusCode: 429,
		RetryAfter: retryAfter,
		Retryable:  true,
	}
}

// SecondaryRateLimit creates a secondary (abuse) rate limit error.
func SecondaryRateLimit(retryAfter time.Duration) *APIError {
	return &APIError{
		Kind:       KindSecondaryRateLimit,
		Message:    "secondary rate limit exceeded",
		StatusCode: 403,
		RetryAfter: retryAfter,
		Retryable:  true,
	}
}

// GraphQL creates an error carrying a GraphQL errors array.
func GraphQL(items []GraphQLErrorItem) *APIError {
	msg := "graphql query failed"
	if len(items) > 0 && items[0].Message != "" {
		msg = items[0].Message
	}
	return &APIError{Kind: KindGraphQL, Message: msg, Errors: items}
}

// CircuitOpen creates an error for a call rejected by an open breaker.
// recoveryIn estimates the time until the next allowed attempt.
func CircuitOpen(recoveryIn time.Duration) *APIError {
	return &APIError{
		Kind:       KindCircuitOpen,
		Message:    fmt.Sprintf("circuit breaker is open, retry in %s", recoveryIn.Round(time.Millisecond)),
		RecoveryIn: recoveryIn,
		Retryable:  false,
	}
}

// WebhookSignature creates an error for an invalid webhook signature.
func WebhookSignature(message string) *APIError {
	return &APIError{Kind: KindWebhookSignature, Message: message, Retryable: false}
}

// WebhookPayload creates an error for a malformed webhook payload.
func WebhookPayload(message string) *APIError {
	return &APIError{Kind: KindWebhookPayload, Message: message, Retryable: false}
}

// WebhookDeliveryID creates an error for a malformed delivery identifier.
func WebhookDeliveryID(id string) *APIError {
	return &APIError{
		Kind:      KindWebhookDeliveryID,
		Message:   fmt.Sprintf("invalid delivery id %q", id),
		Retryable: false,
		Details:   map[string]any{"delivery_id": id},
	}
}

// Internal creates an error for an unclassified failure.
func Internal(cause error) *APIError {
	msg := "unexpected error"
	if cause != nil {
		msg = cause.Error()
	}
	return &APIError{Kind: KindInternal, Message: msg, Retryable: false, Cause: cause}
}
