// Package webhook validates inbound signed event deliveries,
// deduplicates them by delivery identifier, and dispatches each one to
// a registered handler exactly once.
//
// The validation pipeline is strict and ordered; failing any step
// aborts before any handler side effect:
//
//  1. non-empty payload and headers
//  2. timing-safe HMAC signature check (SHA-256, legacy SHA-1 only when
//     strict mode is off)
//  3. payload parse into a typed event
//  4. UUID delivery-identifier check
//  5. duplicate-delivery absorption (silent success)
//  6. handler dispatch; the delivery is marked processed only after the
//     handler succeeds, so the sender's re-delivery of a failed event
//     can still be processed later
//
// GinHandler bridges an HTTP request to the ingestor for callers that
// mount the endpoint with gin.
package webhook
