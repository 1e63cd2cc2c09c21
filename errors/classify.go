package errors

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Classify converts an arbitrary failure into a tagged *APIError. It is
// the single boundary between untyped errors and the taxonomy: retry and
// circuit-breaker logic only ever see classified errors.
//
// Classification order: already-classified errors pass through, context
// deadline and net timeouts become KindTimeout, recognizable transport
// failures (reset, refused, unknown host) become KindNetwork, and
// everything else becomes KindInternal.
func Classify(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	if errors.Is(err, context.Canceled) {
		return Internal(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout(err)
	}

	if isTransportError(err) {
		return Network(err)
	}

	return Internal(err)
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// IsKind reports whether err classifies to the given kind.
func IsKind(err error, kind Kind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

// isTransportError recognizes connection-level failure signatures.
func isTransportError(err error) bool {
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// Last resort for errors that lost their type through wrapping.
	msg := err.Error()
	for _, sig := range []string{
		"connection reset",
		"connection refused",
		"no such host",
		"broken pipe",
		"i/o timeout",
	} {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
