package errors

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Rate limit headers sent by the GitHub API.
const (
	headerRetryAfter         = "Retry-After"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
)

// FromResponse maps a non-2xx HTTP response onto the error taxonomy.
// Returns nil for 2xx responses. body may be nil; it is only inspected
// to distinguish secondary rate limits and to extract a message.
func FromResponse(resp *http.Response, body []byte) *APIError {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return RateLimit(retryAfterFrom(resp))
	case http.StatusForbidden:
		if resp.Header.Get(headerRateLimitRemaining) == "0" {
			return RateLimit(retryAfterFrom(resp))
		}
		if isSecondaryLimitBody(body) {
			return SecondaryRateLimit(retryAfterFrom(resp))
		}
	}

	return HTTPAPI(resp.StatusCode, messageFrom(resp.StatusCode, body))
}

// retryAfterFrom reads the advertised wait: Retry-After in seconds,
// falling back to the X-RateLimit-Reset epoch timestamp. Zero when
// neither is usable.
func retryAfterFrom(resp *http.Response) time.Duration {
	if v := resp.Header.Get(headerRetryAfter); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if v := resp.Header.Get(headerRateLimitReset); v != "" {
		if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
			if wait := time.Until(time.Unix(epoch, 0)); wait > 0 {
				return wait
			}
		}
	}
	return 0
}

func isSecondaryLimitBody(body []byte) bool {
	s := strings.ToLower(string(body))
	return strings.Contains(s, "secondary rate limit") || strings.Contains(s, "abuse")
}

func messageFrom(statusCode int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "HTTP " + strconv.Itoa(statusCode)
	}
	const maxMessage = 200
	if len(msg) > maxMessage {
		msg = msg[:maxMessage]
	}
	return msg
}
