package errors

import (
	"net/http"
	"strconv"
	"testing"
	"time"
)

func response(status int, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{StatusCode: status, Header: h}
}

func TestFromResponse_Success(t *testing.T) {
	if err := FromResponse(response(200, nil), nil); err != nil {
		t.Errorf("expected nil for 200, got %v", err)
	}
	if err := FromResponse(response(204, nil), nil); err != nil {
		t.Errorf("expected nil for 204, got %v", err)
	}
}

func TestFromResponse_TooManyRequests(t *testing.T) {
	err := FromResponse(response(429, map[string]string{"Retry-After": "30"}), nil)

	if err.Kind != KindRateLimit {
		t.Errorf("kind = %s, want rate_limit", err.Kind)
	}
	if err.RetryAfter != 30*time.Second {
		t.Errorf("retry_after = %v, want 30s", err.RetryAfter)
	}
}

func TestFromResponse_ExhaustedQuota(t *testing.T) {
	reset := time.Now().Add(2 * time.Minute).Unix()
	err := FromResponse(response(403, map[string]string{
		"X-RateLimit-Remaining": "0",
		"X-RateLimit-Reset":     strconv.FormatInt(reset, 10),
	}), nil)

	if err.Kind != KindRateLimit {
		t.Errorf("kind = %s, want rate_limit", err.Kind)
	}
	if err.RetryAfter <= 0 || err.RetryAfter > 2*time.Minute {
		t.Errorf("retry_after = %v, want within (0, 2m]", err.RetryAfter)
	}
}

func TestFromResponse_SecondaryLimit(t *testing.T) {
	body := []byte(`{"message":"You have exceeded a secondary rate limit"}`)
	err := FromResponse(response(403, map[string]string{"Retry-After": "60"}), body)

	if err.Kind != KindSecondaryRateLimit {
		t.Errorf("kind = %s, want secondary_rate_limit", err.Kind)
	}
	if err.RetryAfter != time.Minute {
		t.Errorf("retry_after = %v, want 1m", err.RetryAfter)
	}
}

func TestFromResponse_PlainForbidden(t *testing.T) {
	err := FromResponse(response(403, nil), []byte(`{"message":"Must have admin rights"}`))

	if err.Kind != KindHTTPAPI {
		t.Errorf("kind = %s, want http_api", err.Kind)
	}
	if err.Retryable {
		t.Error("plain 403 should not be retryable")
	}
}

func TestFromResponse_ServerError(t *testing.T) {
	err := FromResponse(response(502, nil), nil)

	if err.Kind != KindHTTPAPI || err.StatusCode != 502 {
		t.Errorf("got %+v, want http_api 502", err)
	}
	if !err.Retryable {
		t.Error("502 should be retryable")
	}
}

func TestFromResponse_PastResetIgnored(t *testing.T) {
	reset := time.Now().Add(-time.Minute).Unix()
	err := FromResponse(response(429, map[string]string{
		"X-RateLimit-Reset": strconv.FormatInt(reset, 10),
	}), nil)

	if err.RetryAfter != 0 {
		t.Errorf("retry_after = %v, want 0 for past reset", err.RetryAfter)
	}
}
