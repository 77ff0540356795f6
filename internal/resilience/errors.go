// Package resilience provides retry and circuit breaker patterns for calls
// to the extraction provider.
package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"
)

// RateLimitError is returned when the provider responds with HTTP 429. It
// carries the server's Retry-After hint, if any, so the retry loop can honor
// it instead of the computed backoff.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// IsRetryable reports whether the error is safe to retry against the
// provider: connection failures, network timeouts, and rate limiting. Any
// other upstream response (including 5xx) is treated as terminal, since the
// provider's workflow API does not recover mid-run.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// An error carrying an upstream HTTP status is terminal: rate limiting
	// was already classified above, and response bodies can echo transport
	// phrases that would trip the string heuristics below.
	var httpErr interface{ HTTPStatus() int }
	if errors.As(err, &httpErr) {
		return false
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"context deadline exceeded",
		"server closed idle connection",
	}
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
