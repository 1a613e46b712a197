package middleware

import (
	"net/http"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler time for the API routes. A request that runs past
// the limit gets 503 with a REQUEST_TIMEOUT envelope; its context is
// cancelled so store calls in flight stop too.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	message := string(errorEnvelope("REQUEST_TIMEOUT", "request timed out"))

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
