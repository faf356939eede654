package middleware

import (
	"net/http"
	"time"
)

// DefaultRequestTimeout is the default request timeout (30 seconds)
const DefaultRequestTimeout = 30 * time.Second

const timeoutBody = `{"success":false,"error":"timeout","message":"Request timed out"}`

// Timeout bounds handler execution. The handler's context is cancelled when
// the deadline passes and the client receives a 503 JSON body.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
