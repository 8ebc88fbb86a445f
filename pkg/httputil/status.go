package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HeaderRequestID carries the request ID between the server, its clients and
// the inference engine.
const HeaderRequestID = "X-Request-ID"

// maxErrorBody bounds how much of an error response body is kept.
const maxErrorBody = 512

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// CheckStatus returns nil for 2xx responses. Other statuses yield a
// *StatusError, wrapped in a [RetryableError] for 429 and 5xx. A prefix of
// the body is read into the error; the caller still closes resp.Body.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	err := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	if IsRetryableStatus(resp.StatusCode) {
		return &RetryableError{Err: err}
	}
	return err
}

// IsRetryableStatus reports whether a request that got status may succeed
// when repeated.
func IsRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
