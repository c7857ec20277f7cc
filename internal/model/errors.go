package model

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError is a non-200 answer from an upstream. Retry logic inspects it.
type HTTPError struct {
	StatusCode int
	URL        string        // request URL, credentials stripped; may be empty
	RetryAfter time.Duration // from Retry-After, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	case e.URL != "":
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// Transient reports whether the status is worth retrying: 429 and 5xx.
func (e *HTTPError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
