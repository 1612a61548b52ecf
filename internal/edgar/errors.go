package edgar

import "fmt"

// ExhaustedError indicates a request still failed after all retry
// attempts. It carries the last observed status and error so callers
// can record a meaningful per-filing failure.
type ExhaustedError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *ExhaustedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("giving up on %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("giving up on %s after %d attempts (last status %d)", e.URL, e.Attempts, e.StatusCode)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// StatusError indicates a non-retryable HTTP error status (4xx other
// than 429). The request is not resent.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}
