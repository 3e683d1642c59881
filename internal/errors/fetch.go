package errors

import (
	stdErrors "errors"
	"fmt"
)

// FetchError is returned when a document could not be retrieved within
// the allowed number of attempts.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int // last HTTP status seen, 0 for transport failures
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s failed after %d attempt(s) (HTTP %d): %v", e.URL, e.Attempts, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s failed after %d attempt(s) (HTTP %d)", e.URL, e.Attempts, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
	default:
		return fmt.Sprintf("fetch %s failed after %d attempt(s)", e.URL, e.Attempts)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, attempts, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		Attempts:   attempts,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsFetchError checks if error is a FetchError
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return stdErrors.As(err, &fetchErr)
}
