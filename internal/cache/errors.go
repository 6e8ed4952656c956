package cache

import (
	"errors"
	"fmt"
)

// ErrNilParser is returned when Fetch is called without a parser.
var ErrNilParser = errors.New("cache: parser is required")

// FetchError reports a failed upstream request: either a transport failure
// (Err set) or a non-2xx response (Status set).
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }
