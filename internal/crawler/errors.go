package crawler

import "fmt"

// NetworkError reports a request that did not produce a usable response,
// either because the transport failed or the wiki answered with a non-2xx
// status.
type NetworkError struct {
	URL        string
	StatusCode int
	Detail     string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		if e.Detail != "" {
			return fmt.Sprintf("fetch %s: http status %d: %s", e.URL, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
