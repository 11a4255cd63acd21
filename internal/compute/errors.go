package compute

import "fmt"

// RemoteCallError is a transport failure or a non-2xx answer from the
// backend. StatusCode is 0 when no response was received. Body is
// truncated to the client's configured limit.
type RemoteCallError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// ResponseShapeError means the backend answered successfully but with a
// payload none of the known shapes accept.
type ResponseShapeError struct {
	Endpoint string
	Reason   string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("unrecognized response from %s: %s", e.Endpoint, e.Reason)
}

func truncate(b []byte, limit int) string {
	if limit <= 0 || len(b) <= limit {
		return string(b)
	}
	return string(b[:limit])
}
