package httpclient

import (
	"errors"
	"fmt"
)

// ErrPreconditionFailed is returned by DoPUT when the server rejects a
// conditional write because the stored resource's entity tag no longer
// matches the expected one (HTTP 412).
var ErrPreconditionFailed = errors.New("precondition failed: entity tag mismatch")

// StatusError reports an unexpected HTTP status. Body holds a truncated
// response body for diagnostics.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

const maxErrorBody = 300

// truncateBody clips a response body for inclusion in a StatusError.
func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
