package archive

import (
	"errors"
	"fmt"
)

// StatusError reports a non-2xx HTTP response from the archive API.
// It carries the status code so callers can branch on the class of
// failure (e.g. 400 for a bad token, 404 for an unknown record id)
// without parsing error messages.
type StatusError struct {
	// StatusCode is the numeric HTTP status code.
	StatusCode int
	// Status is the full status line, e.g. "404 Not Found".
	Status string
	// Method is the HTTP method of the failed request.
	Method string
	// URL is the full URL of the failed request.
	URL string
	// Body is the (truncated) response body, usually a JSON error message.
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("archive request %s %s returned %s", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus reports whether err is (or wraps) a StatusError with the given
// status code.
func IsStatus(err error, statusCode int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == statusCode
}
