package backend

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the backend answers with anything but 200.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d %s", e.Op, e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("%s: unexpected status %d %s: %s", e.Op, e.Code, http.StatusText(e.Code), e.Body)
}

// DecodeError is returned when a 200 response carries a payload that does
// not match the endpoint's schema.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
