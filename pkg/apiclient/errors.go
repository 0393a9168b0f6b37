package apiclient

import (
	"errors"
	"fmt"
)

// RequestError is returned for every non-2xx response and for transport
// failures. Message is the server's "error" field when it sent one, otherwise
// a fallback naming the operation.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Message extracts the user-facing text of err.
func Message(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func fallback(text string, status int) string {
	if status == 0 {
		return text
	}
	return fmt.Sprintf("%s (%d)", text, status)
}
