package taskify

import "fmt"

// APIError is a well-formed error envelope returned by the server.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("taskify: %d %s: %s", e.Status, e.Code, e.Message)
}

// DecodeError means the response body was not the expected envelope or its
// data did not fit the requested type.
type DecodeError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("taskify: decode %d response: %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
