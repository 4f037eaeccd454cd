package provider

import (
	"errors"
	"fmt"
)

// ErrTransport marks a failed page fetch: network error, non-2xx status,
// upstream error code or an undecodable body.
var ErrTransport = errors.New("transport failure")

// TransportError carries the details of a failed page fetch.
type TransportError struct {
	Source     string
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Source + " " + ErrTransport.Error()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrTransport and the underlying cause to errors.Is/As.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}
