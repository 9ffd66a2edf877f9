package provider

import "fmt"

// ErrorKind classifies provider failures so callers can tell an HTTP
// rejection from a transport problem. No retry happens at this layer;
// the orchestrator decides whether a unit is skipped or re-run.
type ErrorKind string

const (
	KindHTTP    ErrorKind = "http"
	KindNetwork ErrorKind = "network"
	KindTimeout ErrorKind = "timeout"
	KindDecode  ErrorKind = "decode"
)

// Error is the typed failure returned by Client.Fetch.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Endpoint   string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("provider %s error on %s: status %d", e.Kind, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("provider %s error on %s: %v", e.Kind, e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrUnsupportedResource is returned by a sport's path resolver when the
// sport has no such resource (e.g. qualifying outside F1). Callers treat
// it as "nothing to fetch", not as a failure.
var ErrUnsupportedResource = fmt.Errorf("resource not supported for this sport")
