package domain

import (
	"errors"
	"strings"
)

// Failure kinds shared by every stage of the pipeline. Adapters wrap their
// errors in a PipelineError carrying one of these so callers can branch with
// errors.Is without knowing which adapter produced the failure.
var (
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	ErrNotReady          = errors.New("capture not ready")
	ErrTransportFailure  = errors.New("transport failure")
	ErrInvalidResponse   = errors.New("invalid response")
	ErrAuthFailure       = errors.New("catalog authentication failed")
	ErrNoResults         = errors.New("no results")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("operation already in flight")
	ErrStale             = errors.New("stale result discarded")
	ErrNotFound          = errors.New("domain: not found")
	ErrInvalidArgument   = errors.New("domain: invalid argument")
)

// PipelineError decorates a failure kind with the operation that produced it.
type PipelineError struct {
	Kind   error
	Op     string
	Detail string
	Err    error
}

// NewError builds a PipelineError of the given kind. err may be nil.
func NewError(kind error, op string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

// WithDetail attaches a short human-readable detail and returns the receiver.
func (e *PipelineError) WithDetail(detail string) *PipelineError {
	e.Detail = detail
	return e
}

func (e *PipelineError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PipelineError) Is(target error) bool {
	return target == e.Kind
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

type errorInfo struct {
	code    string
	message string
}

var errorTable = []struct {
	kind error
	info errorInfo
}{
	{ErrDeviceUnavailable, errorInfo{"device_unavailable", "Camera is not available. Check that it is connected and permitted."}},
	{ErrNotReady, errorInfo{"not_ready", "Camera is still starting. Try again in a moment."}},
	{ErrAuthFailure, errorInfo{"auth_failure", "Could not authenticate with the music catalog."}},
	{ErrNoResults, errorInfo{"no_results", "No playlist found"}},
	{ErrInvalidResponse, errorInfo{"invalid_response", "Received an unreadable response. Try again."}},
	{ErrTransportFailure, errorInfo{"transport_failure", "A required service could not be reached. Try again."}},
	{ErrInvalidTransition, errorInfo{"invalid_transition", "That action is not available right now."}},
	{ErrBusy, errorInfo{"busy", "Still working on the previous request."}},
	{ErrStale, errorInfo{"stale", "The result arrived after the session moved on."}},
	{ErrNotFound, errorInfo{"not_found", "Not found."}},
	{ErrInvalidArgument, errorInfo{"invalid_argument", "The request was missing a required value."}},
}

func lookup(err error) (errorInfo, bool) {
	for _, entry := range errorTable {
		if errors.Is(err, entry.kind) {
			return entry.info, true
		}
	}
	return errorInfo{}, false
}

// Code returns a stable snake_case identifier for err, or "internal" when err
// does not carry a known failure kind. A nil error has no code.
func Code(err error) string {
	if err == nil {
		return ""
	}
	if info, ok := lookup(err); ok {
		return info.code
	}
	return "internal"
}

// Message returns the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if info, ok := lookup(err); ok {
		return info.message
	}
	return "Something went wrong. Try again."
}
