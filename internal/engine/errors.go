package engine

import (
	"fmt"
	"time"
)

// APIError represents a structured engine error response.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			return fmt.Sprintf("engine error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
		}
		return fmt.Sprintf("engine error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("engine error: status=%d", e.StatusCode)
}

// BadRequestError indicates the engine rejected the request (e.g., a model
// spec it cannot build, or mismatched series lengths).
type BadRequestError struct{ *APIError }

func (e *BadRequestError) Error() string { return fmt.Sprintf("bad request: %s", e.APIError.Error()) }

// BusyError indicates 429 responses and may include a Retry-After.
type BusyError struct {
	*APIError
	RetryAfter time.Duration
}

func (e *BusyError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("engine busy: wait about %ds before retrying: %s", int(e.RetryAfter.Seconds()), e.APIError.Error())
	}
	return fmt.Sprintf("engine busy: %s", e.APIError.Error())
}

// ServerError indicates 5xx errors from the engine.
type ServerError struct{ *APIError }

func (e *ServerError) Error() string { return fmt.Sprintf("engine failure: %s", e.APIError.Error()) }

// UnreachableError indicates the engine daemon is not reachable.
type UnreachableError struct {
	Host string
	Err  error
}

func (e *UnreachableError) Error() string {
	if e == nil {
		return "unreachable"
	}
	if e.Host != "" {
		return fmt.Sprintf("engine unreachable at %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("engine unreachable: %v", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }
