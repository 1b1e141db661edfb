package superagent

import (
	"encoding/json"
	"fmt"
)

// Response is the remote API's envelope: {"success", "data", "total_pages"}.
//
// Error payloads ({"detail": ...} from validation, {"error": ...} from handled
// exceptions) decode into the same struct, with Success false and Data zero.
// StatusCode is filled in by the client and is never part of the payload.
type Response[T any] struct {
	Success    bool            `json:"success"`
	Data       T               `json:"data"`
	TotalPages int             `json:"total_pages,omitempty"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
	StatusCode int             `json:"-"`
}

// OK reports whether the call succeeded both at the HTTP and envelope level.
func (r *Response[T]) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300 && r.Success
}

// Message returns a one-line description of a failed response, suitable for a
// user notification. It is empty for successful responses.
func (r *Response[T]) Message() string {
	if r == nil || r.OK() {
		return ""
	}
	for _, raw := range []json.RawMessage{r.Detail, r.Error} {
		if len(raw) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
		return string(raw)
	}
	return fmt.Sprintf("request failed with status %d", r.StatusCode)
}

// APIError is returned by a strict client for non-2xx responses.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("superagent %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
