package dispatcher

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

// HTTPError is returned when the server answered with a non-2xx status.
type HTTPError struct {
	Status int    // HTTP status code
	Body   []byte // Raw response body
	Method string
	Path   string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if d := e.Detail(); d != "" {
		msg += ": " + d
	}
	return msg
}

func (e *HTTPError) Is(target error) bool {
	return target == rqerrors.ErrHTTP
}

// Detail returns the human readable part of a FastAPI style error body:
// "detail" as a string, "detail.message", or the joined "msg" fields of a
// validation error list. It returns "" when the body has none of these.
func (e *HTTPError) Detail() string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Detail, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// NetworkError is returned when no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, rqerrors.ErrNetwork, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == rqerrors.ErrNetwork
}

// TimeoutError is a NetworkError caused by the dispatcher timeout or the
// caller's deadline.
type TimeoutError struct {
	Method  string
	Path    string
	Timeout time.Duration // Dispatcher timeout in force, 0 if none
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s %s: %v after %s", e.Method, e.Path, rqerrors.ErrTimeout, e.Timeout)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, rqerrors.ErrTimeout)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

func (e *TimeoutError) Is(target error) bool {
	return target == rqerrors.ErrTimeout || target == rqerrors.ErrNetwork
}

// StatusCode returns the status of an *HTTPError in err's chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if rqerrors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}
