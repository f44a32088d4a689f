package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/rockquest/dispatcher"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

// LowConfidenceFallback is shown when a 422 scan rejection carries no
// message of its own.
const LowConfidenceFallback = "Rock detection confidence too low. Try getting closer or improving lighting."

// IsNotFound reports whether err is a 404 from the backend, e.g. GetProfile
// for a user who has not completed their profile.
func IsNotFound(err error) bool {
	return dispatcher.StatusCode(err) == http.StatusNotFound
}

// IsUsernameTaken reports whether err is CompleteProfile's 400 rejection.
func IsUsernameTaken(err error) bool {
	return dispatcher.StatusCode(err) == http.StatusBadRequest
}

// IsForbidden reports whether err is a 403, e.g. editing someone else's post.
func IsForbidden(err error) bool {
	return dispatcher.StatusCode(err) == http.StatusForbidden
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	return dispatcher.StatusCode(err) == http.StatusUnauthorized
}

// LowConfidence reports whether err is a scan rejected for low classifier
// confidence and returns the message to show. The backend sends either
// {"detail": "..."} or {"detail": {"message": "..."}}; a 422 carrying a
// validation error list is a malformed request, not low confidence.
func LowConfidence(err error) (string, bool) {
	var httpErr *dispatcher.HTTPError
	if !rqerrors.As(err, &httpErr) || httpErr.Status != http.StatusUnprocessableEntity {
		return "", false
	}

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(httpErr.Body, &body) == nil {
		if d := bytes.TrimSpace(body.Detail); len(d) > 0 && d[0] == '[' {
			return "", false
		}
	}

	if msg := httpErr.Detail(); msg != "" {
		return msg, true
	}
	return LowConfidenceFallback, true
}
