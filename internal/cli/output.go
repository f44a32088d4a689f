package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/rockquest/api"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printMessage(m api.Message) error {
	if m.ID != "" {
		_, err := fmt.Fprintf(a.out, "%s (%s)\n", m.Message, m.ID)
		return err
	}
	_, err := fmt.Fprintln(a.out, m.Message)
	return err
}

// describeError returns a hint for errors the user can fix, or "".
func describeError(err error) string {
	switch {
	case rqerrors.Is(err, rqerrors.ErrAuth), api.IsUnauthorized(err):
		return fmt.Sprintf("sign in by setting %s, %s, or %s and %s", envIDToken, envRefreshToken, envEmail, envPassword)
	case api.IsForbidden(err):
		return "your account's role cannot do this"
	case api.IsNotFound(err):
		return "not found (run `rockquest profile complete` if you have not created a profile yet)"
	case rqerrors.Is(err, rqerrors.ErrTimeout):
		return "the backend did not answer in time; check ROCKQUEST_API_TIMEOUT"
	case rqerrors.Is(err, rqerrors.ErrNetwork):
		return "cannot reach the backend; check ROCKQUEST_API_URL"
	case rqerrors.Is(err, rqerrors.ErrBucketNotFound):
		return "the storage bucket does not exist; check ROCKQUEST_STORAGE_BUCKET"
	default:
		return ""
	}
}
