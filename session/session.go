// Package session is the client's view of the identity provider: who is
// signed in, and a bearer token for them on demand.
package session

import (
	"context"
	"fmt"
	"time"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

// Identity is the signed-in user as described by the ID token.
type Identity struct {
	UID           string `json:"uid"`                      // Provider user id (the "sub" claim)
	Email         string `json:"email,omitempty"`          // Email address, when the provider shares it
	EmailVerified bool   `json:"email_verified,omitempty"` // Whether the provider verified the email
	Name          string `json:"name,omitempty"`           // Display name
}

// Provider is the contract the dispatcher and callers consume.
type Provider interface {
	// CurrentUser returns the signed-in identity without blocking.
	CurrentUser() (*Identity, bool)

	// Token returns a bearer token for id, refreshing it if needed.
	// Failures are *AuthError.
	Token(ctx context.Context, id *Identity) (string, error)

	// OnAuthStateChanged registers fn for sign-in/sign-out transitions. fn
	// receives nil on sign-out.
	OnAuthStateChanged(fn func(*Identity)) (unsubscribe func())

	// SignOut ends the session.
	SignOut(ctx context.Context) error
}

// Session stores the state of one sign-in, from sign-in until sign-out.
type Session struct {
	Identity     *Identity // Who signed in
	RefreshToken string    // Opaque refresh token, empty for static tokens
	TokenExpiry  time.Time // Expiry of the most recent bearer token
	SignedInAt   time.Time // When the session was created
}

// AuthError reports that no valid bearer token could be obtained.
type AuthError struct {
	UID string
	Err error
}

func (e *AuthError) Error() string {
	if e.UID == "" {
		return fmt.Sprintf("session: %v", e.Err)
	}
	return fmt.Sprintf("session: token for %s: %v", e.UID, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is makes every AuthError match errors.ErrAuth.
func (e *AuthError) Is(target error) bool {
	return target == rqerrors.ErrAuth
}

func authErr(id *Identity, err error) error {
	uid := ""
	if id != nil {
		uid = id.UID
	}
	return &AuthError{UID: uid, Err: err}
}
