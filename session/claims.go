package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are the ID token fields the client cares about.
type Claims struct {
	Subject       string    // "sub", falling back to Firebase's "user_id"
	Email         string    // "email"
	EmailVerified bool      // "email_verified"
	Name          string    // "name"
	Issuer        string    // "iss"
	Audience      []string  // "aud"
	Roles         []string  // "roles", when the issuer adds them
	IssuedAt      time.Time // "iat"
	ExpiresAt     time.Time // "exp", zero when absent
}

// ParseClaims reads the claims of rawToken WITHOUT verifying its signature.
// Use it only on tokens obtained directly from the identity provider.
func ParseClaims(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, rqerrors.ErrInvalidToken
	}

	token, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rqerrors.ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("error extracting claims")
	}

	c := &Claims{}
	c.Subject, _ = mc["sub"].(string)
	if c.Subject == "" {
		c.Subject, _ = mc["user_id"].(string)
	}
	c.Email, _ = mc["email"].(string)
	c.EmailVerified, _ = mc["email_verified"].(bool)
	c.Name, _ = mc["name"].(string)
	c.Issuer, _ = mc["iss"].(string)
	c.Audience = utils.ToStringSlice(mc["aud"])
	c.Roles = utils.ToStringSlice(mc["roles"])

	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: token missing sub claim", rqerrors.ErrInvalidToken)
	}
	return c, nil
}

// Expired reports whether the token has expired at now. Tokens without an
// exp claim never expire.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// Identity converts the claims to an Identity.
func (c *Claims) Identity() *Identity {
	return &Identity{
		UID:           c.Subject,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		Name:          c.Name,
	}
}
