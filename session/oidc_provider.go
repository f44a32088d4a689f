package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// IdentityConfig is the subset of the client configuration the provider needs.
type IdentityConfig interface {
	GetIssuerURL() string
	GetTokenURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
}

var _ Provider = (*OIDCProvider)(nil)

// OIDCProvider signs users in against an OpenID Connect issuer and hands out
// their ID token as the bearer credential. Refresh is delegated to the
// oauth2 token source.
type OIDCProvider struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier

	lock    sync.RWMutex
	session *Session
	source  oauth2.TokenSource

	listeners Listeners
}

// NewOIDCProvider discovers the issuer's endpoints and keys. A configured
// token URL overrides the discovered token endpoint.
func NewOIDCProvider(ctx context.Context, cfg IdentityConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, cfg.GetIssuerURL())
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	endpoint := provider.Endpoint()
	if tokenURL := cfg.GetTokenURL(); tokenURL != "" {
		endpoint.TokenURL = tokenURL
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GetClientID(),
		ClientSecret: cfg.GetClientSecret(),
		Endpoint:     endpoint,
		Scopes:       cfg.GetScopes(),
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.GetClientID()})
	return NewOIDCProviderWithVerifier(oauthCfg, verifier), nil
}

// NewOIDCProviderWithVerifier builds a provider from explicit parts. A nil
// verifier means ID tokens are trusted as returned by the token endpoint.
func NewOIDCProviderWithVerifier(oauthCfg *oauth2.Config, verifier *oidc.IDTokenVerifier) *OIDCProvider {
	return &OIDCProvider{
		oauth:    oauthCfg,
		verifier: verifier,
	}
}

// SignInWithPassword exchanges email/password credentials for tokens.
func (p *OIDCProvider) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	tok, err := p.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("%w: %v", rqerrors.ErrAuth, err)}
	}
	return p.start(ctx, tok)
}

// Restore resumes a session from a refresh token saved by an earlier sign-in.
func (p *OIDCProvider) Restore(ctx context.Context, refreshToken string) (*Identity, error) {
	if refreshToken == "" {
		return nil, &AuthError{Err: rqerrors.ErrNoRefreshToken}
	}
	// An empty access token forces the source to refresh straight away.
	tok, err := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("%w: %v", rqerrors.ErrAuth, err)}
	}
	return p.start(ctx, tok)
}

func (p *OIDCProvider) start(ctx context.Context, tok *oauth2.Token) (*Identity, error) {
	id, err := p.identityFromToken(ctx, tok)
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	// The source outlives the sign-in call; keep ctx values (HTTP client)
	// but not its cancellation.
	source := p.oauth.TokenSource(context.WithoutCancel(ctx), tok)

	p.lock.Lock()
	p.session = &Session{
		Identity:     id,
		RefreshToken: tok.RefreshToken,
		TokenExpiry:  tok.Expiry,
		SignedInAt:   NowTimeFunc(),
	}
	p.source = source
	p.lock.Unlock()

	log.Debug().Str("uid", id.UID).Msg("session: signed in")
	p.listeners.Notify(id)
	return id, nil
}

func (p *OIDCProvider) identityFromToken(ctx context.Context, tok *oauth2.Token) (*Identity, error) {
	rawID := bearerFromToken(tok)
	if rawID == "" {
		return nil, fmt.Errorf("%w: token response has no token", rqerrors.ErrInvalidToken)
	}

	if p.verifier == nil {
		claims, err := ParseClaims(rawID)
		if err != nil {
			return nil, err
		}
		return claims.Identity(), nil
	}

	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rqerrors.ErrInvalidToken, err)
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", rqerrors.ErrInvalidToken, err)
	}
	return &Identity{
		UID:           idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

// bearerFromToken prefers the OIDC ID token and falls back to the access token.
func bearerFromToken(tok *oauth2.Token) string {
	if tok == nil {
		return ""
	}
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		return idToken
	}
	return tok.AccessToken
}

func (p *OIDCProvider) CurrentUser() (*Identity, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.session == nil {
		return nil, false
	}
	id := *p.session.Identity
	return &id, true
}

// Session returns a copy of the current session, if any.
func (p *OIDCProvider) Session() (Session, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.session == nil {
		return Session{}, false
	}
	return *p.session, true
}

func (p *OIDCProvider) Token(ctx context.Context, id *Identity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", authErr(id, err)
	}

	p.lock.RLock()
	s, source := p.session, p.source
	p.lock.RUnlock()

	if s == nil || source == nil {
		return "", authErr(id, rqerrors.ErrNotSignedIn)
	}
	if id != nil && id.UID != s.Identity.UID {
		return "", authErr(id, rqerrors.ErrInvalidIdentity)
	}

	tok, err := source.Token()
	if err != nil {
		return "", authErr(id, fmt.Errorf("%w: %v", rqerrors.ErrTokenExpired, err))
	}
	bearer := bearerFromToken(tok)
	if bearer == "" {
		return "", authErr(id, rqerrors.ErrInvalidToken)
	}

	p.lock.Lock()
	if p.session == s {
		s.TokenExpiry = tok.Expiry
		if tok.RefreshToken != "" {
			s.RefreshToken = tok.RefreshToken
		}
	}
	p.lock.Unlock()

	return bearer, nil
}

// OnAuthStateChanged calls fn once with the current state and then on every
// sign-in and sign-out.
func (p *OIDCProvider) OnAuthStateChanged(fn func(*Identity)) func() {
	unsubscribe := p.listeners.Add(fn)
	current, _ := p.CurrentUser()
	fn(current)
	return unsubscribe
}

func (p *OIDCProvider) SignOut(context.Context) error {
	p.lock.Lock()
	wasSignedIn := p.session != nil
	p.session = nil
	p.source = nil
	p.lock.Unlock()

	if wasSignedIn {
		log.Debug().Msg("session: signed out")
		p.listeners.Notify(nil)
	}
	return nil
}
