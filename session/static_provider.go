package session

import (
	"context"
	"sync"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

var _ Provider = (*StaticProvider)(nil)

// StaticProvider serves a single pre-issued ID token, e.g. one pasted into
// the CLI. It cannot refresh: once the token expires every Token call fails.
type StaticProvider struct {
	lock      sync.RWMutex
	rawToken  string
	claims    *Claims
	listeners Listeners
}

// NewStaticProvider derives the identity from rawToken's claims.
func NewStaticProvider(rawToken string) (*StaticProvider, error) {
	claims, err := ParseClaims(rawToken)
	if err != nil {
		return nil, err
	}
	return &StaticProvider{rawToken: rawToken, claims: claims}, nil
}

func (p *StaticProvider) CurrentUser() (*Identity, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.claims == nil {
		return nil, false
	}
	return p.claims.Identity(), true
}

func (p *StaticProvider) Token(ctx context.Context, id *Identity) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", authErr(id, err)
	}

	p.lock.RLock()
	defer p.lock.RUnlock()

	if p.claims == nil {
		return "", authErr(id, rqerrors.ErrNotSignedIn)
	}
	if id != nil && id.UID != p.claims.Subject {
		return "", authErr(id, rqerrors.ErrInvalidIdentity)
	}
	if p.claims.Expired(NowTimeFunc()) {
		return "", authErr(id, rqerrors.ErrTokenExpired)
	}
	return p.rawToken, nil
}

// OnAuthStateChanged calls fn once with the current state, then on sign-out.
func (p *StaticProvider) OnAuthStateChanged(fn func(*Identity)) func() {
	unsubscribe := p.listeners.Add(fn)
	current, _ := p.CurrentUser()
	fn(current)
	return unsubscribe
}

func (p *StaticProvider) SignOut(context.Context) error {
	p.lock.Lock()
	p.rawToken = ""
	p.claims = nil
	p.lock.Unlock()

	p.listeners.Notify(nil)
	return nil
}
