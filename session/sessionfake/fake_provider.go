package sessionfake

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/session"
)

var _ session.Provider = (*FakeProvider)(nil)

// FakeProvider is an in-memory session provider. Tokens are
// "token-<uid>-<n>" where n counts Token calls, unless a fixed token is set.
type FakeProvider struct {
	lock       sync.RWMutex
	identity   *session.Identity
	fixedToken string
	tokenErr   error

	tokenCalls atomic.Int64
	listeners  session.Listeners
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

// NewSignedIn returns a provider with uid already signed in.
func NewSignedIn(uid string) *FakeProvider {
	p := NewFakeProvider()
	p.SignIn(&session.Identity{UID: uid, Email: uid + "@example.com"})
	return p
}

// SignIn replaces the current identity and notifies listeners.
func (p *FakeProvider) SignIn(id *session.Identity) {
	p.lock.Lock()
	p.identity = id
	p.lock.Unlock()
	p.listeners.Notify(id)
}

// SetToken makes every Token call return token.
func (p *FakeProvider) SetToken(token string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.fixedToken = token
}

// FailTokens makes every Token call fail with err until cleared with nil.
func (p *FakeProvider) FailTokens(err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.tokenErr = err
}

// TokenCalls returns how many times Token was called.
func (p *FakeProvider) TokenCalls() int {
	return int(p.tokenCalls.Load())
}

func (p *FakeProvider) CurrentUser() (*session.Identity, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.identity == nil {
		return nil, false
	}
	id := *p.identity
	return &id, true
}

func (p *FakeProvider) Token(ctx context.Context, id *session.Identity) (string, error) {
	n := p.tokenCalls.Add(1)

	p.lock.RLock()
	defer p.lock.RUnlock()

	uid := ""
	if id != nil {
		uid = id.UID
	}
	if err := ctx.Err(); err != nil {
		return "", &session.AuthError{UID: uid, Err: err}
	}
	if p.tokenErr != nil {
		return "", &session.AuthError{UID: uid, Err: p.tokenErr}
	}
	if p.identity == nil {
		return "", &session.AuthError{UID: uid, Err: rqerrors.ErrNotSignedIn}
	}
	if p.fixedToken != "" {
		return p.fixedToken, nil
	}
	return fmt.Sprintf("token-%s-%d", p.identity.UID, n), nil
}

func (p *FakeProvider) OnAuthStateChanged(fn func(*session.Identity)) func() {
	unsubscribe := p.listeners.Add(fn)
	current, _ := p.CurrentUser()
	fn(current)
	return unsubscribe
}

func (p *FakeProvider) SignOut(context.Context) error {
	p.lock.Lock()
	p.identity = nil
	p.lock.Unlock()
	p.listeners.Notify(nil)
	return nil
}
