package sessionfake_test

import (
	"context"
	"errors"
	"testing"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/session"
	"github.com/jrsteele09/rockquest/session/sessionfake"
	"github.com/stretchr/testify/require"
)

func TestFakeProvider(t *testing.T) {
	ctx := context.Background()
	p := sessionfake.NewFakeProvider()

	_, err := p.Token(ctx, nil)
	require.ErrorIs(t, err, rqerrors.ErrNotSignedIn)

	var seen []*session.Identity
	p.OnAuthStateChanged(func(id *session.Identity) { seen = append(seen, id) })

	p.SignIn(&session.Identity{UID: "u1"})
	tok, err := p.Token(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "token-u1-2", tok)
	require.Equal(t, 2, p.TokenCalls())

	p.SetToken("fixed")
	tok, err = p.Token(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "fixed", tok)

	boom := errors.New("boom")
	p.FailTokens(boom)
	_, err = p.Token(ctx, nil)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, rqerrors.ErrAuth)

	require.NoError(t, p.SignOut(ctx))
	require.Len(t, seen, 3)
	require.Nil(t, seen[0])
	require.Equal(t, "u1", seen[1].UID)
	require.Nil(t, seen[2])
}
