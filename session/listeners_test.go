package session_test

import (
	"sync"
	"testing"

	"github.com/jrsteele09/rockquest/session"
	"github.com/stretchr/testify/require"
)

func TestListeners(t *testing.T) {
	var l session.Listeners
	var a, b int

	unsubA := l.Add(func(*session.Identity) { a++ })
	l.Add(func(*session.Identity) { b++ })
	require.Equal(t, 2, l.Len())

	l.Notify(&session.Identity{UID: testUID})
	unsubA()
	unsubA()
	l.Notify(nil)

	require.Equal(t, 1, a)
	require.Equal(t, 2, b)
	require.Equal(t, 1, l.Len())
}

func TestListeners_UnsubscribeDuringNotify(t *testing.T) {
	var l session.Listeners
	calls := 0
	var unsubscribe func()
	unsubscribe = l.Add(func(*session.Identity) {
		calls++
		unsubscribe()
	})

	l.Notify(nil)
	l.Notify(nil)
	require.Equal(t, 1, calls)
	require.Zero(t, l.Len())
}

func TestListeners_Concurrent(t *testing.T) {
	var l session.Listeners
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsubscribe := l.Add(func(*session.Identity) {})
			l.Notify(nil)
			unsubscribe()
		}()
	}
	wg.Wait()
	require.Zero(t, l.Len())
}
