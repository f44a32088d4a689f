package api_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/api/backendfake"
	"github.com/jrsteele09/rockquest/dispatcher"
	"github.com/jrsteele09/rockquest/internal/utils"
	"github.com/jrsteele09/rockquest/session/sessionfake"
	"github.com/rs/zerolog"
)

const (
	playerUID    = "player-1"
	geologistUID = "geo-1"
)

type testEnv struct {
	backend *backendfake.Backend
	url     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := backendfake.New()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return &testEnv{backend: backend, url: srv.URL}
}

// clientFor returns a client signed in as uid.
func (e *testEnv) clientFor(uid string) *api.Client {
	provider := sessionfake.NewSignedIn(uid)
	jsonD := dispatcher.New(dispatcher.Config{BaseURL: e.url, JSONMode: true, Timeout: 5 * time.Second}, provider, zerolog.Nop())
	formD := dispatcher.New(dispatcher.Config{BaseURL: e.url, JSONMode: false, Timeout: 10 * time.Second}, provider, zerolog.Nop())
	return api.New(jsonD, formD)
}

// seedUsers gives playerUID and geologistUID completed profiles.
func (e *testEnv) seedUsers() {
	e.backend.SeedProfile(playerUID, api.Profile{Username: "pebble", Type: "player", AvatarID: utils.Ptr(2)})
	e.backend.SeedProfile(geologistUID, api.Profile{Username: "prof-rock", Type: "geologist"})
}
