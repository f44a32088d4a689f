package cli

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/api/backendfake"
	"github.com/jrsteele09/rockquest/dispatcher"
	"github.com/jrsteele09/rockquest/internal/config"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/session"
	"github.com/jrsteele09/rockquest/session/sessionfake"
	"github.com/jrsteele09/rockquest/storage"
	"github.com/jrsteele09/rockquest/storage/minio"
	"github.com/jrsteele09/rockquest/storage/storagefake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Credential environment variables, first match wins.
const (
	envIDToken      = "ROCKQUEST_ID_TOKEN"
	envRefreshToken = "ROCKQUEST_REFRESH_TOKEN"
	envEmail        = "ROCKQUEST_EMAIL"
	envPassword     = "ROCKQUEST_PASSWORD"
)

const (
	fakeUID        = "demo-user"
	fakeStorageURL = "https://storage.fake.rockquest.local"
)

// app holds what a command needs to talk to the backend. It is built once
// per invocation by setup.
type app struct {
	opts        *options
	out, errOut io.Writer

	cfg      *config.Settings
	logger   zerolog.Logger
	provider session.Provider
	client   *api.Client
	uploader storage.Uploader

	fakeServer  *httptest.Server
	unsubscribe func()
	closeOnce   sync.Once
}

func (a *app) setupLogging(cfg config.EnvConfig) error {
	level := zerolog.InfoLevel
	if cfg != nil && cfg.GetLogLevel() != "" {
		parsed, err := zerolog.ParseLevel(cfg.GetLogLevel())
		if err != nil {
			return fmt.Errorf("%w: log level %q", rqerrors.ErrInvalidRequest, cfg.GetLogLevel())
		}
		level = parsed
	}
	if a.opts.verbose {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{Out: a.errOut, NoColor: a.opts.noColor, TimeFormat: time.Kitchen}
	a.logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	log.Logger = a.logger
	return nil
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := a.setupLogging(cfg); err != nil {
		return err
	}

	if a.opts.fake {
		return a.setupFake()
	}

	provider, err := signIn(ctx, cfg)
	if err != nil {
		return err
	}
	a.connect(cfg.GetBaseURL(), provider)
	return nil
}

// signIn picks a session provider from the credential environment
// variables. No credentials yields a nil provider: requests go out
// without an Authorization header.
func signIn(ctx context.Context, cfg session.IdentityConfig) (session.Provider, error) {
	if raw := config.GetEnv(envIDToken, ""); raw != "" {
		p, err := session.NewStaticProvider(raw)
		if err != nil {
			return nil, rqerrors.Wrapf(err, "%s", envIDToken)
		}
		return p, nil
	}

	refresh := config.GetEnv(envRefreshToken, "")
	email, password := config.GetEnv(envEmail, ""), config.GetEnv(envPassword, "")
	if refresh == "" && (email == "" || password == "") {
		log.Debug().Msg("no credentials configured, requests are anonymous")
		return nil, nil
	}

	p, err := session.NewOIDCProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if refresh != "" {
		_, err = p.Restore(ctx, refresh)
	} else {
		_, err = p.SignInWithPassword(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (a *app) connect(baseURL string, provider session.Provider) {
	a.provider = provider
	if provider != nil {
		a.unsubscribe = provider.OnAuthStateChanged(func(id *session.Identity) {
			if id == nil {
				a.logger.Debug().Msg("signed out")
				return
			}
			a.logger.Debug().Str("uid", id.UID).Msg("signed in")
		})
	}

	jsonD := dispatcher.New(dispatcher.Config{
		BaseURL:  baseURL,
		JSONMode: true,
		Timeout:  a.cfg.GetJSONTimeout(),
	}, provider, a.logger)
	formD := dispatcher.New(dispatcher.Config{
		BaseURL:  baseURL,
		JSONMode: false,
		Timeout:  a.cfg.GetUploadTimeout(),
	}, provider, a.logger)
	a.client = api.New(jsonD, formD)
}

func (a *app) setupFake() error {
	role, err := api.ParseRole(a.opts.fakeRole)
	if err != nil {
		return err
	}
	backend := backendfake.New()
	seedFake(backend, role)

	a.fakeServer = httptest.NewServer(backend)
	a.uploader = storagefake.NewMemoryUploader(fakeStorageURL)
	a.logger.Debug().Str("url", a.fakeServer.URL).Str("role", role.String()).Msg("using in-memory backend")
	a.connect(a.fakeServer.URL, sessionfake.NewSignedIn(fakeUID))
	return nil
}

// seedFake gives the in-memory backend enough content for every command
// to return something.
func seedFake(b *backendfake.Backend, role api.Role) {
	b.SeedProfile(fakeUID, api.Profile{
		Username: "demo",
		Type:     role.String(),
		Email:    fakeUID + "@example.com",
	}.WithDefaults())
	b.SeedProfile("field-tester", api.Profile{Username: "field-tester", Type: api.RolePlayer.String()})

	verified := true
	b.SeedPost(api.Post{
		ID:               "post-granite",
		RockName:         string(api.Granite),
		ShortDescription: "Pink granite on the coastal trail",
		UploadedBy:       "field-tester",
		Username:         "field-tester",
		Type:             api.PostTypePost,
		Verified:         &verified,
	})
	b.SeedPost(api.Post{
		ID:               "post-basalt",
		RockName:         string(api.Basalt),
		ShortDescription: "Columnar basalt, needs a second look",
		UploadedBy:       "field-tester",
		Username:         "field-tester",
		Type:             api.PostTypePost,
	})
	b.SeedFact(api.Fact{
		ID:          "fact-quartz",
		Title:       "Quartz is everywhere",
		Description: "Quartz is the second most abundant mineral in the crust.",
		CreatedBy:   "prof-rock",
	})
	b.SeedAnnouncement(api.Announcement{
		Title:       "Welcome to RockQuest",
		Description: "Scan your first rock to earn a badge.",
		Type:        api.PostTypeAnnouncement,
	})

	now := backendfake.NowTimeFunc().UTC()
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(time.DateOnly) }
	b.SeedQuests(
		api.QuestDay{Date: day(0), Title: "Scan three rocks"},
		api.QuestDay{Date: day(1), Title: "Find an igneous rock"},
		api.QuestDay{Date: day(2), Title: "Post a sedimentary rock"},
	)

	if info, ok := api.LookupRock(string(api.Sandstone)); ok {
		b.SeedRock(fakeUID, api.Rock{RockID: info.CatalogID, Name: string(info.Class), Type: string(info.Category)})
	}
}

// storage returns the uploader for post images, connecting to object
// storage on first use. It returns nil when no storage is configured.
func (a *app) storage(ctx context.Context) (storage.Uploader, error) {
	if a.uploader != nil || a.cfg == nil || a.cfg.GetStorageEndpoint() == "" {
		return a.uploader, nil
	}
	u, err := minio.New(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.uploader = u
	return u, nil
}

// uid returns the signed-in user's id, or "" when anonymous.
func (a *app) uid() string {
	if a.provider == nil {
		return ""
	}
	id, ok := a.provider.CurrentUser()
	if !ok {
		return ""
	}
	return id.UID
}

func (a *app) close() {
	a.closeOnce.Do(func() {
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		if a.fakeServer != nil {
			a.fakeServer.Close()
		}
	})
}
