package dispatcher_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/rockquest/dispatcher"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/session"
	"github.com/jrsteele09/rockquest/session/sessionfake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// captured is what the test server saw of the last request.
type captured struct {
	method      string
	path        string
	rawQuery    string
	header      http.Header
	body        []byte
	requestSeen atomic.Int32
}

func newServer(t *testing.T, status int, respBody string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.requestSeen.Add(1)
		c.method = r.Method
		c.path = r.URL.Path
		c.rawQuery = r.URL.RawQuery
		c.header = r.Header.Clone()
		c.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newDispatcher(srv *httptest.Server, provider session.Provider, jsonMode bool, logs *bytes.Buffer) *dispatcher.Dispatcher {
	logger := zerolog.Nop()
	if logs != nil {
		logger = zerolog.New(logs).Level(zerolog.DebugLevel)
	}
	return dispatcher.New(dispatcher.Config{BaseURL: srv.URL, JSONMode: jsonMode, Timeout: 5 * time.Second}, provider, logger)
}

func TestDo_AddsBearerForSignedInUser(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{"ok":true}`)
	provider := sessionfake.NewSignedIn("u1")
	provider.SetToken("T")
	d := newDispatcher(srv, provider, true, nil)

	resp, err := d.Get(context.Background(), "/profile", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.Status)
	require.JSONEq(t, `{"ok":true}`, string(resp.Body))

	require.Equal(t, []string{"Bearer T"}, seen.header.Values("Authorization"))
	require.Equal(t, "application/json", seen.header.Get("Accept"))
	require.Equal(t, "application/json", seen.header.Get("Content-Type"))
	require.NotEmpty(t, seen.header.Get("X-Request-Id"))
	require.Equal(t, "/profile", seen.path)
}

func TestDo_FreshTokenPerRequest(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	provider := sessionfake.NewSignedIn("u1")
	d := newDispatcher(srv, provider, true, nil)
	ctx := context.Background()

	_, err := d.Get(ctx, "/facts", nil)
	require.NoError(t, err)
	first := seen.header.Get("Authorization")

	_, err = d.Get(ctx, "/facts", nil)
	require.NoError(t, err)
	require.NotEqual(t, first, seen.header.Get("Authorization"))
	require.Equal(t, 2, provider.TokenCalls())
}

func TestDo_AnonymousRequestHasNoAuthorization(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `[]`)

	for name, provider := range map[string]session.Provider{
		"nil provider":    nil,
		"signed out fake": sessionfake.NewFakeProvider(),
	} {
		t.Run(name, func(t *testing.T) {
			d := newDispatcher(srv, provider, true, nil)
			_, err := d.Get(context.Background(), "/announcements", nil)
			require.NoError(t, err)
			require.Empty(t, seen.header.Values("Authorization"))
			require.Equal(t, "application/json", seen.header.Get("Accept"))
		})
	}
}

func TestDo_TokenFailureStopsRequest(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	provider := sessionfake.NewSignedIn("u1")
	provider.FailTokens(rqerrors.ErrTokenExpired)
	d := newDispatcher(srv, provider, true, nil)

	_, err := d.Get(context.Background(), "/profile", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, rqerrors.ErrAuth)
	require.ErrorIs(t, err, rqerrors.ErrTokenExpired)

	var authErr *session.AuthError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, "u1", authErr.UID)
	require.Zero(t, seen.requestSeen.Load())
}

func TestDo_JSONBody(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{"message":"ok"}`)
	d := newDispatcher(srv, sessionfake.NewSignedIn("u1"), true, nil)

	resp, err := d.Put(context.Background(), "/update-profile", map[string]any{"username": "ada"})
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, seen.method)
	require.JSONEq(t, `{"username":"ada"}`, string(seen.body))
	require.Equal(t, "application/json", seen.header.Get("Content-Type"))

	var msg struct {
		Message string `json:"message"`
	}
	require.NoError(t, resp.Decode(&msg))
	require.Equal(t, "ok", msg.Message)
}

func TestDo_QueryParameters(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	d := newDispatcher(srv, nil, true, nil)

	_, err := d.Do(context.Background(), &dispatcher.Request{
		Method: http.MethodPost,
		Path:   "/report-post",
		Query:  map[string][]string{"post_id": {"p 1"}, "reason": {"spam & abuse"}},
	})
	require.NoError(t, err)
	require.Equal(t, "post_id=p+1&reason=spam+%26+abuse", seen.rawQuery)
	require.Empty(t, seen.body)
}

func TestDo_MultipartKeepsBoundary(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{"predictedType":"Granite"}`)

	for _, jsonMode := range []bool{true, false} {
		d := newDispatcher(srv, sessionfake.NewSignedIn("u1"), jsonMode, nil)
		_, err := d.PostForm(context.Background(), "/player/scan-rock", &dispatcher.Form{
			Files: []dispatcher.File{{Field: "file", Filename: "scan.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg-bytes")}},
		})
		require.NoError(t, err)

		mediaType, params, err := mime.ParseMediaType(seen.header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(bytes.NewReader(seen.body), params["boundary"])
		part, err := mr.NextPart()
		require.NoError(t, err)
		require.Equal(t, "file", part.FormName())
		require.Equal(t, "scan.jpg", part.FileName())
		require.Equal(t, "image/jpeg", part.Header.Get("Content-Type"))
		content, err := io.ReadAll(part)
		require.NoError(t, err)
		require.Equal(t, "jpeg-bytes", string(content))
	}
}

func TestDo_FormModeDoesNotForceJSON(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	d := newDispatcher(srv, nil, false, nil)

	_, err := d.Get(context.Background(), "/facts", nil)
	require.NoError(t, err)
	require.Empty(t, seen.header.Get("Content-Type"))
	require.Equal(t, "application/json", seen.header.Get("Accept"))
}

func TestDo_HTTPError(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, `{"detail":"Profile not found"}`)
	var logs bytes.Buffer
	d := newDispatcher(srv, sessionfake.NewSignedIn("u1"), true, &logs)

	_, err := d.Get(context.Background(), "/profile", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, rqerrors.ErrHTTP)
	require.NotErrorIs(t, err, rqerrors.ErrNetwork)

	var httpErr *dispatcher.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusNotFound, httpErr.Status)
	require.Equal(t, "/profile", httpErr.Path)
	require.Equal(t, "Profile not found", httpErr.Detail())
	require.Equal(t, http.StatusNotFound, dispatcher.StatusCode(err))

	require.Contains(t, logs.String(), `"level":"warn"`)
	require.Contains(t, logs.String(), `"status":404`)
}

func TestDo_LogsRequestAndResponse(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{}`)
	var logs bytes.Buffer
	d := newDispatcher(srv, nil, true, &logs)

	_, err := d.Get(context.Background(), "/badges", nil)
	require.NoError(t, err)

	out := logs.String()
	require.Contains(t, out, "→ GET "+srv.URL+"/badges")
	require.Contains(t, out, "← 200 "+srv.URL+"/badges")
	require.Contains(t, out, `"request_id"`)
}

func TestDo_NetworkError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{}`)
	d := newDispatcher(srv, nil, true, nil)
	srv.Close()

	_, err := d.Get(context.Background(), "/facts", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, rqerrors.ErrNetwork)
	require.NotErrorIs(t, err, rqerrors.ErrTimeout)

	var netErr *dispatcher.NetworkError
	require.True(t, errors.As(err, &netErr))
	require.Equal(t, 0, dispatcher.StatusCode(err))
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	d := dispatcher.New(dispatcher.Config{BaseURL: srv.URL, JSONMode: true, Timeout: 50 * time.Millisecond}, nil, zerolog.Nop())

	_, err := d.Get(context.Background(), "/player/rocks", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, rqerrors.ErrTimeout)
	require.ErrorIs(t, err, rqerrors.ErrNetwork)

	var timeoutErr *dispatcher.TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	require.Equal(t, 50*time.Millisecond, timeoutErr.Timeout)
}

func TestDo_InvalidRequest(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	d := newDispatcher(srv, nil, true, nil)

	_, err := d.Get(context.Background(), "profile", nil)
	require.ErrorIs(t, err, rqerrors.ErrInvalidRequest)

	_, err = d.Post(context.Background(), "/add-post", map[string]any{"bad": make(chan int)})
	require.ErrorIs(t, err, rqerrors.ErrInvalidBody)
	require.Zero(t, seen.requestSeen.Load())
}

func TestWithInterceptors(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	var order []string
	mark := func(name string) dispatcher.Interceptor {
		return func(next dispatcher.Handler) dispatcher.Handler {
			return func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				r.Header.Set("X-"+name, "1")
				return next(r)
			}
		}
	}

	d := dispatcher.New(dispatcher.Config{BaseURL: srv.URL, JSONMode: true}, nil, zerolog.Nop(),
		dispatcher.WithInterceptors(mark("A"), mark("B")))
	_, err := d.Get(context.Background(), "/facts", nil)
	require.NoError(t, err)

	require.Equal(t, []string{"A", "B"}, order)
	require.Equal(t, "1", seen.header.Get("X-A"))
	require.Equal(t, "1", seen.header.Get("X-B"))
}
