// Package dispatcher sends authenticated requests to the RockQuest backend.
// Every request passes through the same interceptor chain (auth, content
// type, accept, request id, logging) and every failure comes back as one of
// *session.AuthError, *HTTPError, *NetworkError or *TimeoutError.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/session"
	"github.com/rs/zerolog"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 10 << 20

// Config is the immutable configuration of a Dispatcher.
type Config struct {
	BaseURL  string        // Backend base URL, without trailing slash
	JSONMode bool          // Force Content-Type: application/json on non-multipart bodies
	Timeout  time.Duration // Per-request timeout, 0 for none
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the default HTTP client. Its Timeout is ignored;
// the dispatcher applies Config.Timeout through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = c
	}
}

// WithInterceptors appends interceptors after the standard chain.
func WithInterceptors(interceptors ...Interceptor) Option {
	return func(d *Dispatcher) {
		d.extra = append(d.extra, interceptors...)
	}
}

// Dispatcher is safe for concurrent use. It holds no per-request state.
type Dispatcher struct {
	cfg     Config
	client  *http.Client
	logger  zerolog.Logger
	extra   []Interceptor
	handler Handler
}

// New builds a dispatcher. provider may be nil for anonymous use.
func New(cfg Config, provider session.Provider, logger zerolog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	interceptors := []Interceptor{
		AuthInterceptor(provider),
		ContentTypeInterceptor(cfg.JSONMode),
		AcceptInterceptor(),
		RequestIDInterceptor(),
		LoggingInterceptor(d.logger),
	}
	interceptors = append(interceptors, d.extra...)
	d.handler = Chain(d.client.Do, interceptors...)
	return d
}

// BaseURL returns the configured base URL.
func (d *Dispatcher) BaseURL() string {
	return d.cfg.BaseURL
}

// Timeout returns the configured per-request timeout.
func (d *Dispatcher) Timeout() time.Duration {
	return d.cfg.Timeout
}

// Do sends req and returns the response of a 2xx answer.
func (d *Dispatcher) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.method()
	target, err := req.url(d.cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	body, contentType, err := req.body()
	if err != nil {
		return nil, err
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rqerrors.ErrInvalidRequest, err)
	}
	if contentType != "" {
		httpReq.Header.Set(HeaderContentType, contentType)
	}

	resp, err := d.handler(httpReq)
	if err != nil {
		return nil, d.transportError(ctx, method, req.Path, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, d.transportError(ctx, method, req.Path, target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.Warn().
			Str("method", method).
			Str("url", target).
			Int("status", resp.StatusCode).
			Bytes("body", raw).
			Msgf("← %d %s", resp.StatusCode, target)
		return nil, &HTTPError{Status: resp.StatusCode, Body: raw, Method: method, Path: req.Path}
	}

	d.logger.Info().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Msgf("← %d %s", resp.StatusCode, target)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

func (d *Dispatcher) transportError(ctx context.Context, method, path, target string, err error) error {
	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		d.logger.Warn().Err(err).Str("method", method).Str("url", target).Msg("no bearer token")
		return err
	}

	d.logger.Error().Err(err).Str("method", method).Str("url", target).Msg("✖ network error")
	if isTimeout(ctx, err) {
		return &TimeoutError{Method: method, Path: path, Timeout: d.cfg.Timeout, Err: err}
	}
	return &NetworkError{Method: method, Path: path, Err: err}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Get sends a GET request.
func (d *Dispatcher) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (d *Dispatcher) Post(ctx context.Context, path string, body any) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (d *Dispatcher) Put(ctx context.Context, path string, body any) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (d *Dispatcher) Delete(ctx context.Context, path string) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// PostForm sends a multipart POST request.
func (d *Dispatcher) PostForm(ctx context.Context, path string, form *Form) (*Response, error) {
	return d.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form})
}
