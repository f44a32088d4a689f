package dispatcher

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/rockquest/session"
	"github.com/rs/zerolog"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-Id"

	ContentTypeJSON = "application/json"
)

// Handler sends a prepared request.
type Handler func(*http.Request) (*http.Response, error)

// Interceptor wraps a Handler. It may edit the request before calling next,
// or return an error without calling it.
type Interceptor func(next Handler) Handler

// Chain wraps h so that interceptors run in the order given.
func Chain(h Handler, interceptors ...Interceptor) Handler {
	chained := h
	// Apply in reverse so the first interceptor runs first
	for i := len(interceptors) - 1; i >= 0; i-- {
		chained = interceptors[i](chained)
	}
	return chained
}

// AuthInterceptor adds the signed-in user's bearer token. Anonymous
// requests are sent without an Authorization header. A token failure stops
// the request with the provider's *session.AuthError.
func AuthInterceptor(provider session.Provider) Interceptor {
	return func(next Handler) Handler {
		return func(r *http.Request) (*http.Response, error) {
			if provider == nil {
				return next(r)
			}
			id, ok := provider.CurrentUser()
			if !ok {
				return next(r)
			}
			token, err := provider.Token(r.Context(), id)
			if err != nil {
				return nil, err
			}
			r.Header.Set(HeaderAuthorization, "Bearer "+token)
			return next(r)
		}
	}
}

// ContentTypeInterceptor sets Content-Type: application/json on non-multipart
// requests when jsonMode is on. Multipart requests keep their boundary
// content type.
func ContentTypeInterceptor(jsonMode bool) Interceptor {
	return func(next Handler) Handler {
		return func(r *http.Request) (*http.Response, error) {
			if strings.HasPrefix(r.Header.Get(HeaderContentType), "multipart/") {
				return next(r)
			}
			if jsonMode {
				r.Header.Set(HeaderContentType, ContentTypeJSON)
			}
			return next(r)
		}
	}
}

// AcceptInterceptor asks for JSON responses.
func AcceptInterceptor() Interceptor {
	return func(next Handler) Handler {
		return func(r *http.Request) (*http.Response, error) {
			r.Header.Set(HeaderAccept, ContentTypeJSON)
			return next(r)
		}
	}
}

// RequestIDInterceptor tags the request with an X-Request-Id unless the
// caller already set one.
func RequestIDInterceptor() Interceptor {
	return func(next Handler) Handler {
		return func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(HeaderRequestID) == "" {
				r.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return next(r)
		}
	}
}

// LoggingInterceptor logs every request at Debug before it is sent.
func LoggingInterceptor(logger zerolog.Logger) Interceptor {
	return func(next Handler) Handler {
		return func(r *http.Request) (*http.Response, error) {
			logger.Debug().
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("request_id", r.Header.Get(HeaderRequestID)).
				Msgf("→ %s %s", r.Method, r.URL.String())
			return next(r)
		}
	}
}
