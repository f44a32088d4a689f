// Package api exposes one typed method per RockQuest backend operation.
// Methods return dispatcher and session errors unchanged; see IsNotFound,
// IsUsernameTaken and LowConfidence for the cases callers handle specially.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/rockquest/dispatcher"
)

// Client calls the backend through two dispatchers: one for JSON traffic
// and one for multipart uploads.
type Client struct {
	json *dispatcher.Dispatcher
	form *dispatcher.Dispatcher
}

// New returns a client. form may be nil, in which case uploads go through
// the JSON dispatcher.
func New(json, form *dispatcher.Dispatcher) *Client {
	if form == nil {
		form = json
	}
	return &Client{json: json, form: form}
}

// withID fills the {id} segment of route with the escaped id.
func withID(route, id string) string {
	return strings.Replace(route, "{id}", url.PathEscape(id), 1)
}

func call[T any](ctx context.Context, d *dispatcher.Dispatcher, req *dispatcher.Request) (T, error) {
	var out T
	resp, err := d.Do(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func get[T any](ctx context.Context, d *dispatcher.Dispatcher, path string, query url.Values) (T, error) {
	return call[T](ctx, d, &dispatcher.Request{Method: http.MethodGet, Path: path, Query: query})
}

func send[T any](ctx context.Context, d *dispatcher.Dispatcher, method, path string, body any) (T, error) {
	return call[T](ctx, d, &dispatcher.Request{Method: method, Path: path, Body: body})
}
