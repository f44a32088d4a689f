package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/rockquest/dispatcher"
)

// GetProfile returns the caller's profile. A caller without a profile gets
// a 404 *dispatcher.HTTPError (see IsNotFound).
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	return get[*Profile](ctx, c.json, RouteProfile, nil)
}

// UpdateProfile changes the non-nil fields of update.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPut, RouteUpdateProfile, update)
}

// CompleteProfile creates the caller's profile. A taken username is a 400
// *dispatcher.HTTPError (see IsUsernameTaken).
func (c *Client) CompleteProfile(ctx context.Context, req CompleteProfileRequest) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPost, RouteCompleteProfile, req)
}

// DeleteAccount deletes the caller's profile and identity.
func (c *Client) DeleteAccount(ctx context.Context) (Message, error) {
	return send[Message](ctx, c.json, http.MethodDelete, RouteDeleteAccount, nil)
}

func (c *Client) GetMyPosts(ctx context.Context) ([]Post, error) {
	return get[[]Post](ctx, c.json, RouteMyPosts, nil)
}

func (c *Client) GetAllPosts(ctx context.Context) ([]Post, error) {
	return get[[]Post](ctx, c.json, RouteAllPosts, nil)
}

func (c *Client) AddPost(ctx context.Context, fields PostFields) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPost, RouteAddPost, fields)
}

// EditPost replaces the fields of post id. Ownership is checked by the
// backend (403/404).
func (c *Client) EditPost(ctx context.Context, id string, fields PostFields) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPut, withID(RouteEditPost, id), fields)
}

func (c *Client) DeletePost(ctx context.Context, id string) (Message, error) {
	return send[Message](ctx, c.json, http.MethodDelete, withID(RouteDeletePost, id), nil)
}

// ReportPost reports a post for moderation. Reporting the same post twice
// succeeds; the server words the second message differently (see
// Message.AlreadyReported).
func (c *Client) ReportPost(ctx context.Context, postID, reason string) (Message, error) {
	query := url.Values{"post_id": {postID}, "reason": {reason}}
	return call[Message](ctx, c.json, &dispatcher.Request{
		Method: http.MethodPost,
		Path:   RouteReportPost,
		Query:  query,
		Body:   struct{}{},
	})
}

func (c *Client) GetFacts(ctx context.Context) ([]Fact, error) {
	return get[[]Fact](ctx, c.json, RouteFacts, nil)
}

func (c *Client) GetAnnouncements(ctx context.Context) ([]Announcement, error) {
	return get[[]Announcement](ctx, c.json, RouteAnnouncements, nil)
}

// GetBadges returns every badge definition.
func (c *Client) GetBadges(ctx context.Context) ([]Badge, error) {
	resp, err := get[struct {
		Badges []Badge `json:"badges"`
	}](ctx, c.json, RouteBadges, nil)
	return resp.Badges, err
}
