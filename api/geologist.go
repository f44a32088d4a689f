package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

func (c *Client) AddFact(ctx context.Context, req AddFactRequest) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPost, RouteGeologistAddFact, req)
}

func (c *Client) EditFact(ctx context.Context, factID string, update FactUpdate) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPut, withID(RouteGeologistEditFact, factID), update)
}

func (c *Client) DeleteFact(ctx context.Context, factID string) (Message, error) {
	return send[Message](ctx, c.json, http.MethodDelete, withID(RouteGeologistDeleteFact, factID), nil)
}

// ReviewPendingRocks returns posts waiting for a geologist's verification.
func (c *Client) ReviewPendingRocks(ctx context.Context) ([]Post, error) {
	return get[[]Post](ctx, c.json, RouteGeologistReview, nil)
}

// VerifyRock approves or rejects a post pending review.
func (c *Client) VerifyRock(ctx context.Context, postID string, v PostVerification) (Message, error) {
	if !v.Action.Valid() {
		return Message{}, fmt.Errorf("%w: unknown action %q", rqerrors.ErrInvalidRequest, v.Action)
	}
	return send[Message](ctx, c.json, http.MethodPost, withID(RouteGeologistVerifyRock, postID), v)
}

// GetReportsByStatus lists reports in status, pending when empty.
func (c *Client) GetReportsByStatus(ctx context.Context, status ReportStatus) ([]Report, error) {
	return get[[]Report](ctx, c.json, RouteGeologistReports, statusQuery(status))
}

// ListReportedPosts lists reports in status with their posts attached,
// pending when empty.
func (c *Client) ListReportedPosts(ctx context.Context, status ReportStatus) ([]ReportItem, error) {
	return get[[]ReportItem](ctx, c.json, RouteGeologistReported, statusQuery(status))
}

// DecideReport settles a report.
func (c *Client) DecideReport(ctx context.Context, reportID string, action Decision) (Message, error) {
	if !action.Valid() {
		return Message{}, fmt.Errorf("%w: unknown action %q", rqerrors.ErrInvalidRequest, action)
	}
	body := struct {
		Action Decision `json:"action"`
	}{action}
	return send[Message](ctx, c.json, http.MethodPost, withID(RouteGeologistReportDecision, reportID), body)
}

func statusQuery(status ReportStatus) url.Values {
	if status == "" {
		status = ReportPending
	}
	return url.Values{"status": {string(status)}}
}
