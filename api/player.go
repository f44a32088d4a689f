package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultNearbyRadius is the search radius used by GetNearbyRocks when
// radius is not positive, in degrees.
const DefaultNearbyRadius = 0.01

func (c *Client) GetMyRocks(ctx context.Context) ([]Rock, error) {
	return get[[]Rock](ctx, c.json, RoutePlayerRocks, nil)
}

// AddRockToCollection adds catalog rock rockID (e.g. "R005") to the
// caller's collection. imageURL may be empty.
func (c *Client) AddRockToCollection(ctx context.Context, rockID, imageURL string) (Message, error) {
	return send[Message](ctx, c.json, http.MethodPost, RoutePlayerAddRock, AddRockRequest{RockID: rockID, ImageURL: imageURL})
}

func (c *Client) DeleteRockFromCollection(ctx context.Context, rockID string) (Message, error) {
	return send[Message](ctx, c.json, http.MethodDelete, withID(RoutePlayerDeleteRock, rockID), nil)
}

func (c *Client) GetDailyQuests(ctx context.Context) (DailyQuests, error) {
	return get[DailyQuests](ctx, c.json, RoutePlayerDailyQuests, nil)
}

func (c *Client) GetQuestsSummary(ctx context.Context) (QuestsSummary, error) {
	return get[QuestsSummary](ctx, c.json, RoutePlayerQuestsSummary, nil)
}

// GetNearbyRocks returns rocks found within radius degrees of lat/lng.
func (c *Client) GetNearbyRocks(ctx context.Context, lat, lng, radius float64) ([]Rock, error) {
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}
	query := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lng":    {strconv.FormatFloat(lng, 'f', -1, 64)},
		"radius": {strconv.FormatFloat(radius, 'f', -1, 64)},
	}
	return get[[]Rock](ctx, c.json, RoutePlayerGPSRocks, query)
}

// GetAchievements returns the caller's badges with their earned state.
func (c *Client) GetAchievements(ctx context.Context) ([]Achievement, error) {
	resp, err := get[struct {
		Badges []Achievement `json:"badges"`
	}](ctx, c.json, RoutePlayerAchievements, nil)
	return resp.Badges, err
}

// GetScanStats returns scan counts for dateKey ("2006-01-02"). An empty
// dateKey lets the backend pick today.
func (c *Client) GetScanStats(ctx context.Context, dateKey string) (ScanStats, error) {
	var query url.Values
	if dateKey != "" {
		query = url.Values{"date": {dateKey}}
	}
	return get[ScanStats](ctx, c.json, RoutePlayerScanStats, query)
}
