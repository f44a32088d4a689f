package api

import (
	"context"
	"fmt"
	"strings"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Role selects which screens and endpoint groups apply to a user.
type Role int

const (
	RoleUnknown Role = iota
	RolePlayer
	RoleGeologist
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleGeologist:
		return "geologist"
	default:
		return "unknown"
	}
}

// ParseRole parses a profile type, ignoring case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return RolePlayer, nil
	case "geologist":
		return RoleGeologist, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: unknown role %q", rqerrors.ErrInvalidRequest, s)
	}
}

// Capabilities are the endpoint groups a role's UI exposes. They gate what
// is shown; the backend enforces access.
type Capabilities struct {
	Posts        bool // Browse, add, edit, delete and report posts
	Scan         bool // Scan rocks and view scan stats
	Collection   bool // Manage the rock collection
	Quests       bool // Daily quests and achievements
	ManageFacts  bool // Add, edit and delete facts
	ReviewRocks  bool // Verify posts pending review
	ModerateFeed bool // Decide reports
}

// RoleCapabilities returns the capabilities of role.
func RoleCapabilities(role Role) Capabilities {
	switch role {
	case RolePlayer:
		return Capabilities{Posts: true, Scan: true, Collection: true, Quests: true}
	case RoleGeologist:
		return Capabilities{Posts: true, ManageFacts: true, ReviewRocks: true, ModerateFeed: true}
	default:
		return Capabilities{}
	}
}

// Home is the data behind a role's home screen.
type Home struct {
	Role           Role
	Profile        *Profile
	Posts          []Post
	Facts          []Fact
	Announcements  []Announcement // players only
	PendingReviews []Post         // geologists only
}

// LoadHome fetches the home screen data for role concurrently. The first
// failure cancels the remaining calls and is returned unchanged.
func (c *Client) LoadHome(ctx context.Context, role Role) (*Home, error) {
	if role != RolePlayer && role != RoleGeologist {
		return nil, fmt.Errorf("%w: cannot load home for role %s", rqerrors.ErrInvalidRequest, role)
	}

	home := &Home{Role: role}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		home.Profile, err = c.GetProfile(gctx)
		return err
	})
	g.Go(func() (err error) {
		home.Posts, err = c.GetAllPosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		home.Facts, err = c.GetFacts(gctx)
		return err
	})

	switch role {
	case RolePlayer:
		g.Go(func() (err error) {
			home.Announcements, err = c.GetAnnouncements(gctx)
			return err
		})
	case RoleGeologist:
		g.Go(func() (err error) {
			home.PendingReviews, err = c.ReviewPendingRocks(gctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}
