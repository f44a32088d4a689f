package api

import (
	"strings"

	"github.com/jrsteele09/rockquest/internal/utils"
)

// Presentation defaults applied by Profile.WithDefaults.
const (
	DefaultAvatarID    = 1
	DefaultDescription = "No description yet."
	DefaultDOB         = ""
)

// Profile is the signed-in user's profile. Optional fields are nil when the
// backend does not have them.
type Profile struct {
	Username     string    `json:"username"`
	Type         string    `json:"type,omitempty"` // "player" or "geologist"
	Email        string    `json:"email,omitempty"`
	EmailAddress string    `json:"emailAddress,omitempty"`
	Description  *string   `json:"description,omitempty"`
	DOB          *string   `json:"dob,omitempty"`
	AvatarID     *int      `json:"avatarId,omitempty"`
	IsActive     *bool     `json:"isActive,omitempty"`
	ScanCount    int       `json:"scanCount,omitempty"`
	CreatedAt    Timestamp `json:"createdAt"`
}

// Role returns the profile's role, RoleUnknown when the type is missing or
// not recognised.
func (p *Profile) Role() Role {
	role, _ := ParseRole(p.Type)
	return role
}

// ContactEmail returns whichever email field the backend filled.
func (p *Profile) ContactEmail() string {
	if p.Email != "" {
		return p.Email
	}
	return p.EmailAddress
}

// WithDefaults returns a copy of p with every optional display field set,
// substituting the presentation defaults for missing ones.
func (p Profile) WithDefaults() Profile {
	out := p
	out.Description = utils.Ptr(utils.ValueOr(p.Description, DefaultDescription))
	out.DOB = utils.Ptr(utils.ValueOr(p.DOB, DefaultDOB))
	avatar := utils.ValueOr(p.AvatarID, DefaultAvatarID)
	if avatar <= 0 {
		avatar = DefaultAvatarID
	}
	out.AvatarID = utils.Ptr(avatar)
	return out
}

// ProfileUpdate is a partial profile update; nil fields are left untouched.
type ProfileUpdate struct {
	Username    *string `json:"username,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	DOB         *string `json:"dob,omitempty"`
	AvatarID    *int    `json:"avatarId,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// CompleteProfileRequest creates the profile after first sign-in.
type CompleteProfileRequest struct {
	Username     string  `json:"username"`
	Type         string  `json:"type"`
	Description  *string `json:"description,omitempty"`
	DOB          *string `json:"dob,omitempty"`
	AvatarID     *int    `json:"avatarId,omitempty"`
	EmailAddress string  `json:"emailAddress,omitempty"`
}

// Post types
const (
	PostTypePost         = "post"
	PostTypeAnnouncement = "announcement"
)

// Post is a user post about a rock.
type Post struct {
	ID               string    `json:"id"`
	RockName         string    `json:"rockName,omitempty"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	Information      string    `json:"information,omitempty"`
	Title            string    `json:"title,omitempty"`
	Description      string    `json:"description,omitempty"`
	Type             string    `json:"type,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	UploadedBy       string    `json:"uploadedBy,omitempty"`
	Username         string    `json:"username,omitempty"`
	Verified         *bool     `json:"verified,omitempty"`
	Flagged          bool      `json:"flagged,omitempty"`
	CreatedAt        Timestamp `json:"createdAt"`
}

// PostFields are the editable fields of a post.
type PostFields struct {
	RockName         string `json:"rockName"`
	ShortDescription string `json:"shortDescription"`
	Information      string `json:"information,omitempty"`
	Type             string `json:"type,omitempty"`
	ImageURL         string `json:"imageUrl"`
}

// Fact is a geology fact written by a geologist.
type Fact struct {
	ID          string    `json:"id"`
	FactID      string    `json:"factId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	Username    string    `json:"username,omitempty"`
	Flagged     bool      `json:"flagged,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// AddFactRequest creates a fact.
type AddFactRequest struct {
	FactID      string `json:"factId"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FactUpdate is a partial fact update.
type FactUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Announcement is a broadcast message shown on the home screen.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// Message is the {message} envelope returned by mutating endpoints.
type Message struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// AlreadyReported reports whether the server phrased the message as a
// duplicate ("already ..."). It is a heuristic over server wording.
func (m Message) AlreadyReported() bool {
	return strings.Contains(strings.ToLower(m.Message), "already")
}

// Decision is a moderator's verdict.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// ReportStatus filters reports by moderation state.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportApproved ReportStatus = "approve"
	ReportRejected ReportStatus = "reject"
)

// Report is a moderation report against a post.
type Report struct {
	ID         string       `json:"id,omitempty"`
	ReportID   string       `json:"reportId,omitempty"`
	PostID     string       `json:"postId"`
	Reason     string       `json:"reason"`
	ReportedBy string       `json:"reportedBy,omitempty"`
	ReportedAt Timestamp    `json:"reportedAt"`
	Status     ReportStatus `json:"status,omitempty"`
}

// Key returns the report's id, whichever field carries it.
func (r *Report) Key() string {
	if r.ReportID != "" {
		return r.ReportID
	}
	return r.ID
}

// ReportItem is a report with the reported post attached.
type ReportItem struct {
	Report
	Post *Post `json:"post,omitempty"`
}

// PostVerification approves or rejects a post pending review.
type PostVerification struct {
	Action Decision `json:"action"`
	Reason string   `json:"reason,omitempty"`
}

// Badge kinds
const (
	BadgeKindScan = "scan"
	BadgeKindPost = "post"
)

// Badge is an award definition.
type Badge struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImageKey  string `json:"imageKey"`
	Kind      string `json:"kind"`
	Threshold int    `json:"threshold"`
}

// Earned reports whether a player with the given scan and post counts has
// reached the badge threshold.
func (b Badge) Earned(scans, posts int) bool {
	switch b.Kind {
	case BadgeKindScan:
		return scans >= b.Threshold
	case BadgeKindPost:
		return posts >= b.Threshold
	default:
		return false
	}
}

// Achievement is a badge as earned by the current player.
type Achievement struct {
	Title  string `json:"title"`
	Earned bool   `json:"earned"`
}

// Quest is one daily quest.
type Quest struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// DailyQuests is today's quest list.
type DailyQuests struct {
	Quests    []Quest `json:"quests"`
	Completed bool    `json:"completed"`
}

// QuestDay is the quest scheduled for one day.
type QuestDay struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// QuestsSummary is today's quest and the upcoming ones. The backend caps
// the length of Upcoming.
type QuestsSummary struct {
	Today    *QuestDay  `json:"today,omitempty"`
	Upcoming []QuestDay `json:"upcoming"`
}

// Rock is a rock in the player's collection or near a location.
type Rock struct {
	ID          string    `json:"id"`
	RockID      string    `json:"rockId,omitempty"`
	Name        string    `json:"name,omitempty"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	Confidence  *float64  `json:"confidence,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

// AddRockRequest adds a catalog rock to the collection.
type AddRockRequest struct {
	RockID   string `json:"rockId"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ScanResult is the classifier's answer for a rock photo.
type ScanResult struct {
	PredictedType   string  `json:"predictedType"`
	RawLabel        string  `json:"rawLabel"`
	ConfidenceScore float64 `json:"confidenceScore"`
	ClassID         int     `json:"classId"`
}

// Rock returns the catalog entry for the predicted type, if known.
func (s ScanResult) Rock() (RockInfo, bool) {
	if info, ok := LookupRock(s.PredictedType); ok {
		return info, true
	}
	return LookupRock(s.RawLabel)
}

// ScanStatsDay is one day of scan counts.
type ScanStatsDay struct {
	Date   string         `json:"date"`
	Count  int            `json:"count"`
	ByType map[string]int `json:"byType,omitempty"`
}

// ScanStats is the scan count for a day and the all-time total.
type ScanStats struct {
	Day   ScanStatsDay `json:"day"`
	Total int          `json:"total"`
}
