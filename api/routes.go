package api

import "net/http"

// Route path constants
// All backend routes are defined here to ensure consistency and prevent typos
const (
	// User Routes - Profile
	RouteProfile         = "/profile"
	RouteUpdateProfile   = "/update-profile"
	RouteCompleteProfile = "/complete-profile"
	RouteDeleteAccount   = "/delete-account"

	// User Routes - Posts
	RouteMyPosts    = "/my-posts"
	RouteAllPosts   = "/all-posts"
	RouteAddPost    = "/add-post"
	RouteEditPost   = "/edit-post/{id}"
	RouteDeletePost = "/delete-post/{id}"
	RouteReportPost = "/report-post"

	// User Routes - Reading
	RouteFacts         = "/facts"
	RouteAnnouncements = "/announcements"
	RouteBadges        = "/badges"

	// Player Routes
	RoutePlayerRocks         = "/player/rocks"
	RoutePlayerAddRock       = "/player/add-rock"
	RoutePlayerDeleteRock    = "/player/delete-rock/{id}"
	RoutePlayerDailyQuests   = "/player/daily-quests"
	RoutePlayerQuestsSummary = "/player/quests-summary"
	RoutePlayerGPSRocks      = "/player/gps-rocks"
	RoutePlayerAchievements  = "/player/achievements"
	RoutePlayerScanStats     = "/player/scan-stats"
	RoutePlayerScanRock      = "/player/scan-rock"

	// Geologist Routes - Facts
	RouteGeologistAddFact    = "/geologist/add-fact"
	RouteGeologistEditFact   = "/geologist/edit-fact/{id}"
	RouteGeologistDeleteFact = "/geologist/delete-fact/{id}"

	// Geologist Routes - Moderation
	RouteGeologistReview         = "/geologist/review"
	RouteGeologistVerifyRock     = "/geologist/verify-rock/{id}"
	RouteGeologistReports        = "/geologist/reports"
	RouteGeologistReported       = "/geologist/reported"
	RouteGeologistReportDecision = "/geologist/reports/{id}/decision"
)

// Route is one backend operation.
type Route struct {
	Method string
	Path   string
}

// Routes lists every backend operation the client calls.
var Routes = []Route{
	{http.MethodGet, RouteProfile},
	{http.MethodPut, RouteUpdateProfile},
	{http.MethodPost, RouteCompleteProfile},
	{http.MethodDelete, RouteDeleteAccount},
	{http.MethodGet, RouteMyPosts},
	{http.MethodGet, RouteAllPosts},
	{http.MethodPost, RouteAddPost},
	{http.MethodPut, RouteEditPost},
	{http.MethodDelete, RouteDeletePost},
	{http.MethodPost, RouteReportPost},
	{http.MethodGet, RouteFacts},
	{http.MethodGet, RouteAnnouncements},
	{http.MethodGet, RouteBadges},
	{http.MethodGet, RoutePlayerRocks},
	{http.MethodPost, RoutePlayerAddRock},
	{http.MethodDelete, RoutePlayerDeleteRock},
	{http.MethodGet, RoutePlayerDailyQuests},
	{http.MethodGet, RoutePlayerQuestsSummary},
	{http.MethodGet, RoutePlayerGPSRocks},
	{http.MethodGet, RoutePlayerAchievements},
	{http.MethodGet, RoutePlayerScanStats},
	{http.MethodPost, RoutePlayerScanRock},
	{http.MethodPost, RouteGeologistAddFact},
	{http.MethodPut, RouteGeologistEditFact},
	{http.MethodDelete, RouteGeologistDeleteFact},
	{http.MethodGet, RouteGeologistReview},
	{http.MethodPost, RouteGeologistVerifyRock},
	{http.MethodGet, RouteGeologistReports},
	{http.MethodGet, RouteGeologistReported},
	{http.MethodPost, RouteGeologistReportDecision},
}
