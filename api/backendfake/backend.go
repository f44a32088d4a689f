// Package backendfake is an in-memory RockQuest backend for tests and the
// CLI's --fake mode. It speaks the same routes and JSON shapes as the real
// service, including its error bodies.
package backendfake

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/session"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DefaultConfidenceThreshold is the classifier confidence below which a scan
// is rejected with 422.
const DefaultConfidenceThreshold = 0.6

// Classifier labels a scanned photo.
type Classifier func(filename string, photo []byte) api.ScanResult

// RecordedRequest is a request as the backend received it.
type RecordedRequest struct {
	Method string
	Path   string // Escaped path as sent
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Backend is safe for concurrent use.
type Backend struct {
	lock sync.RWMutex

	profiles      map[string]*api.Profile // by uid
	posts         map[string]*api.Post
	facts         map[string]*api.Fact
	announcements []api.Announcement
	rocks         map[string][]api.Rock // by uid
	reports       map[string]*api.Report
	reportedBy    map[string]bool // uid + "|" + postID
	badges        []api.Badge
	scans         map[string]map[string]map[string]int // uid -> date -> type -> count
	quests        []api.QuestDay

	classifier Classifier
	threshold  float64

	requests []RecordedRequest
	router   chi.Router
}

// New returns an empty backend with the default badges and quests.
func New() *Backend {
	b := &Backend{
		profiles:   make(map[string]*api.Profile),
		posts:      make(map[string]*api.Post),
		facts:      make(map[string]*api.Fact),
		rocks:      make(map[string][]api.Rock),
		reports:    make(map[string]*api.Report),
		reportedBy: make(map[string]bool),
		scans:      make(map[string]map[string]map[string]int),
		classifier: DefaultClassifier,
		threshold:  DefaultConfidenceThreshold,
		badges: []api.Badge{
			{ID: "scan-1", Name: "First Scan", ImageKey: "Scan1", Kind: api.BadgeKindScan, Threshold: 1},
			{ID: "scan-2", Name: "Keen Eye", ImageKey: "Scan2", Kind: api.BadgeKindScan, Threshold: 5},
			{ID: "scan-3", Name: "Geology Guru", ImageKey: "Scan3", Kind: api.BadgeKindScan, Threshold: 20},
			{ID: "post-1", Name: "First Post", ImageKey: "Post1", Kind: api.BadgeKindPost, Threshold: 1},
			{ID: "post-2", Name: "Storyteller", ImageKey: "Post2", Kind: api.BadgeKindPost, Threshold: 5},
			{ID: "post-3", Name: "Rock Journalist", ImageKey: "Post3", Kind: api.BadgeKindPost, Threshold: 20},
		},
	}
	b.router = b.routes()
	return b
}

// DefaultClassifier picks a class from the photo size with high confidence.
func DefaultClassifier(_ string, photo []byte) api.ScanResult {
	idx := len(photo) % len(api.RockClasses)
	class := string(api.RockClasses[idx])
	return api.ScanResult{PredictedType: class, RawLabel: strings.ToLower(class), ConfidenceScore: 0.92, ClassID: idx}
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

func (b *Backend) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(b.record)

	router.Group(func(router chi.Router) {
		router.Use(b.requireAuth)

		// Profile
		router.Get(api.RouteProfile, b.getProfile)
		router.Put(api.RouteUpdateProfile, b.updateProfile)
		router.Post(api.RouteCompleteProfile, b.completeProfile)
		router.Delete(api.RouteDeleteAccount, b.deleteAccount)

		// Posts
		router.Get(api.RouteMyPosts, b.getMyPosts)
		router.Get(api.RouteAllPosts, b.getAllPosts)
		router.Post(api.RouteAddPost, b.addPost)
		router.Put(api.RouteEditPost, b.editPost)
		router.Delete(api.RouteDeletePost, b.deletePost)
		router.Post(api.RouteReportPost, b.reportPost)

		// Reading
		router.Get(api.RouteFacts, b.getFacts)
		router.Get(api.RouteAnnouncements, b.getAnnouncements)
		router.Get(api.RouteBadges, b.getBadges)

		// Player
		router.Get(api.RoutePlayerRocks, b.getRocks)
		router.Post(api.RoutePlayerAddRock, b.addRock)
		router.Delete(api.RoutePlayerDeleteRock, b.deleteRock)
		router.Get(api.RoutePlayerDailyQuests, b.getDailyQuests)
		router.Get(api.RoutePlayerQuestsSummary, b.getQuestsSummary)
		router.Get(api.RoutePlayerGPSRocks, b.getNearbyRocks)
		router.Get(api.RoutePlayerAchievements, b.getAchievements)
		router.Get(api.RoutePlayerScanStats, b.getScanStats)
		router.Post(api.RoutePlayerScanRock, b.scanRock)

		// Geologist
		router.Group(func(router chi.Router) {
			router.Use(b.requireGeologist)
			router.Post(api.RouteGeologistAddFact, b.addFact)
			router.Put(api.RouteGeologistEditFact, b.editFact)
			router.Delete(api.RouteGeologistDeleteFact, b.deleteFact)
			router.Get(api.RouteGeologistReview, b.reviewPending)
			router.Post(api.RouteGeologistVerifyRock, b.verifyRock)
			router.Get(api.RouteGeologistReports, b.getReports)
			router.Get(api.RouteGeologistReported, b.getReported)
			router.Post(api.RouteGeologistReportDecision, b.decideReport)
		})
	})
	return router
}

// SetClassifier replaces the scan classifier.
func (b *Backend) SetClassifier(c Classifier) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.classifier = c
}

// SetConfidenceThreshold sets the confidence below which scans are rejected.
func (b *Backend) SetConfidenceThreshold(threshold float64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.threshold = threshold
}

// SeedProfile stores a completed profile for uid.
func (b *Backend) SeedProfile(uid string, p api.Profile) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.profiles[uid] = &p
}

// SeedPost stores a post and returns its id.
func (b *Backend) SeedPost(p api.Post) string {
	b.lock.Lock()
	defer b.lock.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = api.Timestamp{Time: NowTimeFunc().UTC()}
	}
	b.posts[p.ID] = &p
	return p.ID
}

// SeedFact stores a fact and returns its id.
func (b *Backend) SeedFact(f api.Fact) string {
	b.lock.Lock()
	defer b.lock.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	b.facts[f.ID] = &f
	return f.ID
}

// SeedAnnouncement stores an announcement.
func (b *Backend) SeedAnnouncement(a api.Announcement) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	b.announcements = append(b.announcements, a)
}

// SeedRock adds a rock to uid's collection and returns its id.
func (b *Backend) SeedRock(uid string, r api.Rock) string {
	b.lock.Lock()
	defer b.lock.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	b.rocks[uid] = append(b.rocks[uid], r)
	return r.ID
}

// SeedQuests sets the quest schedule used by the quests endpoints.
func (b *Backend) SeedQuests(days ...api.QuestDay) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.quests = append([]api.QuestDay(nil), days...)
	sort.Slice(b.quests, func(i, j int) bool { return b.quests[i].Date < b.quests[j].Date })
}

// Requests returns every request received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// LastRequest returns the most recent request, if any.
func (b *Backend) LastRequest() (RecordedRequest, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}, false
	}
	return b.requests[len(b.requests)-1], true
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.lock.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

// TokenUID maps a bearer token to a uid. Tokens from sessionfake
// ("token-<uid>-<n>") map to their uid; any other token must be a JWT whose
// subject is the uid.
func TokenUID(token string) (string, bool) {
	if rest, ok := strings.CutPrefix(token, "token-"); ok {
		if i := strings.LastIndex(rest, "-"); i > 0 {
			return rest[:i], true
		}
		return "", false
	}
	claims, err := session.ParseClaims(token)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

type uidKey struct{}

func withUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey{}, uid)
}

func uidFrom(r *http.Request) string {
	uid, _ := r.Context().Value(uidKey{}).(string)
	return uid
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		uid, ok := TokenUID(token)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUID(r.Context(), uid)))
	})
}

func (b *Backend) requireGeologist(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.lock.RLock()
		p, ok := b.profiles[uidFrom(r)]
		isGeologist := ok && p.Role() == api.RoleGeologist
		b.lock.RUnlock()

		if !isGeologist {
			writeDetail(w, http.StatusForbidden, "Geologist role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func writeMessage(w http.ResponseWriter, msg, id string) {
	writeJSON(w, http.StatusOK, api.Message{Message: msg, ID: id})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "invalid JSON body"}})
		return false
	}
	return true
}

// idParam returns the unescaped {id} path segment.
func idParam(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func today() string {
	return NowTimeFunc().UTC().Format("2006-01-02")
}
