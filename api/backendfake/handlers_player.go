package backendfake

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/rockquest/api"
)

// MaxUpcomingQuests caps the upcoming list of the quests summary.
const MaxUpcomingQuests = 3

const maxScanSize = 10 << 20

func (b *Backend) getRocks(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, append([]api.Rock{}, b.rocks[uidFrom(r)]...))
}

func (b *Backend) addRock(w http.ResponseWriter, r *http.Request) {
	var req api.AddRockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RockID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "rockId is required"}})
		return
	}
	rock := api.Rock{
		ID:        uuid.NewString(),
		RockID:    req.RockID,
		ImageURL:  req.ImageURL,
		CreatedAt: api.Timestamp{Time: NowTimeFunc().UTC()},
	}
	if info, ok := api.LookupCatalogID(req.RockID); ok {
		rock.Name = string(info.Class)
		rock.Type = string(info.Category)
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	uid := uidFrom(r)
	b.rocks[uid] = append(b.rocks[uid], rock)
	writeMessage(w, "Rock added", rock.ID)
}

func (b *Backend) deleteRock(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	rocks := b.rocks[uid]
	for i := range rocks {
		if rocks[i].ID == id {
			b.rocks[uid] = append(rocks[:i], rocks[i+1:]...)
			writeMessage(w, "Rock deleted", id)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Rock not found")
}

func (b *Backend) getDailyQuests(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	scannedToday := 0
	for _, n := range b.scans[uidFrom(r)][today()] {
		scannedToday += n
	}
	writeJSON(w, http.StatusOK, api.DailyQuests{
		Quests: []api.Quest{
			{ID: "q1", Title: "Igneous hunt", Description: "Find an igneous rock"},
			{ID: "q2", Title: "Triple scan", Description: "Scan 3 rocks today"},
		},
		Completed: scannedToday >= 3,
	})
}

func (b *Backend) getQuestsSummary(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	day := today()
	summary := api.QuestsSummary{Upcoming: []api.QuestDay{}}
	for i := range b.quests {
		q := b.quests[i]
		switch {
		case q.Date == day:
			summary.Today = &q
		case q.Date > day && len(summary.Upcoming) < MaxUpcomingQuests:
			summary.Upcoming = append(summary.Upcoming, api.QuestDay{Date: q.Date, Title: q.Title})
		}
	}
	writeJSON(w, http.StatusOK, summary)
}

func (b *Backend) getNearbyRocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, errLat := strconv.ParseFloat(query.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(query.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "lat and lng must be numbers"}})
		return
	}
	radius := api.DefaultNearbyRadius
	if v := query.Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "radius must be a positive number"}})
			return
		}
		radius = parsed
	}

	b.lock.RLock()
	defer b.lock.RUnlock()

	nearby := []api.Rock{}
	for _, rocks := range b.rocks {
		for _, rock := range rocks {
			if rock.Lat == nil || rock.Lng == nil {
				continue
			}
			if math.Abs(*rock.Lat-lat) <= radius && math.Abs(*rock.Lng-lng) <= radius {
				nearby = append(nearby, rock)
			}
		}
	}
	writeJSON(w, http.StatusOK, nearby)
}

func (b *Backend) getAchievements(w http.ResponseWriter, r *http.Request) {
	uid := uidFrom(r)

	b.lock.RLock()
	defer b.lock.RUnlock()

	scans := 0
	for _, byType := range b.scans[uid] {
		for _, n := range byType {
			scans += n
		}
	}
	posts := 0
	for _, p := range b.posts {
		if p.UploadedBy == uid {
			posts++
		}
	}

	achievements := make([]api.Achievement, 0, len(b.badges))
	for _, badge := range b.badges {
		achievements = append(achievements, api.Achievement{Title: badge.Name, Earned: badge.Earned(scans, posts)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"badges": achievements})
}

func (b *Backend) getScanStats(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = today()
	}

	b.lock.RLock()
	defer b.lock.RUnlock()

	stats := api.ScanStats{Day: api.ScanStatsDay{Date: date, ByType: map[string]int{}}}
	for day, byType := range b.scans[uidFrom(r)] {
		for rockType, n := range byType {
			stats.Total += n
			if day == date {
				stats.Day.Count += n
				stats.Day.ByType[rockType] += n
			}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (b *Backend) scanRock(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "expected multipart/form-data"}})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "file is required"}})
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(io.LimitReader(file, maxScanSize))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Could not read upload")
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	result := b.classifier(header.Filename, photo)
	if result.ConfidenceScore < b.threshold {
		writeDetail(w, http.StatusUnprocessableEntity, map[string]any{
			"message":    "Rock detection confidence too low. Try another angle.",
			"confidence": result.ConfidenceScore,
		})
		return
	}

	uid := uidFrom(r)
	if b.scans[uid] == nil {
		b.scans[uid] = make(map[string]map[string]int)
	}
	day := today()
	if b.scans[uid][day] == nil {
		b.scans[uid][day] = make(map[string]int)
	}
	b.scans[uid][day][result.PredictedType]++

	writeJSON(w, http.StatusOK, result)
}
