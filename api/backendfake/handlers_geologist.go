package backendfake

import (
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/internal/utils"
)

func (b *Backend) addFact(w http.ResponseWriter, r *http.Request) {
	var req api.AddFactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "title is required"}})
		return
	}
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	id := req.FactID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := b.facts[id]; exists {
		writeDetail(w, http.StatusConflict, "Fact already exists")
		return
	}
	fact := &api.Fact{
		ID:          id,
		FactID:      req.FactID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   uid,
		CreatedAt:   api.Timestamp{Time: NowTimeFunc().UTC()},
	}
	if p, ok := b.profiles[uid]; ok {
		fact.Username = p.Username
	}
	b.facts[id] = fact
	writeMessage(w, "Fact added", id)
}

func (b *Backend) editFact(w http.ResponseWriter, r *http.Request) {
	var update api.FactUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	f, ok := b.facts[idParam(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Fact not found")
		return
	}
	f.Title = utils.ValueOr(update.Title, f.Title)
	f.Description = utils.ValueOr(update.Description, f.Description)
	writeMessage(w, "Fact updated", "")
}

func (b *Backend) deleteFact(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, ok := b.facts[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Fact not found")
		return
	}
	delete(b.facts, id)
	writeMessage(w, "Fact deleted", "")
}

func (b *Backend) reviewPending(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, b.sortedPosts(func(p *api.Post) bool { return p.Verified == nil }))
}

func (b *Backend) verifyRock(w http.ResponseWriter, r *http.Request) {
	var v api.PostVerification
	if !decodeJSON(w, r, &v) {
		return
	}
	if !v.Action.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "action must be approve or reject"}})
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	p, ok := b.posts[idParam(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	p.Verified = utils.Ptr(v.Action == api.DecisionApprove)
	if v.Action == api.DecisionApprove {
		writeMessage(w, "Rock approved", "")
		return
	}
	writeMessage(w, "Rock rejected", "")
}

// reportsWithStatus must be called with the lock held. Oldest first.
func (b *Backend) reportsWithStatus(r *http.Request) []api.Report {
	status := api.ReportStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = api.ReportPending
	}
	reports := []api.Report{}
	for _, rep := range b.reports {
		if rep.Status == status {
			reports = append(reports, *rep)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].ReportedAt.Equal(reports[j].ReportedAt.Time) {
			return reports[i].ReportID < reports[j].ReportID
		}
		return reports[i].ReportedAt.Before(reports[j].ReportedAt.Time)
	})
	return reports
}

func (b *Backend) getReports(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, b.reportsWithStatus(r))
}

func (b *Backend) getReported(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	reports := b.reportsWithStatus(r)
	items := make([]api.ReportItem, 0, len(reports))
	for _, rep := range reports {
		item := api.ReportItem{Report: rep}
		if p, ok := b.posts[rep.PostID]; ok {
			post := *p
			item.Post = &post
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) decideReport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action api.Decision `json:"action"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if !body.Action.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "action must be approve or reject"}})
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	rep, ok := b.reports[idParam(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return
	}
	if rep.Status != api.ReportPending {
		writeDetail(w, http.StatusConflict, "Report already decided")
		return
	}
	rep.Status = api.ReportStatus(body.Action)
	// An upheld report hides the post from the feed.
	if body.Action == api.DecisionApprove {
		if p, ok := b.posts[rep.PostID]; ok {
			p.Flagged = true
		}
	}
	writeMessage(w, "Report decided", rep.ReportID)
}
