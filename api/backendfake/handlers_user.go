package backendfake

import (
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/internal/utils"
)

func (b *Backend) getProfile(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	p, ok := b.profiles[uidFrom(r)]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update api.ProfileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	p, ok := b.profiles[uid]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if update.Username != nil && !strings.EqualFold(*update.Username, p.Username) && b.usernameTaken(*update.Username) {
		writeDetail(w, http.StatusBadRequest, "Username already taken")
		return
	}

	p.Username = utils.ValueOr(update.Username, p.Username)
	p.Type = utils.ValueOr(update.Type, p.Type)
	p.Email = utils.ValueOr(update.Email, p.Email)
	if update.Description != nil {
		p.Description = update.Description
	}
	if update.DOB != nil {
		p.DOB = update.DOB
	}
	if update.AvatarID != nil {
		p.AvatarID = update.AvatarID
	}
	if update.IsActive != nil {
		p.IsActive = update.IsActive
	}
	writeMessage(w, "Profile updated", "")
}

func (b *Backend) completeProfile(w http.ResponseWriter, r *http.Request) {
	var req api.CompleteProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "username is required"}})
		return
	}
	if _, err := api.ParseRole(req.Type); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "type must be player or geologist"}})
		return
	}
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, exists := b.profiles[uid]; exists {
		writeDetail(w, http.StatusConflict, "Profile already completed")
		return
	}
	if b.usernameTaken(req.Username) {
		writeDetail(w, http.StatusBadRequest, "Username already taken")
		return
	}
	b.profiles[uid] = &api.Profile{
		Username:     req.Username,
		Type:         strings.ToLower(req.Type),
		EmailAddress: req.EmailAddress,
		Description:  req.Description,
		DOB:          req.DOB,
		AvatarID:     req.AvatarID,
		IsActive:     utils.Ptr(true),
		CreatedAt:    api.Timestamp{Time: NowTimeFunc().UTC()},
	}
	writeMessage(w, "Profile completed", "")
}

// usernameTaken must be called with the lock held.
func (b *Backend) usernameTaken(username string) bool {
	for _, p := range b.profiles {
		if strings.EqualFold(p.Username, username) {
			return true
		}
	}
	return false
}

func (b *Backend) deleteAccount(w http.ResponseWriter, r *http.Request) {
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	delete(b.profiles, uid)
	delete(b.rocks, uid)
	delete(b.scans, uid)
	writeMessage(w, "Account deleted", "")
}

// sortedPosts must be called with the lock held. Newest first.
func (b *Backend) sortedPosts(keep func(*api.Post) bool) []api.Post {
	posts := make([]api.Post, 0, len(b.posts))
	for _, p := range b.posts {
		if keep(p) {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt.Time) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt.Time)
	})
	return posts
}

func (b *Backend) getMyPosts(w http.ResponseWriter, r *http.Request) {
	uid := uidFrom(r)

	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, b.sortedPosts(func(p *api.Post) bool { return p.UploadedBy == uid }))
}

func (b *Backend) getAllPosts(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, b.sortedPosts(func(p *api.Post) bool { return !p.Flagged }))
}

func (b *Backend) addPost(w http.ResponseWriter, r *http.Request) {
	var fields api.PostFields
	if !decodeJSON(w, r, &fields) {
		return
	}
	if strings.TrimSpace(fields.RockName) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "rockName is required"}})
		return
	}
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	post := &api.Post{
		ID:         uuid.NewString(),
		UploadedBy: uid,
		CreatedAt:  api.Timestamp{Time: NowTimeFunc().UTC()},
	}
	applyPostFields(post, fields)
	if p, ok := b.profiles[uid]; ok {
		post.Username = p.Username
	}
	b.posts[post.ID] = post
	writeMessage(w, "Post added", post.ID)
}

func applyPostFields(p *api.Post, f api.PostFields) {
	p.RockName = f.RockName
	p.ShortDescription = f.ShortDescription
	p.Information = f.Information
	p.ImageURL = f.ImageURL
	p.Type = f.Type
	if p.Type == "" {
		p.Type = api.PostTypePost
	}
}

// ownedPost must be called with the lock held. It writes the error response
// and returns nil when uid may not change the post.
func (b *Backend) ownedPost(w http.ResponseWriter, id, uid string) *api.Post {
	p, ok := b.posts[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return nil
	}
	if p.UploadedBy != uid {
		writeDetail(w, http.StatusForbidden, "Not your post")
		return nil
	}
	return p
}

func (b *Backend) editPost(w http.ResponseWriter, r *http.Request) {
	var fields api.PostFields
	if !decodeJSON(w, r, &fields) {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	p := b.ownedPost(w, idParam(r), uidFrom(r))
	if p == nil {
		return
	}
	applyPostFields(p, fields)
	writeMessage(w, "Post updated", "")
}

func (b *Backend) deletePost(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()

	p := b.ownedPost(w, idParam(r), uidFrom(r))
	if p == nil {
		return
	}
	delete(b.posts, p.ID)
	writeMessage(w, "Post deleted", "")
}

func (b *Backend) reportPost(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("post_id")
	reason := r.URL.Query().Get("reason")
	if postID == "" || reason == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []map[string]string{{"msg": "post_id and reason are required"}})
		return
	}
	uid := uidFrom(r)

	b.lock.Lock()
	defer b.lock.Unlock()

	if _, ok := b.posts[postID]; !ok {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	key := uid + "|" + postID
	if b.reportedBy[key] {
		writeMessage(w, "You have already reported this post", "")
		return
	}
	b.reportedBy[key] = true

	rep := &api.Report{
		ReportID:   uuid.NewString(),
		PostID:     postID,
		Reason:     reason,
		ReportedBy: uid,
		ReportedAt: api.Timestamp{Time: NowTimeFunc().UTC()},
		Status:     api.ReportPending,
	}
	b.reports[rep.ReportID] = rep
	writeMessage(w, "Post reported", rep.ReportID)
}

func (b *Backend) getFacts(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	facts := make([]api.Fact, 0, len(b.facts))
	for _, f := range b.facts {
		facts = append(facts, *f)
	}
	sort.Slice(facts, func(i, j int) bool { return facts[i].ID < facts[j].ID })
	writeJSON(w, http.StatusOK, facts)
}

func (b *Backend) getAnnouncements(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, append([]api.Announcement{}, b.announcements...))
}

func (b *Backend) getBadges(w http.ResponseWriter, r *http.Request) {
	b.lock.RLock()
	defer b.lock.RUnlock()
	writeJSON(w, http.StatusOK, map[string]any{"badges": b.badges})
}
