package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/tokenstore"
	"github.com/lib/pq"
)

// resolveAccessToken picks the LinkedIn token for a publish request: the
// request body wins, then the auth cookie, then the on-disk token written by
// cmd/savetoken. Empty means the caller gets a 400.
func (h *Handler) resolveAccessToken(w http.ResponseWriter, r *http.Request, bodyToken string) string {
	if tok := strings.TrimSpace(bodyToken); tok != "" {
		return tok
	}
	if rec, ok, _ := tokenstore.NewCookieSink(w, r, h.secureCookies).Load(); ok {
		return rec.Token
	}
	if h.tokenFile != "" {
		if rec, ok, _ := tokenstore.NewFileSink(h.tokenFile).Load(); ok {
			return rec.Token
		}
	}
	return ""
}

// PublishPost submits content to LinkedIn immediately.
func (h *Handler) PublishPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content       string   `json:"content"`
		AccessToken   string   `json:"accessToken"`
		MediaCategory string   `json:"mediaCategory"`
		MediaURLs     []string `json:"mediaUrls"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	token := h.resolveAccessToken(w, r, req.AccessToken)
	if token == "" {
		writeError(w, http.StatusBadRequest, "LinkedIn access token is required")
		return
	}

	res := h.pub.Publish(r.Context(), token, req.Content, req.MediaCategory, req.MediaURLs)
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SchedulePost is the legacy "schedule" endpoint: LinkedIn has no deferred
// delivery here, so the scheduled time is appended to the post text and the
// content goes out immediately. The response says so. For real deferred
// publishing use the queue endpoints below.
func (h *Handler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content       string `json:"content"`
		AccessToken   string `json:"accessToken"`
		ScheduledTime string `json:"scheduledTime"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	token := h.resolveAccessToken(w, r, req.AccessToken)
	if token == "" {
		writeError(w, http.StatusBadRequest, "LinkedIn access token is required")
		return
	}
	if strings.TrimSpace(req.ScheduledTime) == "" {
		writeError(w, http.StatusBadRequest, "Scheduled time is required")
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Scheduled time must be RFC3339")
		return
	}

	res := h.pub.PublishWithNote(r.Context(), token, req.Content, at)
	if !res.Success {
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    res.Data,
		"mode":    "note_appended",
	})
}

// CreateScheduledPost enqueues a post for real deferred publishing by the
// queue dispatcher. Requires a configured database.
func (h *Handler) CreateScheduledPost(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeError(w, http.StatusServiceUnavailable, "Deferred publishing requires a configured database")
		return
	}
	var req struct {
		Content       string   `json:"content"`
		AccessToken   string   `json:"accessToken"`
		ScheduledTime string   `json:"scheduledTime"`
		MediaCategory string   `json:"mediaCategory"`
		MediaURLs     []string `json:"mediaUrls"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	token := h.resolveAccessToken(w, r, req.AccessToken)
	if token == "" {
		writeError(w, http.StatusBadRequest, "LinkedIn access token is required")
		return
	}
	if strings.TrimSpace(req.ScheduledTime) == "" {
		writeError(w, http.StatusBadRequest, "Scheduled time is required")
		return
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Scheduled time must be RFC3339")
		return
	}
	if !at.After(time.Now()) {
		writeError(w, http.StatusBadRequest, "Scheduled time must be in the future")
		return
	}
	if req.MediaCategory == "" {
		req.MediaCategory = "NONE"
	}

	id := fmt.Sprintf("sched_%s", randHex(12))
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO public."ScheduledPosts"
		  (id, content, media_category, media_urls, access_token, scheduled_for, status, created_at, updated_at)
		VALUES
		  ($1, $2, $3, $4, $5, $6, 'queued', NOW(), NOW())
	`, id, req.Content, req.MediaCategory, pq.Array(req.MediaURLs), token, at.UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":           id,
		"status":       "queued",
		"scheduledFor": at.UTC().Format(time.RFC3339),
	})
}

// ListScheduledPosts returns the queue, newest first. Access tokens are never
// echoed back.
func (h *Handler) ListScheduledPosts(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeError(w, http.StatusServiceUnavailable, "Deferred publishing requires a configured database")
		return
	}
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, content, media_category, COALESCE(media_urls, ARRAY[]::text[]),
		       scheduled_for, status, last_error, post_id, created_at, updated_at, published_at
		  FROM public."ScheduledPosts"
		 ORDER BY scheduled_for DESC
		 LIMIT 100
	`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	posts := make([]models.ScheduledPost, 0)
	for rows.Next() {
		var p models.ScheduledPost
		var mediaURLs []string
		if err := rows.Scan(&p.ID, &p.Content, &p.MediaCategory, pq.Array(&mediaURLs),
			&p.ScheduledFor, &p.Status, &p.LastError, &p.PostID, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		p.MediaURLs = mediaURLs
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}
