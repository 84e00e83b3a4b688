package handlers

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/linkedin"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
)

// Generator is the content-generation surface the handlers call.
// *gemini.Service satisfies it; tests inject a fake.
type Generator interface {
	AnalyzeStyle(ctx context.Context, content string) (models.StyleProfile, error)
	GeneratePost(ctx context.Context, topic string, style models.StyleProfile) (string, error)
	GenerateShortPost(ctx context.Context, topic string, style models.StyleProfile, maxLength int) (string, error)
	GenerateVariations(ctx context.Context, topic string, style models.StyleProfile, n int) ([]string, error)
	RewriteDynamic(ctx context.Context, post, instructions string, style models.StyleProfile) (string, error)
	RewriteEmotional(ctx context.Context, post, emotion string, style models.StyleProfile) (string, error)
	AnalyzeFeedback(ctx context.Context, post string, targetStyle models.StyleProfile) (models.StyleFeedback, error)
	AnalyzeVirality(ctx context.Context, post string) (models.ViralityAssessment, error)
	Optimize(ctx context.Context, post, targetAudience string) (models.OptimizationBundle, error)
	RewriteSuggestions(ctx context.Context, post string) (models.RewriteSuggestions, error)
}

// Publisher is the LinkedIn publishing surface (*linkedin.Client).
type Publisher interface {
	Publish(ctx context.Context, accessToken, content, mediaCategory string, mediaURLs []string) linkedin.PublishResult
	PublishWithNote(ctx context.Context, accessToken, content string, scheduledAt time.Time) linkedin.PublishResult
}

// Authenticator is the OAuth surface (*linkedin.OAuth). Nil when the
// LinkedIn credentials are not configured; the auth routes then 503.
type Authenticator interface {
	AuthURL(state string) string
	HandleCallback(ctx context.Context, code, providerErr string) linkedin.Session
}

type Handler struct {
	db            *sql.DB
	gen           Generator
	pub           Publisher
	auth          Authenticator
	secureCookies bool
	tokenFile     string
	publicOrigin  string
}

func New(db *sql.DB, gen Generator, pub Publisher, auth Authenticator) *Handler {
	return &Handler{db: db, gen: gen, pub: pub, auth: auth}
}

// WithSecureCookies marks auth cookies Secure; call it in production.
func (h *Handler) WithSecureCookies() *Handler {
	h.secureCookies = true
	return h
}

// WithTokenFile enables the on-disk token fallback for publish requests that
// carry no access token (headless callers using cmd/savetoken).
func (h *Handler) WithTokenFile(path string) *Handler {
	h.tokenFile = path
	return h
}

// WithPublicOrigin sets the origin used in post-auth browser redirects.
// Needed when the service sits behind a proxy and r.Host is not the address
// the browser should return to. Empty means derive from the request.
func (h *Handler) WithPublicOrigin(origin string) *Handler {
	h.publicOrigin = strings.TrimRight(origin, "/")
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// --- content generation ---

func (h *Handler) AnalyzeStyle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	profile, err := h.gen.AnalyzeStyle(r.Context(), req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) GeneratePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic string              `json:"topic"`
		Style models.StyleProfile `json:"style"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}
	post, err := h.gen.GeneratePost(r.Context(), req.Topic, req.Style)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generatedPost(post))
}

func (h *Handler) GenerateShortPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic     string              `json:"topic"`
		Style     models.StyleProfile `json:"style"`
		MaxLength int                 `json:"maxLength"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}
	if req.MaxLength <= 0 {
		req.MaxLength = 280
	}
	post, err := h.gen.GenerateShortPost(r.Context(), req.Topic, req.Style, req.MaxLength)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generatedPost(post))
}

func (h *Handler) GenerateVariations(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Topic      string              `json:"topic"`
		Style      models.StyleProfile `json:"style"`
		Variations int                 `json:"variations"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}
	if req.Variations <= 0 {
		req.Variations = 3
	}
	posts, err := h.gen.GenerateVariations(r.Context(), req.Topic, req.Style, req.Variations)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"posts": posts})
}

func (h *Handler) RewritePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Post          string              `json:"post"`
		Instructions  string              `json:"instructions"`
		OriginalStyle models.StyleProfile `json:"originalStyle"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Post) == "" {
		writeError(w, http.StatusBadRequest, "Post content is required")
		return
	}
	if strings.TrimSpace(req.Instructions) == "" {
		writeError(w, http.StatusBadRequest, "Rewrite instructions are required")
		return
	}
	rewritten, err := h.gen.RewriteDynamic(r.Context(), req.Post, req.Instructions, req.OriginalStyle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rewrittenPost": rewritten})
}

func (h *Handler) RewriteEmotional(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Post           string              `json:"post"`
		EmotionalStyle string              `json:"emotionalStyle"`
		OriginalStyle  models.StyleProfile `json:"originalStyle"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Post) == "" {
		writeError(w, http.StatusBadRequest, "Post content is required")
		return
	}
	if strings.TrimSpace(req.EmotionalStyle) == "" {
		writeError(w, http.StatusBadRequest, "Emotional style is required")
		return
	}
	rewritten, err := h.gen.RewriteEmotional(r.Context(), req.Post, req.EmotionalStyle, req.OriginalStyle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rewrittenPost": rewritten})
}

func (h *Handler) RewriteSuggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Post string `json:"post"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Post) == "" {
		writeError(w, http.StatusBadRequest, "Post content is required")
		return
	}
	sug, err := h.gen.RewriteSuggestions(r.Context(), req.Post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Post          string               `json:"post"`
		OriginalStyle *models.StyleProfile `json:"originalStyle"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Post) == "" {
		writeError(w, http.StatusBadRequest, "Post content is required")
		return
	}
	if req.OriginalStyle == nil {
		writeError(w, http.StatusBadRequest, "Original style is required")
		return
	}
	fb, err := h.gen.AnalyzeFeedback(r.Context(), req.Post, *req.OriginalStyle)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Post           string `json:"post"`
		TargetAudience string `json:"targetAudience"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Post) == "" {
		writeError(w, http.StatusBadRequest, "Post content is required")
		return
	}
	bundle, err := h.gen.Optimize(r.Context(), req.Post, req.TargetAudience)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *Handler) Virality(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Post string `json:"post"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Post) == "" {
		writeError(w, http.StatusBadRequest, "Post content is required")
		return
	}
	v, err := h.gen.AnalyzeVirality(r.Context(), req.Post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func generatedPost(post string) models.GeneratedPost {
	return models.GeneratedPost{
		Post:      post,
		CharCount: utf8.RuneCountInString(post),
		WordCount: len(strings.Fields(post)),
	}
}

func randHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000000")))[:2*n]
	}
	return hex.EncodeToString(b)
}
