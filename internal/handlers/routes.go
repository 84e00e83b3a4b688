package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes on the given router.
func RegisterRoutes(h *Handler, r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")

	// Content generation
	r.HandleFunc("/api/analyze", h.AnalyzeStyle).Methods("POST")
	r.HandleFunc("/api/generate", h.GeneratePost).Methods("POST")
	r.HandleFunc("/api/short-post", h.GenerateShortPost).Methods("POST")
	r.HandleFunc("/api/variations", h.GenerateVariations).Methods("POST")
	r.HandleFunc("/api/rewrite", h.RewritePost).Methods("POST")
	r.HandleFunc("/api/rewrite-emotional", h.RewriteEmotional).Methods("POST")
	r.HandleFunc("/api/rewrite-suggestions", h.RewriteSuggestions).Methods("POST")
	r.HandleFunc("/api/feedback", h.Feedback).Methods("POST")
	r.HandleFunc("/api/optimize", h.Optimize).Methods("POST")
	r.HandleFunc("/api/virality", h.Virality).Methods("POST")

	// LinkedIn auth
	r.HandleFunc("/api/auth/linkedin", h.AuthLinkedIn).Methods("GET")
	r.HandleFunc("/api/auth/linkedin/callback", h.AuthLinkedInCallback).Methods("GET", "POST")
	r.HandleFunc("/api/auth/linkedin/token", h.AuthLinkedInToken).Methods("POST")

	// LinkedIn publishing
	r.HandleFunc("/api/linkedin/post", h.PublishPost).Methods("POST")
	r.HandleFunc("/api/linkedin/schedule", h.SchedulePost).Methods("POST")
	r.HandleFunc("/api/linkedin/schedule/queue", h.CreateScheduledPost).Methods("POST")
	r.HandleFunc("/api/linkedin/schedule/queue", h.ListScheduledPosts).Methods("GET")
}
