package handlers

import (
	"encoding/json"
	"net/http"
)

// writeJSON encodes v as JSON with the provided status code and a JSON content-type.
// It intentionally ignores encode errors; by then the status line is already gone.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError returns the structured {error: message} body every failure maps to.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes JSON request bodies with the default decoder settings
// (unknown fields are ignored).
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
