package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/linkedin"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/tokenstore"
)

// AuthLinkedIn redirects the browser to the provider authorization URL.
// The state parameter is round-tripped by the caller; comparing it after the
// redirect is the caller's responsibility.
func (h *Handler) AuthLinkedIn(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "LinkedIn credentials are not configured")
		return
	}
	state := r.URL.Query().Get("state")
	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusFound)
}

// AuthLinkedInCallback handles the provider redirect. The provider may use
// form_post response mode, so both GET (query) and POST (form) are accepted.
// On success the token and identity land in cookies and the browser is sent
// to the demo page; any failure redirects to the error page with the message.
func (h *Handler) AuthLinkedInCallback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "LinkedIn credentials are not configured")
		return
	}

	var code, providerErr string
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.redirectError(w, r, "Authentication failed")
			return
		}
		code = r.PostFormValue("code")
		providerErr = r.PostFormValue("error")
	} else {
		q := r.URL.Query()
		code = q.Get("code")
		providerErr = q.Get("error")
	}

	sess := h.auth.HandleCallback(r.Context(), code, providerErr)
	if sess.State != linkedin.StateAuthenticated {
		h.redirectError(w, r, sess.Err)
		return
	}

	expiryHours := int(sess.ExpiresIn / 3600)
	sink := tokenstore.NewCookieSink(w, r, h.secureCookies)
	_ = sink.Save(sess.AccessToken, expiryHours)
	if sess.Identity != nil {
		_ = sink.SaveIdentity(*sess.Identity, expiryHours)
	}
	http.Redirect(w, r, h.origin(r)+"/linkedin-demo", http.StatusFound)
}

// AuthLinkedInToken is the JSON flavor of the exchange for client-only flows:
// {code} in, token response out.
func (h *Handler) AuthLinkedInToken(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "LinkedIn credentials are not configured")
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}

	sess := h.auth.HandleCallback(r.Context(), req.Code, "")
	if sess.State != linkedin.StateAuthenticated {
		writeError(w, http.StatusInternalServerError, sess.Err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: sess.AccessToken,
		IDToken:     sess.IDToken,
		ExpiresIn:   sess.ExpiresIn,
		UserInfo:    sess.Identity,
	})
}

type tokenResponse struct {
	AccessToken string                 `json:"access_token"`
	IDToken     string                 `json:"id_token,omitempty"`
	ExpiresIn   int64                  `json:"expires_in"`
	UserInfo    *models.IdentityRecord `json:"user_info,omitempty"`
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, h.origin(r)+"/error?message="+url.QueryEscape(msg), http.StatusFound)
}

func (h *Handler) origin(r *http.Request) string {
	if h.publicOrigin != "" {
		return h.publicOrigin
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
