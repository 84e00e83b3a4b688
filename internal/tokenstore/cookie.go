package tokenstore

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
)

const (
	// CookieToken is httpOnly and meant for server-side use.
	CookieToken = "linkedin_token"
	// CookieTokenClient duplicates the token without httpOnly so browser code
	// can read it. Kept for parity with the original flow.
	CookieTokenClient = "linkedin_token_client"
	CookieUserInfo    = "linkedin_user_info"
)

// CookieSink stores the token in response cookies and reads it back from
// request cookies. Expiry is enforced by the browser via Max-Age, so Load
// returns a Record without a usable Expiry field.
type CookieSink struct {
	W      http.ResponseWriter
	R      *http.Request
	Secure bool
	Now    func() time.Time
}

func NewCookieSink(w http.ResponseWriter, r *http.Request, secure bool) *CookieSink {
	return &CookieSink{W: w, R: r, Secure: secure}
}

func (s *CookieSink) Load() (Record, bool, error) {
	if s.R == nil {
		return Record{}, false, nil
	}
	c, err := s.R.Cookie(CookieToken)
	if err != nil || c.Value == "" {
		return Record{}, false, nil
	}
	return Record{Token: c.Value}, true, nil
}

func (s *CookieSink) Save(token string, expiryHours int) error {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	maxAge := expiryHours * 3600
	http.SetCookie(s.W, &http.Cookie{
		Name:     CookieToken,
		Value:    token,
		HttpOnly: true,
		Secure:   s.Secure,
		MaxAge:   maxAge,
		Path:     "/",
	})
	http.SetCookie(s.W, &http.Cookie{
		Name:     CookieTokenClient,
		Value:    token,
		HttpOnly: false,
		Secure:   s.Secure,
		MaxAge:   maxAge,
		Path:     "/",
	})
	return nil
}

// SaveIdentity stores the display-only identity record alongside the token.
// The JSON is URL-encoded because raw JSON is not a valid cookie value.
func (s *CookieSink) SaveIdentity(id models.IdentityRecord, expiryHours int) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if expiryHours <= 0 {
		expiryHours = 24
	}
	http.SetCookie(s.W, &http.Cookie{
		Name:     CookieUserInfo,
		Value:    url.QueryEscape(string(raw)),
		HttpOnly: false,
		Secure:   s.Secure,
		MaxAge:   expiryHours * 3600,
		Path:     "/",
	})
	return nil
}
