// Package linkedin implements the OAuth token exchange and the UGC publishing
// client against the LinkedIn REST API.
package linkedin

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
	"golang.org/x/oauth2"
)

// FlowState names a position in the authorization-code flow. The first two
// values exist for callers that track a browser across requests: the browser
// is unauthenticated until the provider redirects back, and holds a code until
// the exchange completes. HandleCallback runs the whole tail of the flow in
// one call, so the sessions it returns are always authenticated or failed.
type FlowState string

const (
	StateUnauthenticated FlowState = "unauthenticated"
	StateCodeReceived    FlowState = "code-received"
	StateAuthenticated   FlowState = "authenticated"
	StateFailed          FlowState = "failed"
)

// Scopes requested on every authorization URL. Fixed list; profile scopes are
// needed for the author-id fallbacks, w_member_social for publishing.
var Scopes = []string{"openid", "profile", "email", "w_member_social", "r_basicprofile", "r_liteprofile", "r_emailaddress"}

const defaultAuthBase = "https://www.linkedin.com"

// OAuth performs the authorization-code exchange. AuthBase is overridable so
// tests can point it at a local server.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthBase     string
	APIBase      string
	HTTP         *http.Client
}

// Session is the outcome of a callback. Err preserves the provider's error
// message verbatim when the provider reported one.
type Session struct {
	State       FlowState
	Err         string
	AccessToken string
	IDToken     string
	ExpiresIn   int64
	Identity    *models.IdentityRecord
}

func (o *OAuth) authBase() string {
	if o.AuthBase != "" {
		return o.AuthBase
	}
	return defaultAuthBase
}

func (o *OAuth) httpClient() *http.Client {
	if o.HTTP != nil {
		return o.HTTP
	}
	return &http.Client{Timeout: 20 * time.Second}
}

func (o *OAuth) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		RedirectURL:  o.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  o.authBase() + "/oauth/v2/authorization",
			TokenURL: o.authBase() + "/oauth/v2/accessToken",
			// LinkedIn wants client_id/client_secret in the form body.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthURL builds the provider authorization URL. Pure function of its inputs
// plus a random per-request nonce. When state is empty a random value is
// generated; either way the caller must round-trip the state and compare it
// after the redirect; this component does not verify it.
func (o *OAuth) AuthURL(state string) string {
	if state == "" {
		state = randToken(8)
	}
	return o.oauthConfig().AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", randToken(8)),
		oauth2.SetAuthURLParam("response_mode", "form_post"),
	)
}

// Exchange trades an authorization code for an access token
// (grant_type=authorization_code, x-www-form-urlencoded). Identity is filled
// from the ID token when present, else from the userinfo endpoint; a userinfo
// failure is non-fatal since identity is display-only.
func (o *OAuth) Exchange(ctx context.Context, code string) Session {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient())
	tok, err := o.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return Session{State: StateFailed, Err: exchangeErrMessage(err)}
	}

	sess := Session{
		State:       StateAuthenticated,
		AccessToken: tok.AccessToken,
		ExpiresIn:   tok.ExpiresIn,
	}
	if sess.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		sess.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
	}

	if idt, ok := tok.Extra("id_token").(string); ok && idt != "" {
		sess.IDToken = idt
		if id, err := UntrustedClaims(idt); err == nil {
			sess.Identity = &id
		}
	}
	if sess.Identity == nil {
		if id, err := o.fetchUserInfo(ctx, tok.AccessToken); err == nil {
			sess.Identity = &id
		}
	}
	return sess
}

// HandleCallback maps the provider redirect parameters onto the flow states:
// a provider error wins, a missing code fails, otherwise the code is exchanged.
func (o *OAuth) HandleCallback(ctx context.Context, code, providerErr string) Session {
	if providerErr != "" {
		return Session{State: StateFailed, Err: providerErr}
	}
	if code == "" {
		return Session{State: StateFailed, Err: "No authorization code received"}
	}
	return o.Exchange(ctx, code)
}

func exchangeErrMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorDescription != "" {
			return re.ErrorDescription
		}
		if len(re.Body) > 0 {
			return fmt.Sprintf("token exchange failed: status=%d body=%s", re.Response.StatusCode, truncate(string(re.Body), 600))
		}
	}
	return err.Error()
}

// UntrustedClaims decodes an ID token's payload segment as base64url JSON.
// The signature is NOT checked, nor issuer or audience: treat the result as
// display data only. Use VerifyIDToken for a verified identity.
func UntrustedClaims(idToken string) (models.IdentityRecord, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) != 3 {
		return models.IdentityRecord{}, fmt.Errorf("malformed id token: expected 3 segments, got %d", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return models.IdentityRecord{}, fmt.Errorf("id token payload is not base64url: %w", err)
	}
	var rec models.IdentityRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return models.IdentityRecord{}, fmt.Errorf("id token payload is not JSON: %w", err)
	}
	return rec, nil
}

func (o *OAuth) apiBase() string {
	if o.APIBase != "" {
		return o.APIBase
	}
	return defaultAPIBase
}

func (o *OAuth) fetchUserInfo(ctx context.Context, accessToken string) (models.IdentityRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.apiBase()+"/v2/userinfo", nil)
	if err != nil {
		return models.IdentityRecord{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	res, err := o.httpClient().Do(req)
	if err != nil {
		return models.IdentityRecord{}, err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return models.IdentityRecord{}, fmt.Errorf("userinfo_non_2xx status=%d body=%s", res.StatusCode, truncate(string(body), 600))
	}
	var rec models.IdentityRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return models.IdentityRecord{}, err
	}
	return rec, nil
}

func randToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in real trouble; fall back
		// to a timestamp so the flow still works.
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
