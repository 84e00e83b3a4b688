package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrIdentityResolution is returned when every resolver strikes out. It is a
// distinct failure from a publish failure: no publish call is issued without
// a resolved author URN.
var ErrIdentityResolution = errors.New("could not retrieve LinkedIn user ID with the provided token")

// errNotApplicable marks a resolver that cannot serve this token (wrong
// permissions, retired endpoint). The next resolver in order is tried.
var errNotApplicable = errors.New("resolver not applicable")

// identityResolver is one strategy for turning an access token into an author
// URN. Resolvers are tried in a fixed order; the first success wins. New
// fallbacks are added by appending to the list, not by branching.
type identityResolver interface {
	name() string
	resolve(ctx context.Context, c *Client, accessToken string) (string, error)
}

func defaultResolvers() []identityResolver {
	return []identityResolver{
		profileV2Resolver{},
		legacyProfileResolver{},
		userinfoResolver{},
	}
}

// ResolveAuthorURN runs the resolver chain and returns "urn:li:person:<id>".
func (c *Client) ResolveAuthorURN(ctx context.Context, accessToken string) (string, error) {
	for _, r := range c.resolvers() {
		urn, err := r.resolve(ctx, c, accessToken)
		if err == nil {
			return urn, nil
		}
		if errors.Is(err, errNotApplicable) {
			c.logf("[LinkedIn] resolver=%s not_applicable", r.name())
			continue
		}
		c.logf("[LinkedIn] resolver=%s err=%v", r.name(), err)
	}
	return "", ErrIdentityResolution
}

func personURN(id string) string {
	return "urn:li:person:" + id
}

// getJSON performs an authenticated GET and decodes the body into out.
// A non-2xx status maps to errNotApplicable so the caller can fall through.
func (c *Client) getJSON(ctx context.Context, url, accessToken string, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	res, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("%w: status=%d body=%s", errNotApplicable, res.StatusCode, truncate(string(body), 600))
	}
	return json.Unmarshal(body, out)
}

// profileV2Resolver hits the v2 profile endpoint and builds the URN from the
// returned member id.
type profileV2Resolver struct{}

func (profileV2Resolver) name() string { return "profile_v2" }

func (profileV2Resolver) resolve(ctx context.Context, c *Client, accessToken string) (string, error) {
	var profile struct {
		ID json.Number `json:"id"`
	}
	if err := c.getJSON(ctx, c.apiBase()+"/v2/me", accessToken, &profile); err != nil {
		return "", err
	}
	if profile.ID.String() == "" {
		return "", fmt.Errorf("%w: v2 profile response missing id", errNotApplicable)
	}
	return personURN(profile.ID.String()), nil
}

// legacyProfileResolver falls back to the v1 people endpoint kept alive for
// older app permissions.
type legacyProfileResolver struct{}

func (legacyProfileResolver) name() string { return "profile_v1" }

func (legacyProfileResolver) resolve(ctx context.Context, c *Client, accessToken string) (string, error) {
	var profile struct {
		ID json.Number `json:"id"`
	}
	if err := c.getJSON(ctx, c.apiBase()+"/v1/people/~?format=json", accessToken, &profile); err != nil {
		return "", err
	}
	if profile.ID.String() == "" {
		return "", fmt.Errorf("%w: v1 profile response missing id", errNotApplicable)
	}
	return personURN(profile.ID.String()), nil
}

// userinfoResolver uses the OpenID Connect userinfo endpoint; the sub claim
// carries the member id.
type userinfoResolver struct{}

func (userinfoResolver) name() string { return "userinfo" }

func (userinfoResolver) resolve(ctx context.Context, c *Client, accessToken string) (string, error) {
	var info struct {
		Sub string `json:"sub"`
	}
	if err := c.getJSON(ctx, c.apiBase()+"/v2/userinfo", accessToken, &info); err != nil {
		return "", err
	}
	if info.Sub == "" {
		return "", fmt.Errorf("%w: userinfo response missing sub", errNotApplicable)
	}
	return personURN(info.Sub), nil
}
