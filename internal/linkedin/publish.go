package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultAPIBase = "https://api.linkedin.com"

// Error kinds carried on PublishResult so callers can tell an identity
// failure from a provider or transport failure.
const (
	ErrKindIdentity  = "identity_resolution"
	ErrKindProvider  = "provider"
	ErrKindTransport = "transport"
)

// Client talks to the LinkedIn REST API. APIBase is overridable for tests;
// the limiter paces all outbound calls.
type Client struct {
	APIBase   string
	HTTP      *http.Client
	Limiter   *rate.Limiter
	Logger    *log.Logger
	Resolvers []identityResolver
}

// PostResponse is the provider's answer to a UGC submission. Only id is
// guaranteed; the rest is tolerated when absent.
type PostResponse struct {
	ID       string `json:"id"`
	Activity string `json:"activity,omitempty"`
	Created  *struct {
		Time int64 `json:"time"`
	} `json:"created,omitempty"`
}

type PublishResult struct {
	Success   bool          `json:"success"`
	Data      *PostResponse `json:"data,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"errorKind,omitempty"`
}

// providerError is LinkedIn's error envelope.
type providerError struct {
	ServiceErrorCode *int   `json:"serviceErrorCode"`
	Message          string `json:"message"`
	Status           *int   `json:"status"`
}

func (c *Client) apiBase() string {
	if c.APIBase != "" {
		return c.APIBase
	}
	return defaultAPIBase
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 20 * time.Second}
}

func (c *Client) resolvers() []identityResolver {
	if len(c.Resolvers) > 0 {
		return c.Resolvers
	}
	return defaultResolvers()
}

func (c *Client) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	return c.Limiter.Wait(ctx)
}

func (c *Client) logf(format string, args ...any) {
	l := c.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// ugcEnvelope builds the UGC post body: author URN, published lifecycle,
// share text, media category, optional media list, public visibility.
func ugcEnvelope(authorURN, content, mediaCategory string, mediaURLs []string) map[string]any {
	if mediaCategory == "" {
		mediaCategory = "NONE"
	}
	share := map[string]any{
		"shareCommentary":    map[string]string{"text": content},
		"shareMediaCategory": mediaCategory,
	}
	if len(mediaURLs) > 0 {
		media := make([]map[string]string, 0, len(mediaURLs))
		for _, u := range mediaURLs {
			media = append(media, map[string]string{"status": "READY", "originalUrl": u})
		}
		share["media"] = media
	}
	return map[string]any{
		"author":         authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": share,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
}

// Publish resolves the author URN and submits a UGC post. Failures come back
// in-band on the result; there is no retry.
func (c *Client) Publish(ctx context.Context, accessToken, content, mediaCategory string, mediaURLs []string) PublishResult {
	authorURN, err := c.ResolveAuthorURN(ctx, accessToken)
	if err != nil {
		return PublishResult{Success: false, Error: err.Error(), ErrorKind: ErrKindIdentity}
	}
	return c.submit(ctx, accessToken, authorURN, content, mediaCategory, mediaURLs)
}

// PublishWithNote is the annotation-only stand-in for scheduling: the content
// is published immediately with a human-readable "(Scheduled for: ...)"
// suffix. LinkedIn offers no deferred delivery on this endpoint, so the post
// is NOT withheld until the given time. The queue in internal/handlers is the
// real deferred path.
func (c *Client) PublishWithNote(ctx context.Context, accessToken, content string, scheduledAt time.Time) PublishResult {
	annotated := fmt.Sprintf("%s\n\n(Scheduled for: %s)", content, scheduledAt.Format("1/2/2006, 3:04:05 PM"))
	c.logf("[LinkedIn] posting content with scheduled time note scheduledAt=%s", scheduledAt.Format(time.RFC3339))
	authorURN, err := c.ResolveAuthorURN(ctx, accessToken)
	if err != nil {
		return PublishResult{Success: false, Error: err.Error(), ErrorKind: ErrKindIdentity}
	}
	return c.submit(ctx, accessToken, authorURN, annotated, "NONE", nil)
}

func (c *Client) submit(ctx context.Context, accessToken, authorURN, content, mediaCategory string, mediaURLs []string) PublishResult {
	payload, err := json.Marshal(ugcEnvelope(authorURN, content, mediaCategory, mediaURLs))
	if err != nil {
		return PublishResult{Success: false, Error: err.Error(), ErrorKind: ErrKindTransport}
	}
	if err := c.wait(ctx); err != nil {
		return PublishResult{Success: false, Error: err.Error(), ErrorKind: ErrKindTransport}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase()+"/v2/ugcPosts", bytes.NewReader(payload))
	if err != nil {
		return PublishResult{Success: false, Error: err.Error(), ErrorKind: ErrKindTransport}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return PublishResult{Success: false, Error: err.Error(), ErrorKind: ErrKindTransport}
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var pe providerError
		if err := json.Unmarshal(body, &pe); err == nil && pe.Message != "" {
			c.logf("[LinkedIn] publish_failed status=%d serviceErrorCode=%v msg=%s", res.StatusCode, pe.ServiceErrorCode, pe.Message)
			return PublishResult{Success: false, Error: pe.Message, ErrorKind: ErrKindProvider}
		}
		c.logf("[LinkedIn] publish_failed status=%d body=%s", res.StatusCode, truncate(string(body), 600))
		return PublishResult{Success: false, Error: "Failed to post to LinkedIn", ErrorKind: ErrKindProvider}
	}

	// Tolerate responses that omit the optional fields; only id matters.
	var pr PostResponse
	if err := json.Unmarshal(body, &pr); err != nil || pr.ID == "" {
		var loose struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &loose)
		pr = PostResponse{ID: loose.ID}
	}
	c.logf("[LinkedIn] published postId=%s author=%s", pr.ID, authorURN)
	return PublishResult{Success: true, Data: &pr}
}
