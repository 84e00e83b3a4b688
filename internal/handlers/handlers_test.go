package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/models"
)

// fakeGenerator records the last call and returns scripted values.
type fakeGenerator struct {
	lastTopic     string
	lastPost      string
	lastMaxLength int
	lastN         int
	lastEmotion   string
	lastAudience  string

	err error

	profile models.StyleProfile
}

func (f *fakeGenerator) AnalyzeStyle(ctx context.Context, content string) (models.StyleProfile, error) {
	f.lastPost = content
	return f.profile, f.err
}

func (f *fakeGenerator) GeneratePost(ctx context.Context, topic string, style models.StyleProfile) (string, error) {
	f.lastTopic = topic
	return "generated about " + topic, f.err
}

func (f *fakeGenerator) GenerateShortPost(ctx context.Context, topic string, style models.StyleProfile, maxLength int) (string, error) {
	f.lastTopic = topic
	f.lastMaxLength = maxLength
	return "short", f.err
}

func (f *fakeGenerator) GenerateVariations(ctx context.Context, topic string, style models.StyleProfile, n int) ([]string, error) {
	f.lastTopic = topic
	f.lastN = n
	out := make([]string, n)
	for i := range out {
		out[i] = "variation"
	}
	return out, f.err
}

func (f *fakeGenerator) RewriteDynamic(ctx context.Context, post, instructions string, style models.StyleProfile) (string, error) {
	f.lastPost = post
	return "rewritten", f.err
}

func (f *fakeGenerator) RewriteEmotional(ctx context.Context, post, emotion string, style models.StyleProfile) (string, error) {
	f.lastPost = post
	f.lastEmotion = emotion
	return "emotional", f.err
}

func (f *fakeGenerator) AnalyzeFeedback(ctx context.Context, post string, targetStyle models.StyleProfile) (models.StyleFeedback, error) {
	f.lastPost = post
	return models.StyleFeedback{Score: 8, Feedback: "close match"}, f.err
}

func (f *fakeGenerator) AnalyzeVirality(ctx context.Context, post string) (models.ViralityAssessment, error) {
	f.lastPost = post
	return models.ViralityAssessment{Score: 7}, f.err
}

func (f *fakeGenerator) Optimize(ctx context.Context, post, targetAudience string) (models.OptimizationBundle, error) {
	f.lastPost = post
	f.lastAudience = targetAudience
	return models.OptimizationBundle{EngagementOptimization: "ask a question"}, f.err
}

func (f *fakeGenerator) RewriteSuggestions(ctx context.Context, post string) (models.RewriteSuggestions, error) {
	f.lastPost = post
	return models.RewriteSuggestions{}, f.err
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	h(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v body=%q", err, rr.Body.String())
	}
	return body.Error
}

func TestAnalyzeStyle_Validation(t *testing.T) {
	h := New(nil, &fakeGenerator{}, nil, nil)

	t.Run("invalid json", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString("{"))
		h.AnalyzeStyle(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rr.Code)
		}
	})

	t.Run("missing content", func(t *testing.T) {
		rr := postJSON(t, h.AnalyzeStyle, "/api/analyze", map[string]string{"content": "   "})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d body=%q", rr.Code, rr.Body.String())
		}
		if got := errorMessage(t, rr); got != "Content is required" {
			t.Fatalf("unexpected error message %q", got)
		}
	})
}

func TestAnalyzeStyle_Success(t *testing.T) {
	gen := &fakeGenerator{profile: models.StyleProfile{Tone: "witty"}}
	h := New(nil, gen, nil, nil)

	rr := postJSON(t, h.AnalyzeStyle, "/api/analyze", map[string]string{"content": "post one"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	var profile models.StyleProfile
	if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Tone != "witty" {
		t.Fatalf("expected analyzed tone, got %q", profile.Tone)
	}
}

func TestGeneratePost(t *testing.T) {
	t.Run("missing topic", func(t *testing.T) {
		h := New(nil, &fakeGenerator{}, nil, nil)
		rr := postJSON(t, h.GeneratePost, "/api/generate", map[string]string{})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rr.Code)
		}
		if got := errorMessage(t, rr); got != "Topic is required" {
			t.Fatalf("unexpected error message %q", got)
		}
	})

	t.Run("success includes counts", func(t *testing.T) {
		h := New(nil, &fakeGenerator{}, nil, nil)
		rr := postJSON(t, h.GeneratePost, "/api/generate", map[string]string{"topic": "remote work"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
		}
		var gp models.GeneratedPost
		if err := json.Unmarshal(rr.Body.Bytes(), &gp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if gp.Post != "generated about remote work" {
			t.Fatalf("unexpected post %q", gp.Post)
		}
		if gp.CharCount != len(gp.Post) {
			t.Fatalf("charCount=%d want %d", gp.CharCount, len(gp.Post))
		}
		if gp.WordCount != 4 {
			t.Fatalf("wordCount=%d want 4", gp.WordCount)
		}
	})

	t.Run("generator error", func(t *testing.T) {
		h := New(nil, &fakeGenerator{err: errors.New("model unavailable")}, nil, nil)
		rr := postJSON(t, h.GeneratePost, "/api/generate", map[string]string{"topic": "x"})
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500 got %d", rr.Code)
		}
		if got := errorMessage(t, rr); got != "model unavailable" {
			t.Fatalf("unexpected error message %q", got)
		}
	})
}

func TestGenerateShortPost_DefaultMaxLength(t *testing.T) {
	gen := &fakeGenerator{}
	h := New(nil, gen, nil, nil)

	rr := postJSON(t, h.GenerateShortPost, "/api/short-post", map[string]any{"topic": "hiring"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	if gen.lastMaxLength != 280 {
		t.Fatalf("maxLength=%d want default 280", gen.lastMaxLength)
	}

	rr = postJSON(t, h.GenerateShortPost, "/api/short-post", map[string]any{"topic": "hiring", "maxLength": 150})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if gen.lastMaxLength != 150 {
		t.Fatalf("maxLength=%d want 150", gen.lastMaxLength)
	}
}

func TestGenerateVariations_DefaultCount(t *testing.T) {
	gen := &fakeGenerator{}
	h := New(nil, gen, nil, nil)

	rr := postJSON(t, h.GenerateVariations, "/api/variations", map[string]any{"topic": "ai"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	if gen.lastN != 3 {
		t.Fatalf("variations=%d want default 3", gen.lastN)
	}
	var body struct {
		Posts []string `json:"posts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Posts) != 3 {
		t.Fatalf("len(posts)=%d want 3", len(body.Posts))
	}
}

func TestRewritePost_Validation(t *testing.T) {
	h := New(nil, &fakeGenerator{}, nil, nil)

	rr := postJSON(t, h.RewritePost, "/api/rewrite", map[string]string{"instructions": "shorter"})
	if got := errorMessage(t, rr); got != "Post content is required" {
		t.Fatalf("unexpected error message %q", got)
	}

	rr = postJSON(t, h.RewritePost, "/api/rewrite", map[string]string{"post": "hello"})
	if got := errorMessage(t, rr); got != "Rewrite instructions are required" {
		t.Fatalf("unexpected error message %q", got)
	}

	rr = postJSON(t, h.RewritePost, "/api/rewrite", map[string]string{"post": "hello", "instructions": "shorter"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	var body struct {
		RewrittenPost string `json:"rewrittenPost"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RewrittenPost != "rewritten" {
		t.Fatalf("unexpected rewrittenPost %q", body.RewrittenPost)
	}
}

func TestRewriteEmotional_PassesStyle(t *testing.T) {
	gen := &fakeGenerator{}
	h := New(nil, gen, nil, nil)

	rr := postJSON(t, h.RewriteEmotional, "/api/rewrite-emotional", map[string]string{"post": "hello"})
	if got := errorMessage(t, rr); got != "Emotional style is required" {
		t.Fatalf("unexpected error message %q", got)
	}

	rr = postJSON(t, h.RewriteEmotional, "/api/rewrite-emotional", map[string]string{
		"post":           "hello",
		"emotionalStyle": "inspirational",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	if gen.lastEmotion != "inspirational" {
		t.Fatalf("emotion=%q want inspirational", gen.lastEmotion)
	}
}

func TestFeedback_RequiresOriginalStyle(t *testing.T) {
	h := New(nil, &fakeGenerator{}, nil, nil)

	rr := postJSON(t, h.Feedback, "/api/feedback", map[string]any{"post": "hello"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	if got := errorMessage(t, rr); got != "Original style is required" {
		t.Fatalf("unexpected error message %q", got)
	}

	rr = postJSON(t, h.Feedback, "/api/feedback", map[string]any{
		"post":          "hello",
		"originalStyle": models.StyleProfile{Tone: "direct"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	var fb models.StyleFeedback
	if err := json.Unmarshal(rr.Body.Bytes(), &fb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fb.Score != 8 {
		t.Fatalf("score=%d want 8", fb.Score)
	}
}

func TestOptimize_ForwardsAudience(t *testing.T) {
	gen := &fakeGenerator{}
	h := New(nil, gen, nil, nil)

	rr := postJSON(t, h.Optimize, "/api/optimize", map[string]string{
		"post":           "hello",
		"targetAudience": "founders",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	if gen.lastAudience != "founders" {
		t.Fatalf("audience=%q want founders", gen.lastAudience)
	}
	var bundle models.OptimizationBundle
	if err := json.Unmarshal(rr.Body.Bytes(), &bundle); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bundle.EngagementOptimization != "ask a question" {
		t.Fatalf("bundle not round-tripped: %+v", bundle)
	}
}

func TestVirality_Validation(t *testing.T) {
	h := New(nil, &fakeGenerator{}, nil, nil)

	rr := postJSON(t, h.Virality, "/api/virality", map[string]string{})
	if got := errorMessage(t, rr); got != "Post content is required" {
		t.Fatalf("unexpected error message %q", got)
	}

	rr = postJSON(t, h.Virality, "/api/virality", map[string]string{"post": "hello"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
}

func TestHealth(t *testing.T) {
	h := New(nil, nil, nil, nil)
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}
