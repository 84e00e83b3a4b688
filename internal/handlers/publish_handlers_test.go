package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/linkedin"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/tokenstore"
)

// fakePublisher records the last call and returns a scripted result.
type fakePublisher struct {
	lastToken    string
	lastContent  string
	lastCategory string
	lastURLs     []string
	lastNoteAt   time.Time
	noteCalled   bool

	result linkedin.PublishResult
}

func (f *fakePublisher) Publish(ctx context.Context, accessToken, content, mediaCategory string, mediaURLs []string) linkedin.PublishResult {
	f.lastToken = accessToken
	f.lastContent = content
	f.lastCategory = mediaCategory
	f.lastURLs = mediaURLs
	return f.result
}

func (f *fakePublisher) PublishWithNote(ctx context.Context, accessToken, content string, scheduledAt time.Time) linkedin.PublishResult {
	f.lastToken = accessToken
	f.lastContent = content
	f.lastNoteAt = scheduledAt
	f.noteCalled = true
	return f.result
}

func okResult() linkedin.PublishResult {
	return linkedin.PublishResult{
		Success: true,
		Data:    &linkedin.PostResponse{ID: "urn:li:share:1"},
	}
}

func TestPublishPost(t *testing.T) {
	t.Run("missing content", func(t *testing.T) {
		h := New(nil, nil, &fakePublisher{}, nil)
		rr := postJSON(t, h.PublishPost, "/api/linkedin/post", map[string]string{"accessToken": "tok"})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rr.Code)
		}
		if got := errorMessage(t, rr); got != "Content is required" {
			t.Fatalf("unexpected error message %q", got)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		h := New(nil, nil, &fakePublisher{}, nil)
		rr := postJSON(t, h.PublishPost, "/api/linkedin/post", map[string]string{"content": "hello"})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rr.Code)
		}
		if got := errorMessage(t, rr); got != "LinkedIn access token is required" {
			t.Fatalf("unexpected error message %q", got)
		}
	})

	t.Run("success forwards media", func(t *testing.T) {
		pub := &fakePublisher{result: okResult()}
		h := New(nil, nil, pub, nil)
		rr := postJSON(t, h.PublishPost, "/api/linkedin/post", map[string]any{
			"content":       "hello",
			"accessToken":   "tok",
			"mediaCategory": "ARTICLE",
			"mediaUrls":     []string{"https://example.com/a"},
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
		}
		if pub.lastToken != "tok" || pub.lastCategory != "ARTICLE" || len(pub.lastURLs) != 1 {
			t.Fatalf("publisher call token=%q category=%q urls=%v", pub.lastToken, pub.lastCategory, pub.lastURLs)
		}
	})

	t.Run("falls back to stored token", func(t *testing.T) {
		dir := t.TempDir()
		path := dir + "/token.json"
		if err := tokenstore.NewFileSink(path).Save("file-tok", 24); err != nil {
			t.Fatalf("save token: %v", err)
		}

		pub := &fakePublisher{result: okResult()}
		h := New(nil, nil, pub, nil).WithTokenFile(path)
		rr := postJSON(t, h.PublishPost, "/api/linkedin/post", map[string]string{"content": "hello"})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
		}
		if pub.lastToken != "file-tok" {
			t.Fatalf("token=%q want file-tok", pub.lastToken)
		}
	})

	t.Run("publish failure is 500 with envelope", func(t *testing.T) {
		pub := &fakePublisher{result: linkedin.PublishResult{
			Success:   false,
			Error:     "Failed to post to LinkedIn",
			ErrorKind: linkedin.ErrKindProvider,
		}}
		h := New(nil, nil, pub, nil)
		rr := postJSON(t, h.PublishPost, "/api/linkedin/post", map[string]string{"content": "hello", "accessToken": "tok"})
		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500 got %d", rr.Code)
		}
		var res linkedin.PublishResult
		if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.Success || res.Error != "Failed to post to LinkedIn" {
			t.Fatalf("unexpected envelope %+v", res)
		}
	})
}

func TestSchedulePost(t *testing.T) {
	t.Run("bad scheduled time", func(t *testing.T) {
		h := New(nil, nil, &fakePublisher{}, nil)
		rr := postJSON(t, h.SchedulePost, "/api/linkedin/schedule", map[string]string{
			"content":       "hello",
			"accessToken":   "tok",
			"scheduledTime": "tomorrow-ish",
		})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", rr.Code)
		}
	})

	t.Run("publishes immediately with note", func(t *testing.T) {
		pub := &fakePublisher{result: okResult()}
		h := New(nil, nil, pub, nil)
		rr := postJSON(t, h.SchedulePost, "/api/linkedin/schedule", map[string]string{
			"content":       "hello",
			"accessToken":   "tok",
			"scheduledTime": "2030-01-01T15:04:05Z",
		})
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
		}
		if !pub.noteCalled {
			t.Fatal("expected PublishWithNote to be called")
		}
		if !pub.lastNoteAt.Equal(time.Date(2030, 1, 1, 15, 4, 5, 0, time.UTC)) {
			t.Fatalf("scheduledAt=%v", pub.lastNoteAt)
		}
		var body struct {
			Success bool   `json:"success"`
			Mode    string `json:"mode"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !body.Success || body.Mode != "note_appended" {
			t.Fatalf("unexpected body %+v", body)
		}
	})
}

func TestCreateScheduledPost(t *testing.T) {
	t.Run("no database", func(t *testing.T) {
		h := New(nil, nil, &fakePublisher{}, nil)
		rr := postJSON(t, h.CreateScheduledPost, "/api/linkedin/schedule/queue", map[string]string{
			"content":       "hello",
			"accessToken":   "tok",
			"scheduledTime": "2030-01-01T15:04:05Z",
		})
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 got %d", rr.Code)
		}
	})

	t.Run("rejects past time", func(t *testing.T) {
		db, _, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer func() { _ = db.Close() }()
		h := New(db, nil, &fakePublisher{}, nil)
		rr := postJSON(t, h.CreateScheduledPost, "/api/linkedin/schedule/queue", map[string]string{
			"content":       "hello",
			"accessToken":   "tok",
			"scheduledTime": "2001-01-01T15:04:05Z",
		})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d body=%q", rr.Code, rr.Body.String())
		}
	})

	t.Run("enqueues", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		defer func() { _ = db.Close() }()
		h := New(db, nil, &fakePublisher{}, nil)

		mock.ExpectExec(`INSERT INTO public\."ScheduledPosts"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rr := postJSON(t, h.CreateScheduledPost, "/api/linkedin/schedule/queue", map[string]string{
			"content":       "hello",
			"accessToken":   "tok",
			"scheduledTime": "2030-01-01T15:04:05Z",
		})
		if rr.Code != http.StatusAccepted {
			t.Fatalf("expected 202 got %d body=%q", rr.Code, rr.Body.String())
		}
		var body struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ID == "" || body.Status != "queued" {
			t.Fatalf("unexpected body %+v", body)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("expectations: %v", err)
		}
	})
}

func TestListScheduledPosts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()
	h := New(db, nil, &fakePublisher{}, nil)

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM public\."ScheduledPosts"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "content", "media_category", "media_urls",
			"scheduled_for", "status", "last_error", "post_id",
			"created_at", "updated_at", "published_at",
		}).AddRow("sched_1", "hello", "NONE", "{}", now.Add(time.Hour), "queued", nil, nil, now, now, nil))

	rr := httptest.NewRecorder()
	h.ListScheduledPosts(rr, httptest.NewRequest(http.MethodGet, "/api/linkedin/schedule/queue", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%q", rr.Code, rr.Body.String())
	}
	var body struct {
		Posts []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Posts) != 1 || body.Posts[0].ID != "sched_1" || body.Posts[0].Status != "queued" {
		t.Fatalf("unexpected posts %+v", body.Posts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
