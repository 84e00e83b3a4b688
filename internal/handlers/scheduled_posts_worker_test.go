package handlers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/linkedin"
	"github.com/lib/pq"
)

func TestProcessDueScheduledPostsOnce_PublishesAndMarks(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	pub := &fakePublisher{result: okResult()}
	h := New(db, nil, pub, nil)
	when := time.Now().UTC().Add(-1 * time.Minute)

	rows := sqlmock.NewRows([]string{"id", "scheduled_for"}).
		AddRow("sched_1", when)

	mock.ExpectQuery(`FROM public\."ScheduledPosts"\s+WHERE status = 'queued'`).
		WithArgs(25).
		WillReturnRows(rows)

	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET claim_id`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	details := sqlmock.NewRows([]string{"content", "access_token", "media_category", "media_urls"}).
		AddRow(sql.NullString{Valid: true, String: "hello queue"},
			sql.NullString{Valid: true, String: "tok"},
			sql.NullString{Valid: true, String: "NONE"},
			pq.StringArray{})
	mock.ExpectQuery(`SELECT content, access_token, media_category`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnRows(details)

	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET status = 'published'`).
		WithArgs("sched_1", sqlmock.AnyArg(), "urn:li:share:1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := h.processDueScheduledPostsOnce(context.Background(), 25)
	if err != nil {
		t.Fatalf("processDueScheduledPostsOnce err=%v", err)
	}
	if n != 1 {
		t.Fatalf("expected published=1 got %d", n)
	}
	if pub.lastToken != "tok" || pub.lastContent != "hello queue" {
		t.Fatalf("publisher call token=%q content=%q", pub.lastToken, pub.lastContent)
	}
	if pub.noteCalled {
		t.Fatal("queue dispatch must not append the scheduled-time note")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestProcessDueScheduledPostsOnce_PublishFailure_MarksFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	pub := &fakePublisher{result: linkedin.PublishResult{
		Success:   false,
		Error:     "Failed to post to LinkedIn",
		ErrorKind: linkedin.ErrKindProvider,
	}}
	h := New(db, nil, pub, nil)
	when := time.Now().UTC().Add(-1 * time.Minute)

	mock.ExpectQuery(`FROM public\."ScheduledPosts"\s+WHERE status = 'queued'`).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_for"}).AddRow("sched_1", when))

	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET claim_id`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT content, access_token, media_category`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"content", "access_token", "media_category", "media_urls"}).
			AddRow(sql.NullString{Valid: true, String: "hello"},
				sql.NullString{Valid: true, String: "tok"},
				sql.NullString{Valid: true, String: "NONE"},
				pq.StringArray{}))

	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET status = 'failed'`).
		WithArgs("sched_1", sqlmock.AnyArg(), "Failed to post to LinkedIn").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := h.processDueScheduledPostsOnce(context.Background(), 25)
	if err != nil {
		t.Fatalf("processDueScheduledPostsOnce err=%v", err)
	}
	if n != 0 {
		t.Fatalf("expected published=0 got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestProcessDueScheduledPostsOnce_MissingToken_MarksFailed_NoPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	pub := &fakePublisher{result: okResult()}
	h := New(db, nil, pub, nil)
	when := time.Now().UTC().Add(-1 * time.Minute)

	mock.ExpectQuery(`FROM public\."ScheduledPosts"\s+WHERE status = 'queued'`).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_for"}).AddRow("sched_1", when))

	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET claim_id`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT content, access_token, media_category`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"content", "access_token", "media_category", "media_urls"}).
			AddRow(sql.NullString{Valid: true, String: "hello"},
				sql.NullString{},
				sql.NullString{Valid: true, String: "NONE"},
				pq.StringArray{}))

	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET status = 'failed'`).
		WithArgs("sched_1", sqlmock.AnyArg(), "missing_access_token").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := h.processDueScheduledPostsOnce(context.Background(), 25)
	if err != nil {
		t.Fatalf("processDueScheduledPostsOnce err=%v", err)
	}
	if n != 0 {
		t.Fatalf("expected published=0 got %d", n)
	}
	if pub.lastToken != "" {
		t.Fatal("publisher must not be called without an access token")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestProcessDueScheduledPostsOnce_ClaimLost_Skips(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer func() { _ = db.Close() }()

	pub := &fakePublisher{result: okResult()}
	h := New(db, nil, pub, nil)
	when := time.Now().UTC().Add(-1 * time.Minute)

	mock.ExpectQuery(`FROM public\."ScheduledPosts"\s+WHERE status = 'queued'`).
		WithArgs(25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_for"}).AddRow("sched_1", when))

	// Another instance won the claim.
	mock.ExpectExec(`UPDATE public\."ScheduledPosts"\s+SET claim_id`).
		WithArgs("sched_1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := h.processDueScheduledPostsOnce(context.Background(), 25)
	if err != nil {
		t.Fatalf("processDueScheduledPostsOnce err=%v", err)
	}
	if n != 0 {
		t.Fatalf("expected published=0 got %d", n)
	}
	if pub.lastToken != "" {
		t.Fatal("publisher must not be called when the claim is lost")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestProcessDueScheduledPostsOnce_NilDB(t *testing.T) {
	h := New(nil, nil, &fakePublisher{}, nil)
	n, err := h.processDueScheduledPostsOnce(context.Background(), 25)
	if err != nil || n != 0 {
		t.Fatalf("expected no-op, got n=%d err=%v", n, err)
	}
}
