package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
)

// processDueScheduledPostsOnce claims due queue rows and publishes them.
//
// Claiming is done by setting ScheduledPosts.claim_id so multiple app
// instances don't publish the same post twice. The queued content goes out
// as-is; no scheduled-time note is appended here.
func (h *Handler) processDueScheduledPostsOnce(ctx context.Context, limit int) (int, error) {
	if h == nil || h.db == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = 25
	}

	type cand struct {
		id           string
		scheduledFor time.Time
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, scheduled_for
		  FROM public."ScheduledPosts"
		 WHERE status = 'queued'
		   AND published_at IS NULL
		   AND scheduled_for <= NOW()
		   AND claim_id IS NULL
		 ORDER BY scheduled_for ASC
		 LIMIT $1
	`, limit)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	cands := make([]cand, 0)
	for rows.Next() {
		var c cand
		if err := rows.Scan(&c.id, &c.scheduledFor); err != nil {
			return 0, err
		}
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(cands) == 0 {
		return 0, nil
	}

	published := 0
	for _, c := range cands {
		claimID := fmt.Sprintf("claim_%s", randHex(12))

		log.Printf("[ScheduledPosts] candidate id=%s scheduledFor=%s",
			c.id, c.scheduledFor.UTC().Format(time.RFC3339))

		// Try to claim atomically (prevents multiple app instances from publishing the same post).
		res, err := h.db.ExecContext(ctx, `
			UPDATE public."ScheduledPosts"
			   SET claim_id = $2,
			       status = 'claimed',
			       last_error = NULL,
			       updated_at = NOW()
			 WHERE id = $1
			   AND status = 'queued'
			   AND published_at IS NULL
			   AND scheduled_for <= NOW()
			   AND claim_id IS NULL
		`, c.id, claimID)
		if err != nil {
			log.Printf("[ScheduledPosts] claim_failed id=%s err=%v", c.id, err)
			continue
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			log.Printf("[ScheduledPosts] claim_skipped id=%s reason=not_due_or_already_claimed", c.id)
			continue
		}

		// Load the publish fields only after we claim.
		var content sql.NullString
		var accessToken sql.NullString
		var mediaCategory sql.NullString
		var mediaURLs []string
		if err := h.db.QueryRowContext(ctx, `
			SELECT content, access_token, media_category, COALESCE(media_urls, ARRAY[]::text[])
			  FROM public."ScheduledPosts"
			 WHERE id = $1
			   AND claim_id = $2
		`, c.id, claimID).Scan(&content, &accessToken, &mediaCategory, pq.Array(&mediaURLs)); err != nil {
			h.markScheduledFailed(ctx, c.id, claimID, "load_failed")
			log.Printf("[ScheduledPosts] load_failed id=%s claimId=%s err=%v", c.id, claimID, err)
			continue
		}

		body := strings.TrimSpace(content.String)
		if body == "" {
			h.markScheduledFailed(ctx, c.id, claimID, "empty_content")
			log.Printf("[ScheduledPosts] skipped id=%s claimId=%s reason=empty_content", c.id, claimID)
			continue
		}
		if strings.TrimSpace(accessToken.String) == "" {
			h.markScheduledFailed(ctx, c.id, claimID, "missing_access_token")
			log.Printf("[ScheduledPosts] skipped id=%s claimId=%s reason=missing_access_token", c.id, claimID)
			continue
		}

		result := h.pub.Publish(ctx, accessToken.String, body, mediaCategory.String, mediaURLs)
		if !result.Success {
			h.markScheduledFailed(ctx, c.id, claimID, truncate(result.Error, 300))
			log.Printf("[ScheduledPosts] publish_failed id=%s claimId=%s kind=%s err=%s",
				c.id, claimID, result.ErrorKind, truncate(result.Error, 300))
			continue
		}

		var postID string
		if result.Data != nil {
			postID = result.Data.ID
		}
		if _, err := h.db.ExecContext(ctx, `
			UPDATE public."ScheduledPosts"
			   SET status = 'published',
			       post_id = $3,
			       published_at = NOW(),
			       updated_at = NOW()
			 WHERE id = $1
			   AND claim_id = $2
		`, c.id, claimID, postID); err != nil {
			log.Printf("[ScheduledPosts] mark_published_failed id=%s claimId=%s err=%v", c.id, claimID, err)
			continue
		}

		published++
		log.Printf("[ScheduledPosts] published id=%s claimId=%s postId=%s", c.id, claimID, postID)
	}

	return published, nil
}

func (h *Handler) markScheduledFailed(ctx context.Context, id, claimID, reason string) {
	_, _ = h.db.ExecContext(ctx, `
		UPDATE public."ScheduledPosts"
		   SET status = 'failed',
		       last_error = $3,
		       updated_at = NOW()
		 WHERE id = $1
		   AND claim_id = $2
	`, id, claimID, reason)
}

// StartScheduledPostsWorker runs a periodic poller that publishes queued posts
// whose scheduled time has passed. Enable it from `main` using an env gate.
func (h *Handler) StartScheduledPostsWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	log.Printf("[ScheduledPosts] worker started interval=%s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Log a lightweight summary periodically even when nothing is due.
	sweepCount := 0
	sweepStats := func() (due int, next sql.NullTime) {
		if h == nil || h.db == nil {
			return 0, sql.NullTime{}
		}
		_ = h.db.QueryRowContext(ctx, `
			SELECT COUNT(*)
			  FROM public."ScheduledPosts"
			 WHERE status = 'queued'
			   AND published_at IS NULL
			   AND scheduled_for <= NOW()
			   AND claim_id IS NULL
		`).Scan(&due)
		_ = h.db.QueryRowContext(ctx, `
			SELECT MIN(scheduled_for)
			  FROM public."ScheduledPosts"
			 WHERE status = 'queued'
			   AND published_at IS NULL
			   AND scheduled_for > NOW()
		`).Scan(&next)
		return due, next
	}

	run := func() {
		sweepCount++
		backoffs := []time.Duration{700 * time.Millisecond, 1500 * time.Millisecond, 3 * time.Second}
		var n int
		var err error
		for attempt := 0; attempt < len(backoffs)+1; attempt++ {
			// Timebox each sweep attempt.
			sweepCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
			n, err = h.processDueScheduledPostsOnce(sweepCtx, 25)
			cancel()
			if err == nil {
				break
			}
			if attempt < len(backoffs) {
				log.Printf("[ScheduledPosts] sweep error attempt=%d/%d err=%v", attempt+1, len(backoffs)+1, err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoffs[attempt]):
				}
				continue
			}
		}
		if err != nil {
			log.Printf("[ScheduledPosts] sweep error final err=%v", err)
			return
		}
		if n > 0 {
			log.Printf("[ScheduledPosts] published=%d", n)
			return
		}
		// Every ~10 sweeps, print a summary so "nothing happening" is diagnosable.
		if sweepCount%10 == 0 {
			due, next := sweepStats()
			nextStr := ""
			if next.Valid {
				nextStr = next.Time.UTC().Format(time.RFC3339)
			}
			log.Printf("[ScheduledPosts] sweep ok published=0 due=%d next=%s", due, nextStr)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			log.Printf("[ScheduledPosts] worker stopped err=%v", ctx.Err())
			return
		case <-ticker.C:
			run()
		}
	}
}
