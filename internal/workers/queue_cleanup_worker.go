package workers

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// QueueCleanupWorker removes finished queue rows older than the configured retention period.
// Published and failed entries are kept around for inspection, then pruned.
type QueueCleanupWorker struct {
	DB              *sql.DB
	RetentionHours  int // How long to keep published/failed entries (default: 168 = 7 days)
	CheckIntervalMs int // How often to run cleanup (default: 3600000 = 1 hour)
}

// Start begins the queue cleanup worker loop.
func (w *QueueCleanupWorker) Start(ctx context.Context) {
	if w.RetentionHours <= 0 {
		w.RetentionHours = 168
	}
	if w.CheckIntervalMs <= 0 {
		w.CheckIntervalMs = 3600000 // 1 hour
	}

	ticker := time.NewTicker(time.Duration(w.CheckIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	log.Printf("[QueueCleanupWorker] started (retention=%dh, interval=%dms)", w.RetentionHours, w.CheckIntervalMs)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[QueueCleanupWorker] stopped")
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

// cleanup removes published and failed queue entries older than the retention period.
func (w *QueueCleanupWorker) cleanup(ctx context.Context) {
	cutoffTime := time.Now().Add(-time.Duration(w.RetentionHours) * time.Hour)

	result, err := w.DB.ExecContext(ctx, `
		DELETE FROM public."ScheduledPosts"
		WHERE status IN ('published', 'failed')
		AND updated_at < $1
	`, cutoffTime)

	if err != nil {
		log.Printf("[QueueCleanupWorker] error: %v", err)
		return
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		log.Printf("[QueueCleanupWorker] error getting rows affected: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("[QueueCleanupWorker] deleted %d finished queue entries", deleted)
	}
}
