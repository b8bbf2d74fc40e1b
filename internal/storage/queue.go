package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
	"github.com/maelkann/cliograph/internal/queue"
)

// Enqueue adds a video to the processing queue as pending. Enqueueing a
// video that already has a queue entry is a no-op; the existing entry and
// its state are preserved.
func (db *DB) Enqueue(ctx context.Context, videoID string, priority int) (*domain.QueueEntry, error) {
	if videoID == "" {
		return nil, apperrors.Validationf("video_id", "must not be empty")
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO processing_queue (id, video_id, status, priority)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (video_id) DO NOTHING
	`, toUUID(newID()), toUUID(videoID), string(domain.QueuePending), priority)
	if err != nil {
		return nil, fmt.Errorf("enqueue video: %w", mapPgError(err))
	}

	return db.GetQueueEntry(ctx, videoID)
}

// GetQueueEntry loads a video's queue entry.
func (db *DB) GetQueueEntry(ctx context.Context, videoID string) (*domain.QueueEntry, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, video_id, status, priority, failure_reason, claim_count, created_at, started_at, completed_at
		FROM processing_queue
		WHERE video_id = $1
	`, toUUID(videoID))

	return scanQueueEntry(row)
}

// ListQueue returns entries in one status, highest priority first, oldest
// first within a priority. An empty status lists pending work.
func (db *DB) ListQueue(ctx context.Context, status domain.QueueStatus, limit int) ([]domain.QueueEntry, error) {
	status = status.OrDefault()
	if !status.Valid() {
		return nil, apperrors.Validationf("status", "unknown queue status %q", status)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, status, priority, failure_reason, claim_count, created_at, started_at, completed_at
		FROM processing_queue
		WHERE status = $1
		ORDER BY priority DESC, created_at
		LIMIT $2
	`, string(status), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query queue: %w", err)
	}
	defer rows.Close()

	var entries []domain.QueueEntry

	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue rows: %w", err)
	}

	return entries, nil
}

// StartNext claims the highest-priority pending entry and moves it to
// in_progress. Returns nil, nil when the queue has no pending work.
func (db *DB) StartNext(ctx context.Context) (*domain.QueueEntry, error) {
	var videoID pgtype.UUID

	err := db.Pool.QueryRow(ctx, `
		WITH picked AS (
			SELECT id
			FROM processing_queue
			WHERE status = $1
			ORDER BY priority DESC, created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE processing_queue pq
		SET status = $2,
			started_at = NOW()
		FROM picked
		WHERE pq.id = picked.id
		RETURNING pq.video_id
	`, string(domain.QueuePending), string(domain.QueueInProgress)).Scan(&videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // nil,nil indicates no pending work available
		}

		return nil, fmt.Errorf("start next queue entry: %w", err)
	}

	return db.GetQueueEntry(ctx, fromUUID(videoID))
}

// StartProcessing moves a specific video's entry from pending to
// in_progress.
func (db *DB) StartProcessing(ctx context.Context, videoID string) (*domain.QueueEntry, error) {
	return db.transition(ctx, videoID, domain.QueuePending, domain.QueueInProgress, `
		UPDATE processing_queue
		SET status = $1,
			started_at = NOW()
		WHERE video_id = $2
		  AND status = $3
		RETURNING video_id
	`, string(domain.QueueInProgress), toUUID(videoID), string(domain.QueuePending))
}

// CompleteProcessing moves an in_progress entry to completed, recording how
// many claims the run produced.
func (db *DB) CompleteProcessing(ctx context.Context, videoID string, claimCount int) (*domain.QueueEntry, error) {
	if claimCount < 0 {
		return nil, apperrors.Validationf("claim_count", "must not be negative")
	}

	return db.transition(ctx, videoID, domain.QueueInProgress, domain.QueueCompleted, `
		UPDATE processing_queue
		SET status = $1,
			claim_count = $2,
			failure_reason = NULL,
			completed_at = NOW()
		WHERE video_id = $3
		  AND status = $4
		RETURNING video_id
	`, string(domain.QueueCompleted), claimCount, toUUID(videoID), string(domain.QueueInProgress))
}

// FailProcessing moves an in_progress entry to failed with a reason.
func (db *DB) FailProcessing(ctx context.Context, videoID, reason string) (*domain.QueueEntry, error) {
	if reason == "" {
		return nil, apperrors.Validationf("failure_reason", "must not be empty")
	}

	return db.transition(ctx, videoID, domain.QueueInProgress, domain.QueueFailed, `
		UPDATE processing_queue
		SET status = $1,
			failure_reason = $2,
			completed_at = NOW()
		WHERE video_id = $3
		  AND status = $4
		RETURNING video_id
	`, string(domain.QueueFailed), SanitizeUTF8(reason), toUUID(videoID), string(domain.QueueInProgress))
}

// RetryProcessing moves a failed entry back to pending, clearing the
// failure reason and run timestamps.
func (db *DB) RetryProcessing(ctx context.Context, videoID string) (*domain.QueueEntry, error) {
	return db.transition(ctx, videoID, domain.QueueFailed, domain.QueuePending, `
		UPDATE processing_queue
		SET status = $1,
			failure_reason = NULL,
			started_at = NULL,
			completed_at = NULL
		WHERE video_id = $2
		  AND status = $3
		RETURNING video_id
	`, string(domain.QueuePending), toUUID(videoID), string(domain.QueueFailed))
}

// QueueStats returns entry counts per status, with zero counts filled in.
func (db *DB) QueueStats(ctx context.Context) (map[domain.QueueStatus]int, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT status, COUNT(*)::int
		FROM processing_queue
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("query queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[domain.QueueStatus]int, len(domain.QueueStatuses))
	for _, status := range domain.QueueStatuses {
		stats[status] = 0
	}

	for rows.Next() {
		var (
			status string
			count  int
		)

		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan queue stat row: %w", err)
		}

		stats[domain.QueueStatus(status)] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue stat rows: %w", err)
	}

	return stats, nil
}

// transition runs a conditional status update. The WHERE clause guards the
// expected state, so an illegal transition affects zero rows; the entry is
// then re-read to distinguish a missing entry from a wrong-state one.
func (db *DB) transition(ctx context.Context, videoID string, from, to domain.QueueStatus, sql string, args ...interface{}) (*domain.QueueEntry, error) {
	var returned pgtype.UUID

	err := db.Pool.QueryRow(ctx, sql, args...).Scan(&returned)
	if err == nil {
		return db.GetQueueEntry(ctx, videoID)
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transition queue entry to %s: %w", to, err)
	}

	entry, getErr := db.GetQueueEntry(ctx, videoID)
	if getErr != nil {
		return nil, getErr
	}

	if err := queue.Transition(entry.Status, to); err != nil {
		return nil, fmt.Errorf("queue entry for video %s: %w", videoID, err)
	}

	return nil, fmt.Errorf("queue entry for video %s is %s, want %s: %w",
		videoID, entry.Status, from, apperrors.ErrInvalidTransition)
}

func scanQueueEntry(row pgx.Row) (*domain.QueueEntry, error) {
	var (
		id            pgtype.UUID
		videoID       pgtype.UUID
		status        string
		failureReason pgtype.Text
		startedAt     pgtype.Timestamptz
		completedAt   pgtype.Timestamptz
	)

	entry := domain.QueueEntry{}

	err := row.Scan(&id, &videoID, &status, &entry.Priority, &failureReason,
		&entry.ClaimCount, &entry.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("queue entry: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan queue entry row: %w", err)
	}

	entry.ID = fromUUID(id)
	entry.VideoID = fromUUID(videoID)
	entry.Status = domain.QueueStatus(status)
	entry.FailureReason = failureReason.String
	entry.StartedAt = fromTimestamptz(startedAt)
	entry.CompletedAt = fromTimestamptz(completedAt)

	return &entry, nil
}
