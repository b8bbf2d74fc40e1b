package db

import (
	"context"
	"fmt"
	"time"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// GraphStats summarizes the stored graph for the stats operation and the
// metrics gauges.
type GraphStats struct {
	Videos        int
	Claims        int
	Links         int
	MOCs          int
	OpenQuestions int
	Patterns      int
	// Frameworks counts annotation records across all five framework tables.
	Frameworks int
	Queue      map[domain.QueueStatus]int
}

// GetGraphStats counts the major entity tables in one round trip each.
func (db *DB) GetGraphStats(ctx context.Context) (*GraphStats, error) {
	stats := GraphStats{}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*)::int FROM videos),
			(SELECT COUNT(*)::int FROM claims),
			(SELECT COUNT(*)::int FROM links),
			(SELECT COUNT(*)::int FROM mocs),
			(SELECT COUNT(*)::int FROM questions WHERE status = $1),
			(SELECT COUNT(*)::int FROM patterns),
			(SELECT COUNT(*)::int FROM cyclical_patterns)
				+ (SELECT COUNT(*)::int FROM causal_chains)
				+ (SELECT COUNT(*)::int FROM transmissions)
				+ (SELECT COUNT(*)::int FROM system_positions)
				+ (SELECT COUNT(*)::int FROM system_flows)
				+ (SELECT COUNT(*)::int FROM timescale_tags)
	`, string(domain.QuestionOpen)).Scan(
		&stats.Videos, &stats.Claims, &stats.Links, &stats.MOCs,
		&stats.OpenQuestions, &stats.Patterns, &stats.Frameworks)
	if err != nil {
		return nil, fmt.Errorf("query graph stats: %w", err)
	}

	queue, err := db.QueueStats(ctx)
	if err != nil {
		return nil, err
	}

	stats.Queue = queue

	return &stats, nil
}

// ListStaleClaims returns claims whose last_accessed is older than the
// cutoff, least recently accessed first. This is a health scan: it reads
// with a plain SELECT and must never touch last_accessed itself.
func (db *DB) ListStaleClaims(ctx context.Context, cutoff time.Time, limit int) ([]domain.Claim, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
		FROM claims
		WHERE last_accessed < $1
		ORDER BY last_accessed
		LIMIT $2
	`, cutoff, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query stale claims: %w", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// PickRandomClaim returns a uniformly random claim without touching
// last_accessed. Returns nil, nil on an empty store.
func (db *DB) PickRandomClaim(ctx context.Context) (*domain.Claim, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
		FROM claims
		ORDER BY random()
		LIMIT 1
	`)

	claim, err := scanClaim(row)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil //nolint:nilnil // nil,nil indicates an empty store
		}

		return nil, err
	}

	return claim, nil
}

// PickRandomOpenQuestion returns a uniformly random open question.
// Returns nil, nil when every question is answered.
func (db *DB) PickRandomOpenQuestion(ctx context.Context) (*domain.Question, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, text, status, notes, created_at, updated_at
		FROM questions
		WHERE status = $1
		ORDER BY random()
		LIMIT 1
	`, string(domain.QuestionOpen))

	question, err := scanQuestion(row)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil //nolint:nilnil // nil,nil indicates no open questions
		}

		return nil, err
	}

	return question, nil
}
