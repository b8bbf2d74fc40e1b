package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// SavePattern records a detected cross-video pattern with its claim and
// video references. The pattern row and both reference sets commit
// together or not at all.
func (db *DB) SavePattern(ctx context.Context, pattern *domain.Pattern) (string, error) {
	if !pattern.Type.Valid() {
		return "", apperrors.Validationf("type", "unknown pattern type %q", pattern.Type)
	}

	if pattern.Description == "" {
		return "", apperrors.Validationf("description", "must not be empty")
	}

	if pattern.Confidence < 0 || pattern.Confidence > 1 {
		return "", apperrors.Validationf("confidence", "must be within [0, 1]")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // best-effort cleanup
	}()

	id := pattern.ID
	if id == "" {
		id = newID()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO patterns (id, type, description, confidence)
		VALUES ($1, $2, $3, $4)
	`, toUUID(id), string(pattern.Type), SanitizeUTF8(pattern.Description), pattern.Confidence)
	if err != nil {
		return "", fmt.Errorf("insert pattern: %w", mapPgError(err))
	}

	for _, claimID := range pattern.ClaimIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pattern_claims (pattern_id, claim_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, toUUID(id), toUUID(claimID)); err != nil {
			return "", fmt.Errorf("insert pattern claim: %w", mapPgError(err))
		}
	}

	for _, videoID := range pattern.VideoIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pattern_videos (pattern_id, video_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, toUUID(id), toUUID(videoID)); err != nil {
			return "", fmt.Errorf("insert pattern video: %w", mapPgError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	return id, nil
}

// GetPattern loads a pattern with its references.
func (db *DB) GetPattern(ctx context.Context, id string) (*domain.Pattern, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, type, description, confidence, detected_at
		FROM patterns
		WHERE id = $1
	`, toUUID(id))

	pattern, err := scanPattern(row)
	if err != nil {
		return nil, err
	}

	if err := db.loadPatternRefs(ctx, pattern); err != nil {
		return nil, err
	}

	return pattern, nil
}

// ListPatterns returns patterns of one type, newest first. An empty type
// lists everything.
func (db *DB) ListPatterns(ctx context.Context, patternType domain.PatternType, limit int) ([]domain.Pattern, error) {
	if patternType != "" && !patternType.Valid() {
		return nil, apperrors.Validationf("type", "unknown pattern type %q", patternType)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, type, description, confidence, detected_at
		FROM patterns
		WHERE ($1 = '' OR type = $1)
		ORDER BY detected_at DESC
		LIMIT $2
	`, string(patternType), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []domain.Pattern

	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}

		patterns = append(patterns, *pattern)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pattern rows: %w", err)
	}

	for i := range patterns {
		if err := db.loadPatternRefs(ctx, &patterns[i]); err != nil {
			return nil, err
		}
	}

	return patterns, nil
}

func (db *DB) loadPatternRefs(ctx context.Context, pattern *domain.Pattern) error {
	claimRows, err := db.Pool.Query(ctx, `
		SELECT claim_id
		FROM pattern_claims
		WHERE pattern_id = $1
	`, toUUID(pattern.ID))
	if err != nil {
		return fmt.Errorf("query pattern claims: %w", err)
	}
	defer claimRows.Close()

	for claimRows.Next() {
		var claimID pgtype.UUID

		if err := claimRows.Scan(&claimID); err != nil {
			return fmt.Errorf("scan pattern claim row: %w", err)
		}

		pattern.ClaimIDs = append(pattern.ClaimIDs, fromUUID(claimID))
	}

	if err := claimRows.Err(); err != nil {
		return fmt.Errorf("iterate pattern claim rows: %w", err)
	}

	videoRows, err := db.Pool.Query(ctx, `
		SELECT video_id
		FROM pattern_videos
		WHERE pattern_id = $1
	`, toUUID(pattern.ID))
	if err != nil {
		return fmt.Errorf("query pattern videos: %w", err)
	}
	defer videoRows.Close()

	for videoRows.Next() {
		var videoID pgtype.UUID

		if err := videoRows.Scan(&videoID); err != nil {
			return fmt.Errorf("scan pattern video row: %w", err)
		}

		pattern.VideoIDs = append(pattern.VideoIDs, fromUUID(videoID))
	}

	if err := videoRows.Err(); err != nil {
		return fmt.Errorf("iterate pattern video rows: %w", err)
	}

	return nil
}

func scanPattern(row pgx.Row) (*domain.Pattern, error) {
	var (
		id          pgtype.UUID
		patternType string
	)

	pattern := domain.Pattern{}

	if err := row.Scan(&id, &patternType, &pattern.Description, &pattern.Confidence, &pattern.DetectedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("pattern: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan pattern row: %w", err)
	}

	pattern.ID = fromUUID(id)
	pattern.Type = domain.PatternType(patternType)

	return &pattern, nil
}
