package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// SaveClaim persists a new claim against an existing video. The claim's
// video binding is permanent; there is no update path for video_id.
func (db *DB) SaveClaim(ctx context.Context, claim *domain.Claim) (string, error) {
	if claim.VideoID == "" {
		return "", apperrors.Validationf("video_id", "must not be empty")
	}

	if claim.Text == "" {
		return "", apperrors.Validationf("text", "must not be empty")
	}

	if claim.SourceQuote == "" {
		return "", apperrors.Validationf("source_quote", "must not be empty")
	}

	if !claim.Category.Valid() {
		return "", apperrors.Validationf("category", "unknown claim category %q", claim.Category)
	}

	if !claim.Confidence.Valid() {
		return "", apperrors.Validationf("confidence", "unknown confidence %q", claim.Confidence)
	}

	if err := validateTimestamp(claim.Timestamp); err != nil {
		return "", err
	}

	id := claim.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO claims (id, video_id, text, source_quote, category, confidence, timestamp_sec)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, toUUID(id), toUUID(claim.VideoID), SanitizeUTF8(claim.Text), toText(claim.SourceQuote),
		string(claim.Category), string(claim.Confidence), claim.Timestamp)
	if err != nil {
		return "", fmt.Errorf("insert claim: %w", mapPgError(err))
	}

	return id, nil
}

// GetClaim loads a claim and touches its last_accessed in the same statement.
// Health scans read claims without this touch; see ListStaleClaims.
func (db *DB) GetClaim(ctx context.Context, id string) (*domain.Claim, error) {
	row := db.Pool.QueryRow(ctx, `
		UPDATE claims
		SET last_accessed = NOW()
		WHERE id = $1
		RETURNING id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
	`, toUUID(id))

	return scanClaim(row)
}

// ListClaimsByVideo returns a video's claims in transcript order, touching
// each claim's last_accessed.
func (db *DB) ListClaimsByVideo(ctx context.Context, videoID string) ([]domain.Claim, error) {
	rows, err := db.Pool.Query(ctx, `
		UPDATE claims
		SET last_accessed = NOW()
		WHERE video_id = $1
		RETURNING id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
	`, toUUID(videoID))
	if err != nil {
		return nil, fmt.Errorf("query claims by video: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, err
	}

	// UPDATE ... RETURNING has no stable order.
	sortClaimsByTimestamp(claims)

	return claims, nil
}

// ListClaimsByCategory returns claims of one category, newest first,
// touching each claim's last_accessed.
func (db *DB) ListClaimsByCategory(ctx context.Context, category domain.ClaimCategory, limit int) ([]domain.Claim, error) {
	if !category.Valid() {
		return nil, apperrors.Validationf("category", "unknown claim category %q", category)
	}

	rows, err := db.Pool.Query(ctx, `
		UPDATE claims
		SET last_accessed = NOW()
		WHERE id IN (
			SELECT id
			FROM claims
			WHERE category = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
		RETURNING id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
	`, string(category), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query claims by category: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, err
	}

	sortClaimsByCreatedDesc(claims)

	return claims, nil
}

// SearchClaims does a substring search over claim text and source quotes,
// touching matched claims. Full-text search goes through the indexer instead.
func (db *DB) SearchClaims(ctx context.Context, query string, limit int) ([]domain.Claim, error) {
	if query == "" {
		return nil, apperrors.Validationf("query", "must not be empty")
	}

	rows, err := db.Pool.Query(ctx, `
		UPDATE claims
		SET last_accessed = NOW()
		WHERE id IN (
			SELECT id
			FROM claims
			WHERE text ILIKE '%' || $1 || '%'
			   OR source_quote ILIKE '%' || $1 || '%'
			ORDER BY created_at DESC
			LIMIT $2
		)
		RETURNING id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
	`, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search claims: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, err
	}

	sortClaimsByCreatedDesc(claims)

	return claims, nil
}

// GetClaimsByIDs loads claims by id without touching last_accessed. Used by
// health scans to resolve orphan ids to records.
func (db *DB) GetClaimsByIDs(ctx context.Context, ids []string) ([]domain.Claim, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	uuids := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		uuids[i] = toUUID(id)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
		FROM claims
		WHERE id = ANY($1)
		ORDER BY created_at
	`, uuids)
	if err != nil {
		return nil, fmt.Errorf("query claims by ids: %w", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// ListAllClaims streams every claim without touching last_accessed. Used by
// the graph index rebuild and by health scans.
func (db *DB) ListAllClaims(ctx context.Context) ([]domain.Claim, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
		FROM claims
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query all claims: %w", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// CountClaims returns the total number of claims.
func (db *DB) CountClaims(ctx context.Context) (int, error) {
	var count int

	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM claims`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}

	return count, nil
}

func collectClaims(rows pgx.Rows) ([]domain.Claim, error) {
	var claims []domain.Claim

	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}

		claims = append(claims, *claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim rows: %w", err)
	}

	return claims, nil
}

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var (
		id          pgtype.UUID
		videoID     pgtype.UUID
		sourceQuote pgtype.Text
		category    string
		confidence  string
	)

	claim := domain.Claim{}

	err := row.Scan(&id, &videoID, &claim.Text, &sourceQuote, &category, &confidence,
		&claim.Timestamp, &claim.CreatedAt, &claim.LastAccessed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("claim: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan claim row: %w", err)
	}

	claim.ID = fromUUID(id)
	claim.VideoID = fromUUID(videoID)
	claim.SourceQuote = sourceQuote.String
	claim.Category = domain.ClaimCategory(category)
	claim.Confidence = domain.Confidence(confidence)

	return &claim, nil
}

func sortClaimsByTimestamp(claims []domain.Claim) {
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].Timestamp < claims[j].Timestamp
	})
}

func sortClaimsByCreatedDesc(claims []domain.Claim) {
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].CreatedAt.After(claims[j].CreatedAt)
	})
}
