package db

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// SaveLocation records a named point. Names are unique; re-saving an
// existing name updates the coordinates.
func (db *DB) SaveLocation(ctx context.Context, location *domain.Location) (int64, error) {
	if location.Name == "" {
		return 0, apperrors.Validationf("name", "must not be empty")
	}

	if math.IsNaN(location.Latitude) || location.Latitude < -90 || location.Latitude > 90 {
		return 0, apperrors.Validationf("latitude", "must be within [-90, 90]")
	}

	if math.IsNaN(location.Longitude) || location.Longitude < -180 || location.Longitude > 180 {
		return 0, apperrors.Validationf("longitude", "must be within [-180, 180]")
	}

	var id int64

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO locations (name, latitude, longitude)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude
		RETURNING id
	`, SanitizeUTF8(location.Name), location.Latitude, location.Longitude).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert location: %w", mapPgError(err))
	}

	return id, nil
}

// GetLocation loads a location by id.
func (db *DB) GetLocation(ctx context.Context, id int64) (*domain.Location, error) {
	location := domain.Location{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, latitude, longitude, created_at
		FROM locations
		WHERE id = $1
	`, id).Scan(&location.ID, &location.Name, &location.Latitude, &location.Longitude, &location.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location %d: %w", id, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("get location: %w", err)
	}

	return &location, nil
}

// SaveVisual records an on-screen visual.
func (db *DB) SaveVisual(ctx context.Context, visual *domain.Visual) (string, error) {
	if visual.VideoID == "" {
		return "", apperrors.Validationf("video_id", "must not be empty")
	}

	if visual.Description == "" {
		return "", apperrors.Validationf("description", "must not be empty")
	}

	if !visual.Type.Valid() {
		return "", apperrors.Validationf("visual_type", "unknown visual type %q", visual.Type)
	}

	if visual.Era != "" && !visual.Era.Valid() {
		return "", apperrors.Validationf("era", "unknown era %q", visual.Era)
	}

	if err := validateTimestamp(visual.Timestamp); err != nil {
		return "", err
	}

	id := visual.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO visuals (id, video_id, description, type, timestamp_sec, significance, location_id, era)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, toUUID(id), toUUID(visual.VideoID), SanitizeUTF8(visual.Description), string(visual.Type),
		visual.Timestamp, toText(visual.Significance), toInt8(visual.LocationID), toText(string(visual.Era)))
	if err != nil {
		return "", fmt.Errorf("insert visual: %w", mapPgError(err))
	}

	return id, nil
}

// ListVisualsByVideo returns a video's visuals in on-screen order.
func (db *DB) ListVisualsByVideo(ctx context.Context, videoID string) ([]domain.Visual, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, description, type, timestamp_sec, significance, location_id, era, created_at
		FROM visuals
		WHERE video_id = $1
		ORDER BY timestamp_sec
	`, toUUID(videoID))
	if err != nil {
		return nil, fmt.Errorf("query visuals: %w", err)
	}
	defer rows.Close()

	var visuals []domain.Visual

	for rows.Next() {
		var (
			id           pgtype.UUID
			vID          pgtype.UUID
			vtype        string
			significance pgtype.Text
			locationID   pgtype.Int8
			era          pgtype.Text
		)

		v := domain.Visual{}

		if err := rows.Scan(&id, &vID, &v.Description, &vtype, &v.Timestamp, &significance, &locationID, &era, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan visual row: %w", err)
		}

		v.ID = fromUUID(id)
		v.VideoID = fromUUID(vID)
		v.Type = domain.VisualType(vtype)
		v.Significance = significance.String
		v.LocationID = fromInt8(locationID)
		v.Era = domain.Era(era.String)

		visuals = append(visuals, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visual rows: %w", err)
	}

	return visuals, nil
}

// SaveEvidenceArtifact records a piece of cited physical or scholarly
// evidence.
func (db *DB) SaveEvidenceArtifact(ctx context.Context, artifact *domain.EvidenceArtifact) (string, error) {
	if artifact.VideoID == "" {
		return "", apperrors.Validationf("video_id", "must not be empty")
	}

	if artifact.Description == "" {
		return "", apperrors.Validationf("description", "must not be empty")
	}

	if !artifact.Type.Valid() {
		return "", apperrors.Validationf("evidence_type", "unknown evidence type %q", artifact.Type)
	}

	if artifact.Era != "" && !artifact.Era.Valid() {
		return "", apperrors.Validationf("era", "unknown era %q", artifact.Era)
	}

	if err := validateTimestamp(artifact.Timestamp); err != nil {
		return "", err
	}

	id := artifact.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO evidence_artifacts (id, video_id, description, type, timestamp_sec, location_id, era)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, toUUID(id), toUUID(artifact.VideoID), SanitizeUTF8(artifact.Description), string(artifact.Type),
		artifact.Timestamp, toInt8(artifact.LocationID), toText(string(artifact.Era)))
	if err != nil {
		return "", fmt.Errorf("insert evidence artifact: %w", mapPgError(err))
	}

	return id, nil
}

// ListEvidenceArtifacts returns artifacts of one evidence type, newest
// first. An empty type lists everything.
func (db *DB) ListEvidenceArtifacts(ctx context.Context, evidenceType domain.EvidenceType, limit int) ([]domain.EvidenceArtifact, error) {
	if evidenceType != "" && !evidenceType.Valid() {
		return nil, apperrors.Validationf("evidence_type", "unknown evidence type %q", evidenceType)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, description, type, timestamp_sec, location_id, era, created_at
		FROM evidence_artifacts
		WHERE ($1 = '' OR type = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, string(evidenceType), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query evidence artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.EvidenceArtifact

	for rows.Next() {
		var (
			id         pgtype.UUID
			videoID    pgtype.UUID
			etype      string
			locationID pgtype.Int8
			era        pgtype.Text
		)

		a := domain.EvidenceArtifact{}

		if err := rows.Scan(&id, &videoID, &a.Description, &etype, &a.Timestamp, &locationID, &era, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evidence artifact row: %w", err)
		}

		a.ID = fromUUID(id)
		a.VideoID = fromUUID(videoID)
		a.Type = domain.EvidenceType(etype)
		a.LocationID = fromInt8(locationID)
		a.Era = domain.Era(era.String)

		artifacts = append(artifacts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence artifact rows: %w", err)
	}

	return artifacts, nil
}

// SaveQuote records a notable quotation from a video.
func (db *DB) SaveQuote(ctx context.Context, quote *domain.Quote) (string, error) {
	if quote.VideoID == "" {
		return "", apperrors.Validationf("video_id", "must not be empty")
	}

	if quote.Text == "" {
		return "", apperrors.Validationf("text", "must not be empty")
	}

	if err := validateTimestamp(quote.Timestamp); err != nil {
		return "", err
	}

	id := quote.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO quotes (id, video_id, text, speaker, timestamp_sec, context)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, toUUID(id), toUUID(quote.VideoID), SanitizeUTF8(quote.Text), toText(quote.Speaker),
		quote.Timestamp, toText(quote.Context))
	if err != nil {
		return "", fmt.Errorf("insert quote: %w", mapPgError(err))
	}

	return id, nil
}

// ListQuotesByVideo returns a video's quotes in transcript order.
func (db *DB) ListQuotesByVideo(ctx context.Context, videoID string) ([]domain.Quote, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, text, speaker, timestamp_sec, context, created_at
		FROM quotes
		WHERE video_id = $1
		ORDER BY timestamp_sec
	`, toUUID(videoID))
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []domain.Quote

	for rows.Next() {
		var (
			id           pgtype.UUID
			vID          pgtype.UUID
			speaker      pgtype.Text
			quoteContext pgtype.Text
		)

		q := domain.Quote{}

		if err := rows.Scan(&id, &vID, &q.Text, &speaker, &q.Timestamp, &quoteContext, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quote row: %w", err)
		}

		q.ID = fromUUID(id)
		q.VideoID = fromUUID(vID)
		q.Speaker = speaker.String
		q.Context = quoteContext.String

		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote rows: %w", err)
	}

	return quotes, nil
}
