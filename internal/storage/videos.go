package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// SaveVideo persists a fetched video together with its era and region tags.
// The external id is unique; fetching the same video twice is a conflict.
func (db *DB) SaveVideo(ctx context.Context, video *domain.Video) (string, error) {
	if video.ExternalID == "" {
		return "", apperrors.Validationf("external_id", "must not be empty")
	}

	if video.Title == "" {
		return "", apperrors.Validationf("title", "must not be empty")
	}

	for _, era := range video.Eras {
		if !era.Valid() {
			return "", apperrors.Validationf("era", "unknown era %q", era)
		}
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // rollback after commit returns error, this is best-effort cleanup
	}()

	id := video.ID
	if id == "" {
		id = newID()
	}

	fetchedAt := video.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO videos (id, external_id, url, title, channel, upload_date, description, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, toUUID(id), video.ExternalID, toText(video.URL), SanitizeUTF8(video.Title),
		toText(video.Channel), toTimestamptz(video.UploadDate), toText(video.Description), fetchedAt)
	if err != nil {
		return "", fmt.Errorf("insert video: %w", mapPgError(err))
	}

	for _, era := range video.Eras {
		if _, err := tx.Exec(ctx, `
			INSERT INTO video_eras (video_id, era)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, toUUID(id), string(era)); err != nil {
			return "", fmt.Errorf("insert video era: %w", mapPgError(err))
		}
	}

	for _, regionID := range video.RegionIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO video_regions (video_id, region_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, toUUID(id), regionID); err != nil {
			return "", fmt.Errorf("insert video region: %w", mapPgError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	return id, nil
}

// GetVideo loads a video with its tags.
func (db *DB) GetVideo(ctx context.Context, id string) (*domain.Video, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, external_id, url, title, channel, upload_date, description, fetched_at
		FROM videos
		WHERE id = $1
	`, toUUID(id))

	video, err := scanVideo(row)
	if err != nil {
		return nil, err
	}

	if err := db.loadVideoTags(ctx, video); err != nil {
		return nil, err
	}

	return video, nil
}

// GetVideoByExternalID loads a video by its platform id.
func (db *DB) GetVideoByExternalID(ctx context.Context, externalID string) (*domain.Video, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, external_id, url, title, channel, upload_date, description, fetched_at
		FROM videos
		WHERE external_id = $1
	`, externalID)

	video, err := scanVideo(row)
	if err != nil {
		return nil, err
	}

	if err := db.loadVideoTags(ctx, video); err != nil {
		return nil, err
	}

	return video, nil
}

// ListVideos returns videos newest-first.
func (db *DB) ListVideos(ctx context.Context, limit int) ([]domain.Video, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, external_id, url, title, channel, upload_date, description, fetched_at
		FROM videos
		ORDER BY fetched_at DESC
		LIMIT $1
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video

	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}

		videos = append(videos, *video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video rows: %w", err)
	}

	return videos, nil
}

// SaveTranscript stores the parsed caption track for a video, replacing any
// prior track for the same language.
func (db *DB) SaveTranscript(ctx context.Context, transcript *domain.Transcript) error {
	if transcript.VideoID == "" {
		return apperrors.Validationf("video_id", "must not be empty")
	}

	language := transcript.Language
	if language == "" {
		language = defaultLanguage
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // best-effort cleanup
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO transcripts (video_id, language, full_text)
		VALUES ($1, $2, $3)
		ON CONFLICT (video_id, language) DO UPDATE
		SET full_text = EXCLUDED.full_text
	`, toUUID(transcript.VideoID), language, SanitizeUTF8(transcript.FullText))
	if err != nil {
		return fmt.Errorf("upsert transcript: %w", mapPgError(err))
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM transcript_segments
		WHERE video_id = $1 AND language = $2
	`, toUUID(transcript.VideoID), language)
	if err != nil {
		return fmt.Errorf("clear transcript segments: %w", err)
	}

	for i, seg := range transcript.Segments {
		if _, err := tx.Exec(ctx, `
			INSERT INTO transcript_segments (video_id, language, seq, start_sec, duration_sec, text)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, toUUID(transcript.VideoID), language, i, seg.Start, seg.Duration, SanitizeUTF8(seg.Text)); err != nil {
			return fmt.Errorf("insert transcript segment: %w", mapPgError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetTranscript loads a video's transcript, segments included.
func (db *DB) GetTranscript(ctx context.Context, videoID, language string) (*domain.Transcript, error) {
	if language == "" {
		language = defaultLanguage
	}

	var fullText pgtype.Text

	err := db.Pool.QueryRow(ctx, `
		SELECT full_text
		FROM transcripts
		WHERE video_id = $1 AND language = $2
	`, toUUID(videoID), language).Scan(&fullText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transcript for video %s: %w", videoID, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("get transcript: %w", err)
	}

	transcript := &domain.Transcript{
		VideoID:  videoID,
		Language: language,
		FullText: fullText.String,
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT start_sec, duration_sec, text
		FROM transcript_segments
		WHERE video_id = $1 AND language = $2
		ORDER BY seq
	`, toUUID(videoID), language)
	if err != nil {
		return nil, fmt.Errorf("query transcript segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seg domain.TranscriptSegment

		if err := rows.Scan(&seg.Start, &seg.Duration, &seg.Text); err != nil {
			return nil, fmt.Errorf("scan transcript segment row: %w", err)
		}

		transcript.Segments = append(transcript.Segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript segment rows: %w", err)
	}

	return transcript, nil
}

func (db *DB) loadVideoTags(ctx context.Context, video *domain.Video) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT era
		FROM video_eras
		WHERE video_id = $1
		ORDER BY era
	`, toUUID(video.ID))
	if err != nil {
		return fmt.Errorf("query video eras: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var era string

		if err := rows.Scan(&era); err != nil {
			return fmt.Errorf("scan video era row: %w", err)
		}

		video.Eras = append(video.Eras, domain.Era(era))
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate video era rows: %w", err)
	}

	regionRows, err := db.Pool.Query(ctx, `
		SELECT region_id
		FROM video_regions
		WHERE video_id = $1
		ORDER BY region_id
	`, toUUID(video.ID))
	if err != nil {
		return fmt.Errorf("query video regions: %w", err)
	}
	defer regionRows.Close()

	for regionRows.Next() {
		var regionID int64

		if err := regionRows.Scan(&regionID); err != nil {
			return fmt.Errorf("scan video region row: %w", err)
		}

		video.RegionIDs = append(video.RegionIDs, regionID)
	}

	if err := regionRows.Err(); err != nil {
		return fmt.Errorf("iterate video region rows: %w", err)
	}

	return nil
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	var (
		id          pgtype.UUID
		url         pgtype.Text
		channel     pgtype.Text
		uploadDate  pgtype.Timestamptz
		description pgtype.Text
	)

	video := domain.Video{}

	if err := row.Scan(&id, &video.ExternalID, &url, &video.Title, &channel, &uploadDate, &description, &video.FetchedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("video: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan video row: %w", err)
	}

	video.ID = fromUUID(id)
	video.URL = url.String
	video.Channel = channel.String
	video.UploadDate = fromTimestamptz(uploadDate)
	video.Description = description.String

	return &video, nil
}
