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

// SaveSource records a cited work. (title, author) pairs are unique.
func (db *DB) SaveSource(ctx context.Context, source *domain.Source) (string, error) {
	if source.Title == "" {
		return "", apperrors.Validationf("title", "must not be empty")
	}

	if !source.Type.Valid() {
		return "", apperrors.Validationf("source_type", "unknown source type %q", source.Type)
	}

	id := source.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO sources (id, title, author, type, year, url, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, toUUID(id), SanitizeUTF8(source.Title), toText(source.Author), string(source.Type),
		toInt4(source.Year), toText(source.URL), toText(source.Notes))
	if err != nil {
		return "", fmt.Errorf("insert source: %w", mapPgError(err))
	}

	return id, nil
}

// ListSources returns cited works of one type, alphabetically by title. An
// empty type lists everything.
func (db *DB) ListSources(ctx context.Context, sourceType domain.SourceType) ([]domain.Source, error) {
	if sourceType != "" && !sourceType.Valid() {
		return nil, apperrors.Validationf("source_type", "unknown source type %q", sourceType)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, author, type, year, url, notes, created_at
		FROM sources
		WHERE ($1 = '' OR type = $1)
		ORDER BY title
	`, string(sourceType))
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source

	for rows.Next() {
		var (
			id     pgtype.UUID
			author pgtype.Text
			stype  string
			year   pgtype.Int4
			url    pgtype.Text
			notes  pgtype.Text
		)

		s := domain.Source{}

		if err := rows.Scan(&id, &s.Title, &author, &stype, &year, &url, &notes, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source row: %w", err)
		}

		s.ID = fromUUID(id)
		s.Author = author.String
		s.Type = domain.SourceType(stype)
		s.Year = int(year.Int32)
		s.URL = url.String
		s.Notes = notes.String

		sources = append(sources, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source rows: %w", err)
	}

	return sources, nil
}

// SaveScholar records a thinker. Names are unique.
func (db *DB) SaveScholar(ctx context.Context, scholar *domain.Scholar) (string, error) {
	if scholar.Name == "" {
		return "", apperrors.Validationf("name", "must not be empty")
	}

	id := scholar.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO scholars (id, name, field, era, contribution)
		VALUES ($1, $2, $3, $4, $5)
	`, toUUID(id), SanitizeUTF8(scholar.Name), toText(scholar.Field), toText(scholar.Era), toText(scholar.Contribution))
	if err != nil {
		return "", fmt.Errorf("insert scholar: %w", mapPgError(err))
	}

	return id, nil
}

// GetScholarByName loads a scholar by their unique name.
func (db *DB) GetScholarByName(ctx context.Context, name string) (*domain.Scholar, error) {
	var (
		id           pgtype.UUID
		field        pgtype.Text
		era          pgtype.Text
		contribution pgtype.Text
	)

	scholar := domain.Scholar{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, field, era, contribution, created_at
		FROM scholars
		WHERE name = $1
	`, name).Scan(&id, &scholar.Name, &field, &era, &contribution, &scholar.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("scholar %q: %w", name, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("get scholar: %w", err)
	}

	scholar.ID = fromUUID(id)
	scholar.Field = field.String
	scholar.Era = era.String
	scholar.Contribution = contribution.String

	return &scholar, nil
}

// CiteSource records a source being mentioned in a video. Re-citing the
// same source in the same video updates the context.
func (db *DB) CiteSource(ctx context.Context, sourceID, videoID string, timestamp float64, mention string) error {
	if sourceID == "" {
		return apperrors.Validationf("source_id", "must not be empty")
	}

	if videoID == "" {
		return apperrors.Validationf("video_id", "must not be empty")
	}

	if err := validateTimestamp(timestamp); err != nil {
		return err
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO source_citations (source_id, video_id, timestamp_sec, context)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_id, video_id) DO UPDATE
		SET timestamp_sec = EXCLUDED.timestamp_sec,
			context = EXCLUDED.context
	`, toUUID(sourceID), toUUID(videoID), timestamp, toText(mention))
	if err != nil {
		return fmt.Errorf("upsert source citation: %w", mapPgError(err))
	}

	return nil
}

// CiteScholar records a scholar being discussed in a video.
func (db *DB) CiteScholar(ctx context.Context, scholarID, videoID string, timestamp float64, mention string) error {
	if scholarID == "" {
		return apperrors.Validationf("scholar_id", "must not be empty")
	}

	if videoID == "" {
		return apperrors.Validationf("video_id", "must not be empty")
	}

	if err := validateTimestamp(timestamp); err != nil {
		return err
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO scholar_citations (scholar_id, video_id, timestamp_sec, context)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scholar_id, video_id) DO UPDATE
		SET timestamp_sec = EXCLUDED.timestamp_sec,
			context = EXCLUDED.context
	`, toUUID(scholarID), toUUID(videoID), timestamp, toText(mention))
	if err != nil {
		return fmt.Errorf("upsert scholar citation: %w", mapPgError(err))
	}

	return nil
}

// SaveTerm records a defined concept. Terms are unique by name.
func (db *DB) SaveTerm(ctx context.Context, term *domain.Term) (string, error) {
	if term.Term == "" {
		return "", apperrors.Validationf("term", "must not be empty")
	}

	if term.Definition == "" {
		return "", apperrors.Validationf("definition", "must not be empty")
	}

	if err := validateTimestamp(term.Timestamp); err != nil {
		return "", err
	}

	id := term.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO terms (id, term, definition, domain, video_id, timestamp_sec, scholar_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, toUUID(id), SanitizeUTF8(term.Term), SanitizeUTF8(term.Definition), toText(term.Domain),
		toUUID(term.VideoID), term.Timestamp, toUUID(term.ScholarID))
	if err != nil {
		return "", fmt.Errorf("insert term: %w", mapPgError(err))
	}

	return id, nil
}

// SearchTerms does a substring search over term names and definitions.
func (db *DB) SearchTerms(ctx context.Context, query string, limit int) ([]domain.Term, error) {
	if query == "" {
		return nil, apperrors.Validationf("query", "must not be empty")
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, term, definition, domain, video_id, timestamp_sec, scholar_id, created_at
		FROM terms
		WHERE term ILIKE '%' || $1 || '%'
		   OR definition ILIKE '%' || $1 || '%'
		ORDER BY term
		LIMIT $2
	`, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("search terms: %w", err)
	}
	defer rows.Close()

	var terms []domain.Term

	for rows.Next() {
		var (
			id        pgtype.UUID
			domainCol pgtype.Text
			videoID   pgtype.UUID
			scholarID pgtype.UUID
		)

		t := domain.Term{}

		if err := rows.Scan(&id, &t.Term, &t.Definition, &domainCol, &videoID, &t.Timestamp, &scholarID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan term row: %w", err)
		}

		t.ID = fromUUID(id)
		t.Domain = domainCol.String
		t.VideoID = fromUUID(videoID)
		t.ScholarID = fromUUID(scholarID)

		terms = append(terms, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate term rows: %w", err)
	}

	return terms, nil
}
