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

// SaveLink creates a directed, typed link between two existing claims.
// Self-links are rejected; a duplicate (source, target, kind) is a conflict.
func (db *DB) SaveLink(ctx context.Context, link *domain.Link) (string, error) {
	if link.SourceClaimID == "" {
		return "", apperrors.Validationf("source_claim_id", "must not be empty")
	}

	if link.TargetClaimID == "" {
		return "", apperrors.Validationf("target_claim_id", "must not be empty")
	}

	if link.SourceClaimID == link.TargetClaimID {
		return "", apperrors.Validationf("target_claim_id", "claim cannot link to itself")
	}

	if !link.Kind.Valid() {
		return "", apperrors.Validationf("kind", "unknown link kind %q", link.Kind)
	}

	id := link.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO links (id, source_claim_id, target_claim_id, kind)
		VALUES ($1, $2, $3, $4)
	`, toUUID(id), toUUID(link.SourceClaimID), toUUID(link.TargetClaimID), string(link.Kind))
	if err != nil {
		return "", fmt.Errorf("insert link: %w", mapPgError(err))
	}

	return id, nil
}

// GetLink loads a link by id.
func (db *DB) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, source_claim_id, target_claim_id, kind, created_at
		FROM links
		WHERE id = $1
	`, toUUID(id))

	return scanLink(row)
}

// DeleteLink removes a link and returns the removed record so callers can
// update the graph index.
func (db *DB) DeleteLink(ctx context.Context, id string) (*domain.Link, error) {
	row := db.Pool.QueryRow(ctx, `
		DELETE FROM links
		WHERE id = $1
		RETURNING id, source_claim_id, target_claim_id, kind, created_at
	`, toUUID(id))

	return scanLink(row)
}

// ListLinksByClaim returns every link touching the claim, either direction.
func (db *DB) ListLinksByClaim(ctx context.Context, claimID string) ([]domain.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, source_claim_id, target_claim_id, kind, created_at
		FROM links
		WHERE source_claim_id = $1 OR target_claim_id = $1
		ORDER BY created_at
	`, toUUID(claimID))
	if err != nil {
		return nil, fmt.Errorf("query links by claim: %w", err)
	}
	defer rows.Close()

	return collectLinks(rows)
}

// ListAllLinks streams every link, oldest first. Used by the graph index
// rebuild.
func (db *DB) ListAllLinks(ctx context.Context) ([]domain.Link, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, source_claim_id, target_claim_id, kind, created_at
		FROM links
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query all links: %w", err)
	}
	defer rows.Close()

	return collectLinks(rows)
}

// CountLinks returns the total number of links.
func (db *DB) CountLinks(ctx context.Context) (int, error) {
	var count int

	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM links`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count links: %w", err)
	}

	return count, nil
}

func collectLinks(rows pgx.Rows) ([]domain.Link, error) {
	var links []domain.Link

	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, *link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}

	return links, nil
}

func scanLink(row pgx.Row) (*domain.Link, error) {
	var (
		id       pgtype.UUID
		sourceID pgtype.UUID
		targetID pgtype.UUID
		kind     string
	)

	link := domain.Link{}

	if err := row.Scan(&id, &sourceID, &targetID, &kind, &link.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("link: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan link row: %w", err)
	}

	link.ID = fromUUID(id)
	link.SourceClaimID = fromUUID(sourceID)
	link.TargetClaimID = fromUUID(targetID)
	link.Kind = domain.LinkKind(kind)

	return &link, nil
}
