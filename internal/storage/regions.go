package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/unicode/norm"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// Regions are an open vocabulary: names are normalized, interned on first
// use, and referenced by id everywhere else.

// NormalizeRegionName folds a region name to its interned form: NFKC
// normalization, lowercase, collapsed whitespace.
func NormalizeRegionName(name string) string {
	folded := norm.NFKC.String(strings.ToLower(strings.TrimSpace(name)))

	return strings.Join(strings.Fields(folded), " ")
}

// InternRegion returns the id of the named region, creating it on first
// use. Two spellings that normalize alike intern to the same id.
func (db *DB) InternRegion(ctx context.Context, name string) (int64, error) {
	normalized := NormalizeRegionName(name)
	if normalized == "" {
		return 0, apperrors.Validationf("name", "must not be empty")
	}

	var id int64

	// DO UPDATE instead of DO NOTHING so RETURNING yields the existing row.
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO regions (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, normalized).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("intern region: %w", mapPgError(err))
	}

	return id, nil
}

// SetRegionParent nests a region under a parent region.
func (db *DB) SetRegionParent(ctx context.Context, id, parentID int64) error {
	if id == parentID {
		return apperrors.Validationf("parent_id", "region cannot be its own parent")
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE regions
		SET parent_id = $2
		WHERE id = $1
	`, id, toInt8(parentID))
	if err != nil {
		return fmt.Errorf("set region parent: %w", mapPgError(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("region %d: %w", id, apperrors.ErrNotFound)
	}

	return nil
}

// GetRegion loads a region by id.
func (db *DB) GetRegion(ctx context.Context, id int64) (*domain.Region, error) {
	var parentID pgtype.Int8

	region := domain.Region{}

	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, parent_id
		FROM regions
		WHERE id = $1
	`, id).Scan(&region.ID, &region.Name, &parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("region %d: %w", id, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("get region: %w", err)
	}

	region.ParentID = fromInt8(parentID)

	return &region, nil
}

// ListRegions returns every interned region, alphabetically.
func (db *DB) ListRegions(ctx context.Context) ([]domain.Region, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, parent_id
		FROM regions
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query regions: %w", err)
	}
	defer rows.Close()

	var regions []domain.Region

	for rows.Next() {
		var parentID pgtype.Int8

		region := domain.Region{}

		if err := rows.Scan(&region.ID, &region.Name, &parentID); err != nil {
			return nil, fmt.Errorf("scan region row: %w", err)
		}

		region.ParentID = fromInt8(parentID)

		regions = append(regions, region)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate region rows: %w", err)
	}

	return regions, nil
}
