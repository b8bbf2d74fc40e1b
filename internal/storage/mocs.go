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

// CreateMOC creates a named claim collection. Names are unique.
func (db *DB) CreateMOC(ctx context.Context, name, description string) (string, error) {
	if name == "" {
		return "", apperrors.Validationf("name", "must not be empty")
	}

	id := newID()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO mocs (id, name, description)
		VALUES ($1, $2, $3)
	`, toUUID(id), SanitizeUTF8(name), toText(description))
	if err != nil {
		return "", fmt.Errorf("insert moc: %w", mapPgError(err))
	}

	return id, nil
}

// GetMOC loads a collection by id.
func (db *DB) GetMOC(ctx context.Context, id string) (*domain.MOC, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM mocs
		WHERE id = $1
	`, toUUID(id))

	return scanMOC(row)
}

// GetMOCByName loads a collection by its unique name.
func (db *DB) GetMOCByName(ctx context.Context, name string) (*domain.MOC, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM mocs
		WHERE name = $1
	`, name)

	return scanMOC(row)
}

// ListMOCs returns every collection, alphabetically.
func (db *DB) ListMOCs(ctx context.Context) ([]domain.MOC, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM mocs
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query mocs: %w", err)
	}
	defer rows.Close()

	var mocs []domain.MOC

	for rows.Next() {
		moc, err := scanMOC(rows)
		if err != nil {
			return nil, err
		}

		mocs = append(mocs, *moc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moc rows: %w", err)
	}

	return mocs, nil
}

// AddClaimToMOC adds a claim to a collection. Re-adding is a no-op.
func (db *DB) AddClaimToMOC(ctx context.Context, mocID, claimID string) error {
	if mocID == "" {
		return apperrors.Validationf("moc_id", "must not be empty")
	}

	if claimID == "" {
		return apperrors.Validationf("claim_id", "must not be empty")
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO moc_claims (moc_id, claim_id)
		VALUES ($1, $2)
		ON CONFLICT (moc_id, claim_id) DO NOTHING
	`, toUUID(mocID), toUUID(claimID))
	if err != nil {
		return fmt.Errorf("insert moc claim: %w", mapPgError(err))
	}

	if tag.RowsAffected() > 0 {
		if _, err := db.Pool.Exec(ctx, `
			UPDATE mocs SET updated_at = NOW() WHERE id = $1
		`, toUUID(mocID)); err != nil {
			return fmt.Errorf("touch moc: %w", err)
		}
	}

	return nil
}

// RemoveClaimFromMOC removes a claim from a collection. The claim itself is
// untouched.
func (db *DB) RemoveClaimFromMOC(ctx context.Context, mocID, claimID string) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM moc_claims
		WHERE moc_id = $1 AND claim_id = $2
	`, toUUID(mocID), toUUID(claimID))
	if err != nil {
		return fmt.Errorf("delete moc claim: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("claim %s in moc %s: %w", claimID, mocID, apperrors.ErrNotFound)
	}

	if _, err := db.Pool.Exec(ctx, `
		UPDATE mocs SET updated_at = NOW() WHERE id = $1
	`, toUUID(mocID)); err != nil {
		return fmt.Errorf("touch moc: %w", err)
	}

	return nil
}

// ListMOCClaims returns the member claims of a collection, touching each
// claim's last_accessed.
func (db *DB) ListMOCClaims(ctx context.Context, mocID string) ([]domain.Claim, error) {
	rows, err := db.Pool.Query(ctx, `
		UPDATE claims
		SET last_accessed = NOW()
		WHERE id IN (
			SELECT claim_id
			FROM moc_claims
			WHERE moc_id = $1
		)
		RETURNING id, video_id, text, source_quote, category, confidence, timestamp_sec, created_at, last_accessed
	`, toUUID(mocID))
	if err != nil {
		return nil, fmt.Errorf("query moc claims: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, err
	}

	sortClaimsByTimestamp(claims)

	return claims, nil
}

// ListMOCMemberIDs returns member claim ids without touching last_accessed.
// Used by the graph index rebuild.
func (db *DB) ListMOCMemberIDs(ctx context.Context) (map[string][]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT moc_id, claim_id
		FROM moc_claims
		ORDER BY added_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query moc members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string)

	for rows.Next() {
		var mocID, claimID pgtype.UUID

		if err := rows.Scan(&mocID, &claimID); err != nil {
			return nil, fmt.Errorf("scan moc member row: %w", err)
		}

		members[fromUUID(mocID)] = append(members[fromUUID(mocID)], fromUUID(claimID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moc member rows: %w", err)
	}

	return members, nil
}

func scanMOC(row pgx.Row) (*domain.MOC, error) {
	var (
		id          pgtype.UUID
		description pgtype.Text
	)

	moc := domain.MOC{}

	if err := row.Scan(&id, &moc.Name, &description, &moc.CreatedAt, &moc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("moc: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan moc row: %w", err)
	}

	moc.ID = fromUUID(id)
	moc.Description = description.String

	return &moc, nil
}
