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

// Analytical-framework annotations. Each kind is its own table; all writes
// validate vocabulary before touching the database and reject whole on the
// first bad field.

// SaveCyclicalPattern records a recurring-dynamics observation.
func (db *DB) SaveCyclicalPattern(ctx context.Context, p *domain.CyclicalPattern) (string, error) {
	if p.VideoID == "" {
		return "", apperrors.Validationf("video_id", "must not be empty")
	}

	if !p.Type.Valid() {
		return "", apperrors.Validationf("type", "unknown cyclical type %q", p.Type)
	}

	if p.Entity == "" {
		return "", apperrors.Validationf("entity", "must not be empty")
	}

	if p.Era != "" && !p.Era.Valid() {
		return "", apperrors.Validationf("era", "unknown era %q", p.Era)
	}

	if err := validateTimestamp(p.Timestamp); err != nil {
		return "", err
	}

	id := p.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO cyclical_patterns (id, video_id, claim_id, type, entity, era, description, timestamp_sec)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, toUUID(id), toUUID(p.VideoID), toUUID(p.ClaimID), string(p.Type), SanitizeUTF8(p.Entity),
		toText(string(p.Era)), toText(p.Description), p.Timestamp)
	if err != nil {
		return "", fmt.Errorf("insert cyclical pattern: %w", mapPgError(err))
	}

	return id, nil
}

// ListCyclicalPatterns returns observations filtered by entity and type;
// empty filters match everything.
func (db *DB) ListCyclicalPatterns(ctx context.Context, entity string, cyclicalType domain.CyclicalType, limit int) ([]domain.CyclicalPattern, error) {
	if cyclicalType != "" && !cyclicalType.Valid() {
		return nil, apperrors.Validationf("type", "unknown cyclical type %q", cyclicalType)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, video_id, claim_id, type, entity, era, description, timestamp_sec, created_at
		FROM cyclical_patterns
		WHERE ($1 = '' OR entity = $1)
		  AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, entity, string(cyclicalType), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query cyclical patterns: %w", err)
	}
	defer rows.Close()

	var patterns []domain.CyclicalPattern

	for rows.Next() {
		var (
			id      pgtype.UUID
			videoID pgtype.UUID
			claimID pgtype.UUID
			ptype   string
			era     pgtype.Text
			desc    pgtype.Text
		)

		p := domain.CyclicalPattern{}

		if err := rows.Scan(&id, &videoID, &claimID, &ptype, &p.Entity, &era, &desc, &p.Timestamp, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cyclical pattern row: %w", err)
		}

		p.ID = fromUUID(id)
		p.VideoID = fromUUID(videoID)
		p.ClaimID = fromUUID(claimID)
		p.Type = domain.CyclicalType(ptype)
		p.Era = domain.Era(era.String)
		p.Description = desc.String

		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cyclical pattern rows: %w", err)
	}

	return patterns, nil
}

// SaveCausalChain links a cause claim to an effect claim.
func (db *DB) SaveCausalChain(ctx context.Context, c *domain.CausalChain) (string, error) {
	if c.CauseClaimID == "" {
		return "", apperrors.Validationf("cause_claim_id", "must not be empty")
	}

	if c.EffectClaimID == "" {
		return "", apperrors.Validationf("effect_claim_id", "must not be empty")
	}

	if c.CauseClaimID == c.EffectClaimID {
		return "", apperrors.Validationf("effect_claim_id", "claim cannot cause itself")
	}

	if !c.Loop.Valid() {
		return "", apperrors.Validationf("loop", "unknown loop type %q", c.Loop)
	}

	if !c.Strength.Valid() {
		return "", apperrors.Validationf("strength", "unknown relation strength %q", c.Strength)
	}

	id := c.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO causal_chains (id, cause_claim_id, effect_claim_id, loop, strength, video_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, toUUID(id), toUUID(c.CauseClaimID), toUUID(c.EffectClaimID), string(c.Loop),
		string(c.Strength), toUUID(c.VideoID), toText(c.Notes))
	if err != nil {
		return "", fmt.Errorf("insert causal chain: %w", mapPgError(err))
	}

	return id, nil
}

// ListCausalChains returns chains touching the claim, either side; an empty
// claim id matches everything.
func (db *DB) ListCausalChains(ctx context.Context, claimID string, limit int) ([]domain.CausalChain, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, cause_claim_id, effect_claim_id, loop, strength, video_id, notes, created_at
		FROM causal_chains
		WHERE ($1 = '' OR cause_claim_id = $2 OR effect_claim_id = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, claimID, toUUID(claimID), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query causal chains: %w", err)
	}
	defer rows.Close()

	var chains []domain.CausalChain

	for rows.Next() {
		var (
			id       pgtype.UUID
			causeID  pgtype.UUID
			effectID pgtype.UUID
			loop     string
			strength string
			videoID  pgtype.UUID
			notes    pgtype.Text
		)

		c := domain.CausalChain{}

		if err := rows.Scan(&id, &causeID, &effectID, &loop, &strength, &videoID, &notes, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan causal chain row: %w", err)
		}

		c.ID = fromUUID(id)
		c.CauseClaimID = fromUUID(causeID)
		c.EffectClaimID = fromUUID(effectID)
		c.Loop = domain.LoopType(loop)
		c.Strength = domain.RelationStrength(strength)
		c.VideoID = fromUUID(videoID)
		c.Notes = notes.String

		chains = append(chains, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate causal chain rows: %w", err)
	}

	return chains, nil
}

// SaveTransmission records an idea moving between cultures.
func (db *DB) SaveTransmission(ctx context.Context, t *domain.Transmission) (string, error) {
	if t.Idea == "" {
		return "", apperrors.Validationf("idea", "must not be empty")
	}

	if t.SourceCulture == "" {
		return "", apperrors.Validationf("source_culture", "must not be empty")
	}

	if t.TargetCulture == "" {
		return "", apperrors.Validationf("target_culture", "must not be empty")
	}

	if !t.Mode.Valid() {
		return "", apperrors.Validationf("mode", "unknown transmission mode %q", t.Mode)
	}

	if t.Era != "" && !t.Era.Valid() {
		return "", apperrors.Validationf("era", "unknown era %q", t.Era)
	}

	id := t.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO transmissions (id, idea, source_culture, target_culture, mode, era, region_id, video_id, claim_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, toUUID(id), SanitizeUTF8(t.Idea), SanitizeUTF8(t.SourceCulture), SanitizeUTF8(t.TargetCulture),
		string(t.Mode), toText(string(t.Era)), toInt8(t.RegionID), toUUID(t.VideoID), toUUID(t.ClaimID), toText(t.Notes))
	if err != nil {
		return "", fmt.Errorf("insert transmission: %w", mapPgError(err))
	}

	return id, nil
}

// ListTransmissions returns transmissions filtered by idea substring; an
// empty filter matches everything.
func (db *DB) ListTransmissions(ctx context.Context, idea string, limit int) ([]domain.Transmission, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, idea, source_culture, target_culture, mode, era, region_id, video_id, claim_id, notes, created_at
		FROM transmissions
		WHERE ($1 = '' OR idea ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2
	`, idea, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query transmissions: %w", err)
	}
	defer rows.Close()

	var transmissions []domain.Transmission

	for rows.Next() {
		var (
			id       pgtype.UUID
			mode     string
			era      pgtype.Text
			regionID pgtype.Int8
			videoID  pgtype.UUID
			claimID  pgtype.UUID
			notes    pgtype.Text
		)

		t := domain.Transmission{}

		if err := rows.Scan(&id, &t.Idea, &t.SourceCulture, &t.TargetCulture, &mode, &era,
			&regionID, &videoID, &claimID, &notes, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transmission row: %w", err)
		}

		t.ID = fromUUID(id)
		t.Mode = domain.TransmissionMode(mode)
		t.Era = domain.Era(era.String)
		t.RegionID = fromInt8(regionID)
		t.VideoID = fromUUID(videoID)
		t.ClaimID = fromUUID(claimID)
		t.Notes = notes.String

		transmissions = append(transmissions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transmission rows: %w", err)
	}

	return transmissions, nil
}

// SavePosition places an entity in the world-system for an era. Stances
// accumulate; restating one does not replace the earlier record.
func (db *DB) SavePosition(ctx context.Context, p *domain.Position) (string, error) {
	if p.Entity == "" {
		return "", apperrors.Validationf("entity", "must not be empty")
	}

	if !p.Era.Valid() {
		return "", apperrors.Validationf("era", "unknown era %q", p.Era)
	}

	if !p.Stance.Valid() {
		return "", apperrors.Validationf("stance", "unknown system position %q", p.Stance)
	}

	id := p.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO system_positions (id, entity, era, stance, notes)
		VALUES ($1, $2, $3, $4, $5)
	`, toUUID(id), SanitizeUTF8(p.Entity), string(p.Era), string(p.Stance), toText(p.Notes))
	if err != nil {
		return "", fmt.Errorf("insert system position: %w", mapPgError(err))
	}

	return id, nil
}

// GetPosition loads the most recent stance of an entity in an era.
func (db *DB) GetPosition(ctx context.Context, entity string, era domain.Era) (*domain.Position, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, entity, era, stance, notes, created_at
		FROM system_positions
		WHERE entity = $1 AND era = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, entity, string(era))

	return scanPosition(row)
}

// ListPositions returns every stance recorded for an era.
func (db *DB) ListPositions(ctx context.Context, era domain.Era) ([]domain.Position, error) {
	if !era.Valid() {
		return nil, apperrors.Validationf("era", "unknown era %q", era)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, entity, era, stance, notes, created_at
		FROM system_positions
		WHERE era = $1
		ORDER BY entity, created_at
	`, string(era))
	if err != nil {
		return nil, fmt.Errorf("query system positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position

	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}

		positions = append(positions, *position)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate system position rows: %w", err)
	}

	return positions, nil
}

// SaveFlow records surplus moving between two recorded positions.
func (db *DB) SaveFlow(ctx context.Context, f *domain.Flow) (string, error) {
	if f.FromPositionID == "" {
		return "", apperrors.Validationf("from_position_id", "must not be empty")
	}

	if f.ToPositionID == "" {
		return "", apperrors.Validationf("to_position_id", "must not be empty")
	}

	if f.Resource == "" {
		return "", apperrors.Validationf("resource", "must not be empty")
	}

	if !f.Era.Valid() {
		return "", apperrors.Validationf("era", "unknown era %q", f.Era)
	}

	id := f.ID
	if id == "" {
		id = newID()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO system_flows (id, from_position_id, to_position_id, resource, era, video_id, claim_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, toUUID(id), toUUID(f.FromPositionID), toUUID(f.ToPositionID), SanitizeUTF8(f.Resource),
		string(f.Era), toUUID(f.VideoID), toUUID(f.ClaimID), toText(f.Notes))
	if err != nil {
		return "", fmt.Errorf("insert system flow: %w", mapPgError(err))
	}

	return id, nil
}

// ListFlows returns flows for an era, oldest first.
func (db *DB) ListFlows(ctx context.Context, era domain.Era) ([]domain.Flow, error) {
	if !era.Valid() {
		return nil, apperrors.Validationf("era", "unknown era %q", era)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, from_position_id, to_position_id, resource, era, video_id, claim_id, notes, created_at
		FROM system_flows
		WHERE era = $1
		ORDER BY created_at
	`, string(era))
	if err != nil {
		return nil, fmt.Errorf("query system flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.Flow

	for rows.Next() {
		var (
			id      pgtype.UUID
			fromID  pgtype.UUID
			toID    pgtype.UUID
			era     string
			videoID pgtype.UUID
			claimID pgtype.UUID
			notes   pgtype.Text
		)

		f := domain.Flow{}

		if err := rows.Scan(&id, &fromID, &toID, &f.Resource, &era, &videoID, &claimID, &notes, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan system flow row: %w", err)
		}

		f.ID = fromUUID(id)
		f.FromPositionID = fromUUID(fromID)
		f.ToPositionID = fromUUID(toID)
		f.Era = domain.Era(era)
		f.VideoID = fromUUID(videoID)
		f.ClaimID = fromUUID(claimID)
		f.Notes = notes.String

		flows = append(flows, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate system flow rows: %w", err)
	}

	return flows, nil
}

// SaveTimescaleTag assigns a claim its Braudelian scope. A claim has at
// most one live scope; re-tagging replaces the prior one.
func (db *DB) SaveTimescaleTag(ctx context.Context, tag *domain.TimescaleTag) error {
	if tag.ClaimID == "" {
		return apperrors.Validationf("claim_id", "must not be empty")
	}

	if !tag.Scope.Valid() {
		return apperrors.Validationf("scope", "unknown timescale scope %q", tag.Scope)
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO timescale_tags (claim_id, scope, notes)
		VALUES ($1, $2, $3)
		ON CONFLICT (claim_id) DO UPDATE
		SET scope = EXCLUDED.scope,
			notes = EXCLUDED.notes,
			created_at = NOW()
	`, toUUID(tag.ClaimID), string(tag.Scope), toText(tag.Notes))
	if err != nil {
		return fmt.Errorf("upsert timescale tag: %w", mapPgError(err))
	}

	return nil
}

// GetTimescaleTag loads a claim's scope.
func (db *DB) GetTimescaleTag(ctx context.Context, claimID string) (*domain.TimescaleTag, error) {
	var (
		scope string
		notes pgtype.Text
	)

	tag := domain.TimescaleTag{ClaimID: claimID}

	err := db.Pool.QueryRow(ctx, `
		SELECT scope, notes, created_at
		FROM timescale_tags
		WHERE claim_id = $1
	`, toUUID(claimID)).Scan(&scope, &notes, &tag.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("timescale tag for claim %s: %w", claimID, apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("get timescale tag: %w", err)
	}

	tag.Scope = domain.TimescaleScope(scope)
	tag.Notes = notes.String

	return &tag, nil
}

// ListClaimsByTimescale returns claim ids tagged with the scope.
func (db *DB) ListClaimsByTimescale(ctx context.Context, scope domain.TimescaleScope) ([]string, error) {
	if !scope.Valid() {
		return nil, apperrors.Validationf("scope", "unknown timescale scope %q", scope)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT claim_id
		FROM timescale_tags
		WHERE scope = $1
		ORDER BY created_at
	`, string(scope))
	if err != nil {
		return nil, fmt.Errorf("query timescale tags: %w", err)
	}
	defer rows.Close()

	var claimIDs []string

	for rows.Next() {
		var claimID pgtype.UUID

		if err := rows.Scan(&claimID); err != nil {
			return nil, fmt.Errorf("scan timescale tag row: %w", err)
		}

		claimIDs = append(claimIDs, fromUUID(claimID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timescale tag rows: %w", err)
	}

	return claimIDs, nil
}

func scanPosition(row pgx.Row) (*domain.Position, error) {
	var (
		id     pgtype.UUID
		era    string
		stance string
		notes  pgtype.Text
	)

	position := domain.Position{}

	if err := row.Scan(&id, &position.Entity, &era, &stance, &notes, &position.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("system position: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan system position row: %w", err)
	}

	position.ID = fromUUID(id)
	position.Era = domain.Era(era)
	position.Stance = domain.SystemPosition(stance)
	position.Notes = notes.String

	return &position, nil
}
