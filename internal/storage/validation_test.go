package db

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// Validation runs before any statement executes, so these paths are
// reachable without a live database.

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()

	require.Error(t, err)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

func TestSaveLinkRejectsSelfLink(t *testing.T) {
	store := &DB{}

	_, err := store.SaveLink(context.Background(), &domain.Link{
		SourceClaimID: "c1",
		TargetClaimID: "c1",
		Kind:          domain.LinkSupports,
	})
	requireValidationField(t, err, "target_claim_id")
}

func TestSaveLinkRejectsUnknownKind(t *testing.T) {
	store := &DB{}

	_, err := store.SaveLink(context.Background(), &domain.Link{
		SourceClaimID: "c1",
		TargetClaimID: "c2",
		Kind:          domain.LinkKind("follows"),
	})
	requireValidationField(t, err, "kind")
}

func TestSaveClaimValidation(t *testing.T) {
	store := &DB{}
	ctx := context.Background()

	_, err := store.SaveClaim(ctx, &domain.Claim{})
	requireValidationField(t, err, "video_id")

	_, err = store.SaveClaim(ctx, &domain.Claim{VideoID: "v1"})
	requireValidationField(t, err, "text")

	_, err = store.SaveClaim(ctx, &domain.Claim{VideoID: "v1", Text: "claim"})
	requireValidationField(t, err, "source_quote")

	_, err = store.SaveClaim(ctx, &domain.Claim{
		VideoID: "v1", Text: "claim", SourceQuote: "quote",
		Category: domain.ClaimCategory("editorial"),
	})
	requireValidationField(t, err, "category")

	_, err = store.SaveClaim(ctx, &domain.Claim{
		VideoID: "v1", Text: "claim", SourceQuote: "quote",
		Category: domain.CategoryFactual, Confidence: domain.ConfidenceHigh,
		Timestamp: -1,
	})
	requireValidationField(t, err, "timestamp")

	_, err = store.SaveClaim(ctx, &domain.Claim{
		VideoID: "v1", Text: "claim", SourceQuote: "quote",
		Category: domain.CategoryFactual, Confidence: domain.ConfidenceHigh,
		Timestamp: math.NaN(),
	})
	requireValidationField(t, err, "timestamp")
}

func TestQueueValidation(t *testing.T) {
	store := &DB{}
	ctx := context.Background()

	_, err := store.Enqueue(ctx, "", 0)
	requireValidationField(t, err, "video_id")

	_, err = store.ListQueue(ctx, domain.QueueStatus("done"), 10)
	requireValidationField(t, err, "status")

	_, err = store.CompleteProcessing(ctx, "v1", -1)
	requireValidationField(t, err, "claim_count")

	_, err = store.FailProcessing(ctx, "v1", "")
	requireValidationField(t, err, "failure_reason")
}

func TestMapPgError(t *testing.T) {
	conflict := mapPgError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "videos_external_id_key"})
	assert.ErrorIs(t, conflict, apperrors.ErrConflict)

	missing := mapPgError(&pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "claims_video_id_fkey"})
	assert.ErrorIs(t, missing, apperrors.ErrNotFound)

	// toUUID maps a malformed id to NULL, which surfaces as a not-null
	// violation on the referencing column.
	nullID := mapPgError(&pgconn.PgError{Code: pgNotNullViolation, ColumnName: "video_id"})
	requireValidationField(t, nullID, "video_id")

	passthrough := errors.New("connection reset")
	assert.Equal(t, passthrough, mapPgError(passthrough))
}

func TestGetClaimsByIDsEmpty(t *testing.T) {
	store := &DB{}

	claims, err := store.GetClaimsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, claims)
}
