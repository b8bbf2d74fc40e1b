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

// CreateQuestion records a new open research question.
func (db *DB) CreateQuestion(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", apperrors.Validationf("text", "must not be empty")
	}

	id := newID()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO questions (id, text, status)
		VALUES ($1, $2, $3)
	`, toUUID(id), SanitizeUTF8(text), string(domain.QuestionOpen))
	if err != nil {
		return "", fmt.Errorf("insert question: %w", mapPgError(err))
	}

	return id, nil
}

// GetQuestion loads a question by id.
func (db *DB) GetQuestion(ctx context.Context, id string) (*domain.Question, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, text, status, notes, created_at, updated_at
		FROM questions
		WHERE id = $1
	`, toUUID(id))

	return scanQuestion(row)
}

// ListQuestions returns questions in one status, oldest first. An empty
// status lists everything.
func (db *DB) ListQuestions(ctx context.Context, status domain.QuestionStatus) ([]domain.Question, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.Validationf("status", "unknown question status %q", status)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, text, status, notes, created_at, updated_at
		FROM questions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question

	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}

		questions = append(questions, *question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}

	return questions, nil
}

// AddQuestionEvidence ties a claim to a question. Re-adding the same claim
// updates the relevance note instead of duplicating the row.
func (db *DB) AddQuestionEvidence(ctx context.Context, questionID, claimID, relevance string) error {
	if questionID == "" {
		return apperrors.Validationf("question_id", "must not be empty")
	}

	if claimID == "" {
		return apperrors.Validationf("claim_id", "must not be empty")
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO question_evidence (question_id, claim_id, relevance)
		VALUES ($1, $2, $3)
		ON CONFLICT (question_id, claim_id) DO UPDATE
		SET relevance = EXCLUDED.relevance
	`, toUUID(questionID), toUUID(claimID), toText(relevance))
	if err != nil {
		return fmt.Errorf("upsert question evidence: %w", mapPgError(err))
	}

	if _, err := db.Pool.Exec(ctx, `
		UPDATE questions SET updated_at = NOW() WHERE id = $1
	`, toUUID(questionID)); err != nil {
		return fmt.Errorf("touch question: %w", err)
	}

	return nil
}

// ListQuestionEvidence returns a question's evidence rows, oldest first.
func (db *DB) ListQuestionEvidence(ctx context.Context, questionID string) ([]domain.QuestionEvidence, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT question_id, claim_id, relevance, added_at
		FROM question_evidence
		WHERE question_id = $1
		ORDER BY added_at
	`, toUUID(questionID))
	if err != nil {
		return nil, fmt.Errorf("query question evidence: %w", err)
	}
	defer rows.Close()

	var evidence []domain.QuestionEvidence

	for rows.Next() {
		var (
			qID       pgtype.UUID
			cID       pgtype.UUID
			relevance pgtype.Text
		)

		e := domain.QuestionEvidence{}

		if err := rows.Scan(&qID, &cID, &relevance, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan question evidence row: %w", err)
		}

		e.QuestionID = fromUUID(qID)
		e.ClaimID = fromUUID(cID)
		e.Relevance = relevance.String

		evidence = append(evidence, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question evidence rows: %w", err)
	}

	return evidence, nil
}

// ListAllQuestionEvidence returns evidence pairs for every question without
// touching claims. Used by the graph index rebuild.
func (db *DB) ListAllQuestionEvidence(ctx context.Context) (map[string][]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT question_id, claim_id
		FROM question_evidence
		ORDER BY added_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query all question evidence: %w", err)
	}
	defer rows.Close()

	evidence := make(map[string][]string)

	for rows.Next() {
		var qID, cID pgtype.UUID

		if err := rows.Scan(&qID, &cID); err != nil {
			return nil, fmt.Errorf("scan question evidence row: %w", err)
		}

		evidence[fromUUID(qID)] = append(evidence[fromUUID(qID)], fromUUID(cID))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question evidence rows: %w", err)
	}

	return evidence, nil
}

// AnswerQuestion marks an open question answered, with optional notes.
// Answering an already-answered question is a conflict.
func (db *DB) AnswerQuestion(ctx context.Context, id, notes string) (*domain.Question, error) {
	var returned pgtype.UUID

	err := db.Pool.QueryRow(ctx, `
		UPDATE questions
		SET status = $1,
			notes = $2,
			updated_at = NOW()
		WHERE id = $3
		  AND status = $4
		RETURNING id
	`, string(domain.QuestionAnswered), toText(notes), toUUID(id), string(domain.QuestionOpen)).Scan(&returned)
	if err == nil {
		return db.GetQuestion(ctx, id)
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("answer question: %w", err)
	}

	question, getErr := db.GetQuestion(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return nil, fmt.Errorf("question %s is already %s: %w", id, question.Status, apperrors.ErrConflict)
}

// ReopenQuestion moves an answered question back to open.
func (db *DB) ReopenQuestion(ctx context.Context, id string) (*domain.Question, error) {
	var returned pgtype.UUID

	err := db.Pool.QueryRow(ctx, `
		UPDATE questions
		SET status = $1,
			updated_at = NOW()
		WHERE id = $2
		  AND status = $3
		RETURNING id
	`, string(domain.QuestionOpen), toUUID(id), string(domain.QuestionAnswered)).Scan(&returned)
	if err == nil {
		return db.GetQuestion(ctx, id)
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("reopen question: %w", err)
	}

	question, getErr := db.GetQuestion(ctx, id)
	if getErr != nil {
		return nil, getErr
	}

	return nil, fmt.Errorf("question %s is already %s: %w", id, question.Status, apperrors.ErrConflict)
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var (
		id     pgtype.UUID
		status string
		notes  pgtype.Text
	)

	question := domain.Question{}

	if err := row.Scan(&id, &question.Text, &status, &notes, &question.CreatedAt, &question.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("question: %w", apperrors.ErrNotFound)
		}

		return nil, fmt.Errorf("scan question row: %w", err)
	}

	question.ID = fromUUID(id)
	question.Status = domain.QuestionStatus(status)
	question.Notes = notes.String

	return &question, nil
}
