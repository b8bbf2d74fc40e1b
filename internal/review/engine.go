// Package review builds knowledge-health reports: orphaned claims, stale
// claims, and unanswered questions. Review scans are diagnostics; they read
// with plain queries and never count as claim access.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maelkann/cliograph/internal/core/domain"
	"github.com/maelkann/cliograph/internal/core/ports"
	"github.com/maelkann/cliograph/internal/graph"
)

// DefaultStaleAfter is how long a claim may go unread before the health
// report flags it.
const DefaultStaleAfter = 30 * 24 * time.Hour

// Report is one health scan's findings.
type Report struct {
	GeneratedAt   time.Time
	OrphanIDs     []string
	Orphans       []domain.Claim
	Stale         []domain.Claim
	OpenQuestions []domain.Question
}

// Healthy reports whether the scan found nothing to flag.
func (r *Report) Healthy() bool {
	return len(r.OrphanIDs) == 0 && len(r.Stale) == 0 && len(r.OpenQuestions) == 0
}

// Suggestion is a random review prompt: revisit one claim and one open
// question. Either field may be nil on a sparse store.
type Suggestion struct {
	Claim    *domain.Claim
	Question *domain.Question
}

// Engine runs health scans against the store and the graph index.
type Engine struct {
	source     ports.ReviewSource
	index      *graph.Index
	staleAfter time.Duration
	staleLimit int
	logger     *zerolog.Logger
}

// NewEngine creates a health engine. staleAfter <= 0 falls back to
// DefaultStaleAfter.
func NewEngine(source ports.ReviewSource, index *graph.Index, staleAfter time.Duration, logger *zerolog.Logger) *Engine {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &Engine{
		source:     source,
		index:      index,
		staleAfter: staleAfter,
		staleLimit: defaultStaleLimit,
		logger:     logger,
	}
}

const defaultStaleLimit = 100

// SetStaleLimit caps how many stale claims one scan reports. Non-positive
// values keep the default.
func (e *Engine) SetStaleLimit(limit int) {
	if limit > 0 {
		e.staleLimit = limit
	}
}

// Scan produces a health report. Orphans come from the graph index; stale
// claims and open questions come from the store.
func (e *Engine) Scan(ctx context.Context) (*Report, error) {
	now := time.Now().UTC()

	orphanIDs := e.index.Orphans()

	orphans, err := e.source.GetClaimsByIDs(ctx, orphanIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve orphan claims: %w", err)
	}

	stale, err := e.source.ListStaleClaims(ctx, now.Add(-e.staleAfter), e.staleLimit)
	if err != nil {
		return nil, fmt.Errorf("scan stale claims: %w", err)
	}

	open, err := e.source.ListQuestions(ctx, domain.QuestionOpen)
	if err != nil {
		return nil, fmt.Errorf("scan open questions: %w", err)
	}

	report := &Report{
		GeneratedAt:   now,
		OrphanIDs:     orphanIDs,
		Orphans:       orphans,
		Stale:         stale,
		OpenQuestions: open,
	}

	e.logger.Info().
		Int("orphans", len(report.OrphanIDs)).
		Int("stale", len(report.Stale)).
		Int("open_questions", len(report.OpenQuestions)).
		Msg("health scan finished")

	return report, nil
}

// Suggest picks a random claim and a random open question to revisit.
func (e *Engine) Suggest(ctx context.Context) (*Suggestion, error) {
	claim, err := e.source.PickRandomClaim(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick random claim: %w", err)
	}

	question, err := e.source.PickRandomOpenQuestion(ctx)
	if err != nil {
		return nil, fmt.Errorf("pick random question: %w", err)
	}

	return &Suggestion{Claim: claim, Question: question}, nil
}
