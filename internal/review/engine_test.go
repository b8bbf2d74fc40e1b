package review

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelkann/cliograph/internal/core/domain"
	"github.com/maelkann/cliograph/internal/graph"
)

type fakeReviewSource struct {
	stale        []domain.Claim
	questions    []domain.Question
	randomClaim  *domain.Claim
	randomOpen   *domain.Question
	staleCutoffs []time.Time
}

func (f *fakeReviewSource) GetClaimsByIDs(_ context.Context, ids []string) ([]domain.Claim, error) {
	claims := make([]domain.Claim, len(ids))
	for i, id := range ids {
		claims[i] = domain.Claim{ID: id}
	}

	return claims, nil
}

func (f *fakeReviewSource) ListStaleClaims(_ context.Context, cutoff time.Time, _ int) ([]domain.Claim, error) {
	f.staleCutoffs = append(f.staleCutoffs, cutoff)

	return f.stale, nil
}

func (f *fakeReviewSource) ListQuestions(_ context.Context, status domain.QuestionStatus) ([]domain.Question, error) {
	var matched []domain.Question

	for _, question := range f.questions {
		if question.Status == status {
			matched = append(matched, question)
		}
	}

	return matched, nil
}

func (f *fakeReviewSource) PickRandomClaim(context.Context) (*domain.Claim, error) {
	return f.randomClaim, nil
}

func (f *fakeReviewSource) PickRandomOpenQuestion(context.Context) (*domain.Question, error) {
	return f.randomOpen, nil
}

func newTestEngine(source *fakeReviewSource, idx *graph.Index) *Engine {
	logger := zerolog.Nop()

	return NewEngine(source, idx, 0, &logger)
}

func TestScanReportsFindings(t *testing.T) {
	idx := graph.NewIndex()
	idx.AddClaim("orphan-1")
	idx.AddClaim("linked-1")
	idx.AddClaim("linked-2")
	idx.AddLink(&domain.Link{ID: "l1", SourceClaimID: "linked-1", TargetClaimID: "linked-2", Kind: domain.LinkSupports})

	source := &fakeReviewSource{
		stale:     []domain.Claim{{ID: "stale-1"}},
		questions: []domain.Question{{ID: "q1", Status: domain.QuestionOpen}},
	}

	report, err := newTestEngine(source, idx).Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"orphan-1"}, report.OrphanIDs)
	require.Len(t, report.Orphans, 1)
	assert.Equal(t, "orphan-1", report.Orphans[0].ID)
	require.Len(t, report.Stale, 1)
	assert.Equal(t, "stale-1", report.Stale[0].ID)
	require.Len(t, report.OpenQuestions, 1)
	assert.False(t, report.Healthy())
}

func TestScanUsesStaleCutoff(t *testing.T) {
	source := &fakeReviewSource{}

	_, err := newTestEngine(source, graph.NewIndex()).Scan(context.Background())
	require.NoError(t, err)

	require.Len(t, source.staleCutoffs, 1)

	expected := time.Now().UTC().Add(-DefaultStaleAfter)
	assert.WithinDuration(t, expected, source.staleCutoffs[0], time.Minute)
}

func TestScanHealthyOnCleanGraph(t *testing.T) {
	idx := graph.NewIndex()
	idx.AddClaim("c1")
	idx.AddClaim("c2")
	idx.AddLink(&domain.Link{ID: "l1", SourceClaimID: "c1", TargetClaimID: "c2", Kind: domain.LinkRelated})

	report, err := newTestEngine(&fakeReviewSource{}, idx).Scan(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Healthy())
}

func TestScanTracksQuestionStatusFlip(t *testing.T) {
	idx := graph.NewIndex()
	idx.AddClaim("c1")
	idx.AddClaim("c2")
	idx.AddLink(&domain.Link{ID: "l1", SourceClaimID: "c1", TargetClaimID: "c2", Kind: domain.LinkSupports})
	idx.AddQuestionEvidence("q1", "c1")

	source := &fakeReviewSource{
		questions: []domain.Question{{ID: "q1", Status: domain.QuestionOpen}},
	}
	engine := newTestEngine(source, idx)

	report, err := engine.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, report.OpenQuestions, 1)
	assert.False(t, report.Healthy())

	// Answering the question clears the last finding; its evidence stays.
	source.questions[0].Status = domain.QuestionAnswered

	report, err = engine.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.OpenQuestions)
	assert.True(t, report.Healthy())
	assert.Equal(t, []string{"c1"}, idx.QuestionEvidence("q1"))
}

func TestSuggestHandlesSparseStore(t *testing.T) {
	suggestion, err := newTestEngine(&fakeReviewSource{}, graph.NewIndex()).Suggest(context.Background())
	require.NoError(t, err)

	assert.Nil(t, suggestion.Claim)
	assert.Nil(t, suggestion.Question)

	source := &fakeReviewSource{
		randomClaim: &domain.Claim{ID: "c1"},
		randomOpen:  &domain.Question{ID: "q1"},
	}

	suggestion, err = newTestEngine(source, graph.NewIndex()).Suggest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "c1", suggestion.Claim.ID)
	assert.Equal(t, "q1", suggestion.Question.ID)
}
