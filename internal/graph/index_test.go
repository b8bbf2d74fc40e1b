package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelkann/cliograph/internal/core/domain"
)

type fakeSource struct {
	claims   []domain.Claim
	links    []domain.Link
	mocs     map[string][]string
	evidence map[string][]string
}

func (f *fakeSource) ListAllClaims(context.Context) ([]domain.Claim, error) { return f.claims, nil }
func (f *fakeSource) ListAllLinks(context.Context) ([]domain.Link, error)  { return f.links, nil }
func (f *fakeSource) ListMOCMemberIDs(context.Context) (map[string][]string, error) {
	return f.mocs, nil
}
func (f *fakeSource) ListAllQuestionEvidence(context.Context) (map[string][]string, error) {
	return f.evidence, nil
}

func claimIDs(ids ...string) []domain.Claim {
	claims := make([]domain.Claim, len(ids))
	for i, id := range ids {
		claims[i] = domain.Claim{ID: id}
	}

	return claims
}

func TestIndexRebuild(t *testing.T) {
	source := &fakeSource{
		claims: claimIDs("c1", "c2", "c3", "c4"),
		links: []domain.Link{
			{ID: "l1", SourceClaimID: "c1", TargetClaimID: "c2", Kind: domain.LinkSupports},
		},
		mocs:     map[string][]string{"m1": {"c3"}},
		evidence: map[string][]string{"q1": {"c1", "c3"}},
	}

	idx := NewIndex()
	require.NoError(t, idx.Rebuild(context.Background(), source))

	assert.Equal(t, 4, idx.ClaimCount())
	// c3 sits in a collection and backs a question, but has no links:
	// still an orphan.
	assert.Equal(t, []string{"c3", "c4"}, idx.Orphans())
	assert.Equal(t, []string{"c3"}, idx.MOCMembers("m1"))
	assert.Equal(t, []string{"c1", "c3"}, idx.QuestionEvidence("q1"))

	neighbors := idx.Neighbors("c1")
	require.Len(t, neighbors, 1)
	assert.Equal(t, "c2", neighbors[0].ClaimID)
	assert.True(t, neighbors[0].Outgoing)

	back := idx.Neighbors("c2")
	require.Len(t, back, 1)
	assert.Equal(t, "c1", back[0].ClaimID)
	assert.False(t, back[0].Outgoing)
}

func TestIndexIncrementalMatchesRebuild(t *testing.T) {
	source := &fakeSource{
		claims: claimIDs("c1", "c2", "c3", "c4", "c5"),
		links: []domain.Link{
			{ID: "l1", SourceClaimID: "c1", TargetClaimID: "c2", Kind: domain.LinkSupports},
			{ID: "l2", SourceClaimID: "c3", TargetClaimID: "c1", Kind: domain.LinkContradicts},
		},
		mocs:     map[string][]string{"m1": {"c4", "c2"}},
		evidence: map[string][]string{"q1": {"c2"}},
	}

	rebuilt := NewIndex()
	require.NoError(t, rebuilt.Rebuild(context.Background(), source))

	incremental := NewIndex()
	for _, claim := range source.claims {
		incremental.AddClaim(claim.ID)
	}

	for i := range source.links {
		incremental.AddLink(&source.links[i])
	}

	for mocID, members := range source.mocs {
		for _, claimID := range members {
			incremental.AddMOCMember(mocID, claimID)
		}
	}

	for questionID, claims := range source.evidence {
		for _, claimID := range claims {
			incremental.AddQuestionEvidence(questionID, claimID)
		}
	}

	assert.Equal(t, rebuilt.Orphans(), incremental.Orphans())
	assert.Equal(t, rebuilt.MOCMembers("m1"), incremental.MOCMembers("m1"))
	assert.Equal(t, rebuilt.QuestionEvidence("q1"), incremental.QuestionEvidence("q1"))
	assert.Equal(t, rebuilt.ClaimCount(), incremental.ClaimCount())

	for _, claim := range source.claims {
		assert.Equal(t, rebuilt.Neighbors(claim.ID), incremental.Neighbors(claim.ID), "neighbors of %s", claim.ID)
	}
}

func TestIndexRemoveLinkMatchesRebuild(t *testing.T) {
	source := &fakeSource{
		claims: claimIDs("c1", "c2", "c3"),
		links: []domain.Link{
			{ID: "l1", SourceClaimID: "c1", TargetClaimID: "c2", Kind: domain.LinkSupports},
		},
	}

	rebuilt := NewIndex()
	require.NoError(t, rebuilt.Rebuild(context.Background(), source))

	// Add the same link plus an extra one, then remove the extra: the
	// incremental index must land where the rebuild does.
	incremental := NewIndex()
	for _, claim := range source.claims {
		incremental.AddClaim(claim.ID)
	}

	incremental.AddLink(&source.links[0])

	extra := domain.Link{ID: "l2", SourceClaimID: "c2", TargetClaimID: "c3", Kind: domain.LinkCauses}
	incremental.AddLink(&extra)
	incremental.RemoveLink(&extra)

	assert.Equal(t, rebuilt.Orphans(), incremental.Orphans())

	for _, claim := range source.claims {
		assert.Equal(t, rebuilt.Neighbors(claim.ID), incremental.Neighbors(claim.ID), "neighbors of %s", claim.ID)
	}

	// Removing a link the index never saw changes nothing.
	incremental.RemoveLink(&extra)
	assert.Equal(t, rebuilt.Orphans(), incremental.Orphans())
}

func TestIndexOrphanLifecycle(t *testing.T) {
	idx := NewIndex()

	idx.AddClaim("c1")
	idx.AddClaim("c2")
	assert.Equal(t, []string{"c1", "c2"}, idx.Orphans())

	// A link rescues both endpoints.
	link := domain.Link{ID: "l1", SourceClaimID: "c1", TargetClaimID: "c2", Kind: domain.LinkRelated}
	idx.AddLink(&link)
	assert.Empty(t, idx.Orphans())

	// MOC membership does not rescue a claim; only links do.
	idx.AddClaim("c3")
	idx.AddMOCMember("m1", "c3")
	assert.Equal(t, []string{"c3"}, idx.Orphans())

	// Removing the last link orphans both endpoints again.
	idx.RemoveLink(&link)
	assert.Equal(t, []string{"c1", "c2", "c3"}, idx.Orphans())
}

func TestIndexDuplicateMembershipIsNoop(t *testing.T) {
	idx := NewIndex()

	idx.AddClaim("c1")
	idx.AddMOCMember("m1", "c1")
	idx.AddMOCMember("m1", "c1")

	assert.Equal(t, []string{"c1"}, idx.MOCMembers("m1"))

	// One removal undoes any number of duplicate adds.
	idx.RemoveMOCMember("m1", "c1")
	assert.Empty(t, idx.MOCMembers("m1"))
}

func TestIndexEvidenceUpsert(t *testing.T) {
	idx := NewIndex()

	idx.AddClaim("c1")
	idx.AddQuestionEvidence("q1", "c1")
	idx.AddQuestionEvidence("q1", "c1")

	assert.Equal(t, []string{"c1"}, idx.QuestionEvidence("q1"))

	// Evidence does not rescue a claim from orphan status.
	assert.Equal(t, []string{"c1"}, idx.Orphans())
}
