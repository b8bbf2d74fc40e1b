// Package graph maintains the derived in-memory index over the stored
// graph: claim adjacency, orphan tracking, MOC membership, and question
// evidence. The database stays authoritative; the index is rebuilt from it
// at startup and kept current incrementally afterwards. An incremental
// update must leave the index in the same state a full rebuild would
// produce.
package graph

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/maelkann/cliograph/internal/core/domain"
	"github.com/maelkann/cliograph/internal/core/ports"
)

// Neighbor is one edge of a claim's adjacency, seen from that claim.
type Neighbor struct {
	ClaimID  string
	Kind     domain.LinkKind
	Outgoing bool
}

// Index is the derived graph state. Safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	claims    map[string]struct{}
	neighbors map[string][]Neighbor
	// linkCount tracks how many links touch each claim, so orphan status
	// survives duplicate-edge queries.
	linkCount  map[string]int
	mocMembers map[string]map[string]struct{}
	evidence   map[string]map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	idx := &Index{}
	idx.reset()

	return idx
}

func (idx *Index) reset() {
	idx.claims = make(map[string]struct{})
	idx.neighbors = make(map[string][]Neighbor)
	idx.linkCount = make(map[string]int)
	idx.mocMembers = make(map[string]map[string]struct{})
	idx.evidence = make(map[string]map[string]struct{})
}

// Rebuild replaces the index contents with the full state read from the
// store. Readers see either the old state or the new one, never a partial
// rebuild.
func (idx *Index) Rebuild(ctx context.Context, source ports.GraphSource) error {
	claims, err := source.ListAllClaims(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	links, err := source.ListAllLinks(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	mocs, err := source.ListMOCMemberIDs(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	evidence, err := source.ListAllQuestionEvidence(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	fresh := NewIndex()

	for i := range claims {
		fresh.addClaimLocked(claims[i].ID)
	}

	for i := range links {
		fresh.addLinkLocked(&links[i])
	}

	for mocID, claimIDs := range mocs {
		for _, claimID := range claimIDs {
			fresh.addMOCMemberLocked(mocID, claimID)
		}
	}

	for questionID, claimIDs := range evidence {
		for _, claimID := range claimIDs {
			fresh.addEvidenceLocked(questionID, claimID)
		}
	}

	idx.mu.Lock()
	idx.claims = fresh.claims
	idx.neighbors = fresh.neighbors
	idx.linkCount = fresh.linkCount
	idx.mocMembers = fresh.mocMembers
	idx.evidence = fresh.evidence
	idx.mu.Unlock()

	return nil
}

// AddClaim registers a new claim. It starts as an orphan.
func (idx *Index) AddClaim(claimID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.addClaimLocked(claimID)
}

// AddLink registers a new link in both endpoints' adjacency.
func (idx *Index) AddLink(link *domain.Link) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.addLinkLocked(link)
}

// RemoveLink drops a link from both endpoints' adjacency. Removing a link
// the index never saw is a no-op.
func (idx *Index) RemoveLink(link *domain.Link) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	outgoing := Neighbor{ClaimID: link.TargetClaimID, Kind: link.Kind, Outgoing: true}
	if !idx.dropNeighborLocked(link.SourceClaimID, outgoing) {
		return
	}

	incoming := Neighbor{ClaimID: link.SourceClaimID, Kind: link.Kind, Outgoing: false}
	idx.dropNeighborLocked(link.TargetClaimID, incoming)
}

// AddMOCMember registers a claim joining a collection. Re-adding an
// existing member is a no-op.
func (idx *Index) AddMOCMember(mocID, claimID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.addMOCMemberLocked(mocID, claimID)
}

// RemoveMOCMember registers a claim leaving a collection.
func (idx *Index) RemoveMOCMember(mocID, claimID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	members, ok := idx.mocMembers[mocID]
	if !ok {
		return
	}

	if _, ok := members[claimID]; !ok {
		return
	}

	delete(members, claimID)

	if len(members) == 0 {
		delete(idx.mocMembers, mocID)
	}
}

// AddQuestionEvidence registers a claim as evidence for a question.
// Re-adding the same pair is a no-op, matching the store's upsert.
func (idx *Index) AddQuestionEvidence(questionID, claimID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.addEvidenceLocked(questionID, claimID)
}

// Neighbors returns a claim's adjacency in insertion order.
func (idx *Index) Neighbors(claimID string) []Neighbor {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	neighbors := idx.neighbors[claimID]
	out := make([]Neighbor, len(neighbors))
	copy(out, neighbors)

	return out
}

// Orphans returns claims with no incident links in either direction,
// sorted for stable output. Collection membership and question evidence
// do not count; only links connect a claim to the graph.
func (idx *Index) Orphans() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var orphans []string

	for claimID := range idx.claims {
		if idx.linkCount[claimID] == 0 {
			orphans = append(orphans, claimID)
		}
	}

	sort.Strings(orphans)

	return orphans
}

// MOCMembers returns the member claim ids of a collection, sorted.
func (idx *Index) MOCMembers(mocID string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return sortedKeys(idx.mocMembers[mocID])
}

// QuestionEvidence returns the evidence claim ids of a question, sorted.
func (idx *Index) QuestionEvidence(questionID string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return sortedKeys(idx.evidence[questionID])
}

// ClaimCount returns how many claims the index tracks.
func (idx *Index) ClaimCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.claims)
}

func (idx *Index) addClaimLocked(claimID string) {
	idx.claims[claimID] = struct{}{}
}

func (idx *Index) addLinkLocked(link *domain.Link) {
	idx.claims[link.SourceClaimID] = struct{}{}
	idx.claims[link.TargetClaimID] = struct{}{}

	idx.neighbors[link.SourceClaimID] = append(idx.neighbors[link.SourceClaimID],
		Neighbor{ClaimID: link.TargetClaimID, Kind: link.Kind, Outgoing: true})
	idx.neighbors[link.TargetClaimID] = append(idx.neighbors[link.TargetClaimID],
		Neighbor{ClaimID: link.SourceClaimID, Kind: link.Kind, Outgoing: false})

	idx.linkCount[link.SourceClaimID]++
	idx.linkCount[link.TargetClaimID]++
}

func (idx *Index) addMOCMemberLocked(mocID, claimID string) {
	members, ok := idx.mocMembers[mocID]
	if !ok {
		members = make(map[string]struct{})
		idx.mocMembers[mocID] = members
	}

	members[claimID] = struct{}{}
}

func (idx *Index) dropNeighborLocked(claimID string, target Neighbor) bool {
	neighbors := idx.neighbors[claimID]

	for i, neighbor := range neighbors {
		if neighbor != target {
			continue
		}

		neighbors = append(neighbors[:i], neighbors[i+1:]...)
		if len(neighbors) == 0 {
			delete(idx.neighbors, claimID)
		} else {
			idx.neighbors[claimID] = neighbors
		}

		idx.linkCount[claimID]--
		if idx.linkCount[claimID] <= 0 {
			delete(idx.linkCount, claimID)
		}

		return true
	}

	return false
}

func (idx *Index) addEvidenceLocked(questionID, claimID string) {
	pairs, ok := idx.evidence[questionID]
	if !ok {
		pairs = make(map[string]struct{})
		idx.evidence[questionID] = pairs
	}

	pairs[claimID] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
