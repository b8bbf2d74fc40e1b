package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
	"github.com/maelkann/cliograph/internal/graph"
)

type fakeStore struct {
	videos      map[string]*domain.Video
	transcripts map[string]*domain.Transcript
	claims      map[string]*domain.Claim
	links       map[string]*domain.Link
	queue       map[string]*domain.QueueEntry
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		videos:      make(map[string]*domain.Video),
		transcripts: make(map[string]*domain.Transcript),
		claims:      make(map[string]*domain.Claim),
		links:       make(map[string]*domain.Link),
		queue:       make(map[string]*domain.QueueEntry),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) SaveVideo(_ context.Context, video *domain.Video) (string, error) {
	for _, existing := range f.videos {
		if existing.ExternalID == video.ExternalID {
			return "", fmt.Errorf("video %s: %w", video.ExternalID, apperrors.ErrConflict)
		}
	}

	stored := *video
	stored.ID = f.id("vid")
	f.videos[stored.ID] = &stored

	return stored.ID, nil
}

func (f *fakeStore) GetVideo(_ context.Context, id string) (*domain.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return video, nil
}

func (f *fakeStore) GetVideoByExternalID(_ context.Context, externalID string) (*domain.Video, error) {
	for _, video := range f.videos {
		if video.ExternalID == externalID {
			return video, nil
		}
	}

	return nil, apperrors.ErrNotFound
}

func (f *fakeStore) SaveTranscript(_ context.Context, transcript *domain.Transcript) error {
	f.transcripts[transcript.VideoID] = transcript
	return nil
}

func (f *fakeStore) GetTranscript(_ context.Context, videoID, _ string) (*domain.Transcript, error) {
	transcript, ok := f.transcripts[videoID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return transcript, nil
}

func (f *fakeStore) SaveClaim(_ context.Context, claim *domain.Claim) (string, error) {
	stored := *claim
	stored.ID = f.id("claim")
	f.claims[stored.ID] = &stored

	return stored.ID, nil
}

func (f *fakeStore) GetClaim(_ context.Context, id string) (*domain.Claim, error) {
	claim, ok := f.claims[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return claim, nil
}

func (f *fakeStore) SaveLink(_ context.Context, link *domain.Link) (string, error) {
	stored := *link
	stored.ID = f.id("link")
	f.links[stored.ID] = &stored

	return stored.ID, nil
}

func (f *fakeStore) Enqueue(_ context.Context, videoID string, priority int) (*domain.QueueEntry, error) {
	if entry, ok := f.queue[videoID]; ok {
		return entry, nil
	}

	entry := &domain.QueueEntry{
		ID:       f.id("queue"),
		VideoID:  videoID,
		Status:   domain.QueuePending,
		Priority: priority,
	}
	f.queue[videoID] = entry

	return entry, nil
}

func (f *fakeStore) GetQueueEntry(_ context.Context, videoID string) (*domain.QueueEntry, error) {
	entry, ok := f.queue[videoID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return entry, nil
}

func (f *fakeStore) ListQueue(_ context.Context, status domain.QueueStatus, _ int) ([]domain.QueueEntry, error) {
	var entries []domain.QueueEntry

	for _, entry := range f.queue {
		if entry.Status == status {
			entries = append(entries, *entry)
		}
	}

	return entries, nil
}

func (f *fakeStore) StartNext(ctx context.Context) (*domain.QueueEntry, error) {
	for _, entry := range f.queue {
		if entry.Status == domain.QueuePending {
			return f.StartProcessing(ctx, entry.VideoID)
		}
	}

	return nil, nil
}

func (f *fakeStore) transition(videoID string, from, to domain.QueueStatus) (*domain.QueueEntry, error) {
	entry, ok := f.queue[videoID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	if entry.Status != from {
		return nil, fmt.Errorf("queue entry for video %s is %s, want %s: %w",
			videoID, entry.Status, from, apperrors.ErrInvalidTransition)
	}

	entry.Status = to

	return entry, nil
}

func (f *fakeStore) StartProcessing(_ context.Context, videoID string) (*domain.QueueEntry, error) {
	return f.transition(videoID, domain.QueuePending, domain.QueueInProgress)
}

func (f *fakeStore) CompleteProcessing(_ context.Context, videoID string, claimCount int) (*domain.QueueEntry, error) {
	entry, err := f.transition(videoID, domain.QueueInProgress, domain.QueueCompleted)
	if err != nil {
		return nil, err
	}

	entry.ClaimCount = claimCount

	return entry, nil
}

func (f *fakeStore) FailProcessing(_ context.Context, videoID, reason string) (*domain.QueueEntry, error) {
	entry, err := f.transition(videoID, domain.QueueInProgress, domain.QueueFailed)
	if err != nil {
		return nil, err
	}

	entry.FailureReason = reason

	return entry, nil
}

func (f *fakeStore) RetryProcessing(_ context.Context, videoID string) (*domain.QueueEntry, error) {
	entry, err := f.transition(videoID, domain.QueueFailed, domain.QueuePending)
	if err != nil {
		return nil, err
	}

	entry.FailureReason = ""

	return entry, nil
}

func (f *fakeStore) QueueStats(_ context.Context) (map[domain.QueueStatus]int, error) {
	stats := make(map[domain.QueueStatus]int)
	for _, entry := range f.queue {
		stats[entry.Status]++
	}

	return stats, nil
}

type fakeFetcher struct {
	video      *domain.Video
	transcript *domain.Transcript
	err        error
	calls      int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*domain.Video, *domain.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}

	video := *f.video
	transcript := *f.transcript

	return &video, &transcript, nil
}

type fakeIndexer struct {
	claims      []string
	transcripts []string
	err         error
}

func (f *fakeIndexer) IndexClaim(_ context.Context, claim *domain.Claim) error {
	if f.err != nil {
		return f.err
	}

	f.claims = append(f.claims, claim.ID)

	return nil
}

func (f *fakeIndexer) IndexTranscript(_ context.Context, video *domain.Video, _ *domain.Transcript) error {
	if f.err != nil {
		return f.err
	}

	f.transcripts = append(f.transcripts, video.ID)

	return nil
}

func (f *fakeIndexer) Search(_ context.Context, _ string, _ int) ([]string, error) {
	return nil, f.err
}

func (f *fakeIndexer) Ping(_ context.Context) error {
	return f.err
}

func newTestService(store *fakeStore, fetcher *fakeFetcher, indexer *fakeIndexer) *Service {
	logger := zerolog.Nop()
	return NewService(store, store, store, fetcher, indexer, graph.NewIndex(), &logger)
}

func sampleFetcher() *fakeFetcher {
	return &fakeFetcher{
		video: &domain.Video{
			ExternalID: "ext-1",
			URL:        "https://example.com/watch?v=ext-1",
			Title:      "The Late Bronze Age Collapse",
			Channel:    "history",
		},
		transcript: &domain.Transcript{
			Language: "en",
			Segments: []domain.TranscriptSegment{{Start: 0, Duration: 2, Text: "hello"}},
			FullText: "hello",
		},
	}
}

func TestIngestVideo(t *testing.T) {
	store := newFakeStore()
	fetcher := sampleFetcher()
	indexer := &fakeIndexer{}
	service := newTestService(store, fetcher, indexer)

	entry, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=ext-1", 5)
	require.NoError(t, err)

	assert.Equal(t, domain.QueuePending, entry.Status)
	assert.Equal(t, 5, entry.Priority)

	video, err := store.GetVideoByExternalID(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, entry.VideoID, video.ID)

	transcript, err := store.GetTranscript(context.Background(), video.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, "hello", transcript.FullText)

	assert.Equal(t, []string{video.ID}, indexer.transcripts)
}

func TestIngestVideoAlreadyKnown(t *testing.T) {
	store := newFakeStore()
	fetcher := sampleFetcher()
	service := newTestService(store, fetcher, &fakeIndexer{})

	first, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=ext-1", 0)
	require.NoError(t, err)

	second, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=ext-1", 0)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.videos, 1)
}

func TestIngestVideoFetchFailure(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{err: fmt.Errorf("%w: boom", apperrors.ErrFetchFailed)}
	service := newTestService(store, fetcher, &fakeIndexer{})

	_, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=x", 0)
	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
	assert.Empty(t, store.videos)
	assert.Empty(t, store.queue)
}

func TestIngestVideoIndexerFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, sampleFetcher(), &fakeIndexer{err: apperrors.ErrIndexerUnavailable})

	entry, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=ext-1", 0)
	require.NoError(t, err)
	assert.Equal(t, domain.QueuePending, entry.Status)
}

func TestSessionLifecycle(t *testing.T) {
	store := newFakeStore()
	indexer := &fakeIndexer{}
	service := newTestService(store, sampleFetcher(), indexer)

	entry, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=ext-1", 0)
	require.NoError(t, err)

	session, err := service.BeginNextSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, entry.VideoID, session.Video())

	first, err := session.AddClaim(context.Background(), &domain.Claim{
		Text:        "palace economies centralized grain storage",
		SourceQuote: "all the grain flowed through the palace",
		Category:    domain.CategoryFactual,
		Confidence:  domain.ConfidenceHigh,
	})
	require.NoError(t, err)

	second, err := session.AddClaim(context.Background(), &domain.Claim{
		Text:        "storage centralization amplified famine shocks",
		SourceQuote: "when the stores failed, everyone starved at once",
		Category:    domain.CategoryCausal,
		Confidence:  domain.ConfidenceMedium,
	})
	require.NoError(t, err)

	_, err = session.AddLink(context.Background(), &domain.Link{
		SourceClaimID: first,
		TargetClaimID: second,
		Kind:          domain.LinkSupports,
	})
	require.NoError(t, err)

	done, err := session.Complete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.QueueCompleted, done.Status)
	assert.Equal(t, 2, done.ClaimCount)
	assert.Equal(t, []string{first, second}, indexer.claims)
	assert.Empty(t, service.index.Orphans())
}

func TestSessionFail(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, sampleFetcher(), &fakeIndexer{})

	_, err := service.IngestVideo(context.Background(), "https://example.com/watch?v=ext-1", 0)
	require.NoError(t, err)

	session, err := service.BeginNextSession(context.Background())
	require.NoError(t, err)

	failed, err := session.Fail(context.Background(), "no extractable claims")
	require.NoError(t, err)

	assert.Equal(t, domain.QueueFailed, failed.Status)
	assert.Equal(t, "no extractable claims", failed.FailureReason)

	next, err := service.BeginNextSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestBeginNextSessionEmptyQueue(t *testing.T) {
	service := newTestService(newFakeStore(), sampleFetcher(), &fakeIndexer{})

	session, err := service.BeginNextSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestChannelVideosRequiresChannelID(t *testing.T) {
	entries, err := NewFeedWatcher(nil).ChannelVideos(context.Background(), "")
	assert.Nil(t, entries)
	assert.True(t, apperrors.IsValidation(err))
}
