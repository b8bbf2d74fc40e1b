package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
	"github.com/maelkann/cliograph/internal/core/ports"
	"github.com/maelkann/cliograph/internal/graph"
	"github.com/maelkann/cliograph/internal/platform/observability"
)

// Service orchestrates ingestion: fetch a video, persist it with its
// transcript, enqueue it for claim extraction, and keep the full-text
// index fed. Index failures are logged and never fail the ingest; the
// database stays authoritative.
type Service struct {
	videos  ports.VideoStore
	claims  ports.ClaimStore
	queue   ports.QueueStore
	fetcher ports.TranscriptFetcher
	indexer ports.Indexer
	index   *graph.Index
	logger  *zerolog.Logger
}

// NewService wires an ingest service.
func NewService(
	videos ports.VideoStore,
	claims ports.ClaimStore,
	queue ports.QueueStore,
	fetcher ports.TranscriptFetcher,
	indexer ports.Indexer,
	index *graph.Index,
	logger *zerolog.Logger,
) *Service {
	return &Service{
		videos:  videos,
		claims:  claims,
		queue:   queue,
		fetcher: fetcher,
		indexer: indexer,
		index:   index,
		logger:  logger,
	}
}

// IngestVideo fetches a video by URL, persists metadata and transcript,
// and places it on the processing queue. Re-ingesting an already known
// video returns the existing record's queue entry without refetching its
// transcript.
func (s *Service) IngestVideo(ctx context.Context, videoURL string, priority int) (*domain.QueueEntry, error) {
	if videoURL == "" {
		return nil, apperrors.Validationf("url", "must not be empty")
	}

	video, transcript, err := s.fetcher.Fetch(ctx, videoURL)
	if err != nil {
		return nil, err
	}

	existing, err := s.videos.GetVideoByExternalID(ctx, video.ExternalID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		s.logger.Info().Str("video", existing.ID).Str("external_id", video.ExternalID).
			Msg("video already ingested, ensuring queue entry")

		return s.queue.Enqueue(ctx, existing.ID, priority)
	}

	videoID, err := s.videos.SaveVideo(ctx, video)
	if err != nil {
		return nil, fmt.Errorf("persist video: %w", err)
	}

	video.ID = videoID
	transcript.VideoID = videoID

	if err := s.videos.SaveTranscript(ctx, transcript); err != nil {
		return nil, fmt.Errorf("persist transcript: %w", err)
	}

	entry, err := s.queue.Enqueue(ctx, videoID, priority)
	if err != nil {
		return nil, err
	}

	if err := s.indexer.IndexTranscript(ctx, video, transcript); err != nil {
		s.logger.Warn().Err(err).Str("video", videoID).Msg("transcript indexing failed, continuing")
	}

	s.logger.Info().Str("video", videoID).Str("external_id", video.ExternalID).
		Str("title", video.Title).Int("segments", len(transcript.Segments)).
		Msg("video ingested")

	return entry, nil
}

// IngestChannel ingests every feed entry of a channel that is not yet
// known. Individual fetch failures are logged and skipped so one broken
// video does not stall the channel.
func (s *Service) IngestChannel(ctx context.Context, watcher *FeedWatcher, channelID string, priority int) (int, error) {
	entries, err := watcher.ChannelVideos(ctx, channelID)
	if err != nil {
		return 0, err
	}

	ingested := 0

	for _, entry := range entries {
		_, err := s.videos.GetVideoByExternalID(ctx, entry.ExternalID)
		if err == nil {
			continue
		}

		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return ingested, err
		}

		if _, err := s.IngestVideo(ctx, entry.URL, priority); err != nil {
			s.logger.Warn().Err(err).Str("channel", channelID).Str("url", entry.URL).
				Msg("channel entry ingest failed, skipping")
			continue
		}

		ingested++
	}

	s.logger.Info().Str("channel", channelID).Int("ingested", ingested).
		Int("seen", len(entries)).Msg("channel scan finished")

	return ingested, nil
}

// Session is an in-progress claim-extraction pass over one queued video.
// Claims added through it are counted toward the queue entry's claim_count
// on completion.
type Session struct {
	service *Service
	entry   *domain.QueueEntry
	added   int
}

// Video returns the queued video id the session works on.
func (s *Session) Video() string {
	return s.entry.VideoID
}

// BeginSession claims a specific queued video for processing.
func (s *Service) BeginSession(ctx context.Context, videoID string) (*Session, error) {
	entry, err := s.queue.StartProcessing(ctx, videoID)
	if err != nil {
		return nil, err
	}

	observability.QueueTransitions.WithLabelValues(string(domain.QueueInProgress)).Inc()

	return &Session{service: s, entry: entry}, nil
}

// BeginNextSession claims the highest-priority pending video, or returns
// nil when the queue has no pending work.
func (s *Service) BeginNextSession(ctx context.Context) (*Session, error) {
	entry, err := s.queue.StartNext(ctx)
	if err != nil || entry == nil {
		return nil, err
	}

	observability.QueueTransitions.WithLabelValues(string(domain.QueueInProgress)).Inc()

	return &Session{service: s, entry: entry}, nil
}

// AddClaim persists one extracted claim, registers it in the graph index,
// and feeds the full-text index best-effort.
func (s *Session) AddClaim(ctx context.Context, claim *domain.Claim) (string, error) {
	claim.VideoID = s.entry.VideoID

	id, err := s.service.claims.SaveClaim(ctx, claim)
	if err != nil {
		return "", err
	}

	claim.ID = id
	s.service.index.AddClaim(id)
	s.added++
	observability.ClaimsCreated.WithLabelValues(string(claim.Category)).Inc()

	if err := s.service.indexer.IndexClaim(ctx, claim); err != nil {
		s.service.logger.Warn().Err(err).Str("claim", id).Msg("claim indexing failed, continuing")
	}

	return id, nil
}

// AddLink persists a link between two claims and mirrors it into the
// graph index.
func (s *Session) AddLink(ctx context.Context, link *domain.Link) (string, error) {
	id, err := s.service.claims.SaveLink(ctx, link)
	if err != nil {
		return "", err
	}

	link.ID = id
	s.service.index.AddLink(link)
	observability.LinksCreated.WithLabelValues(string(link.Kind)).Inc()

	return id, nil
}

// Complete marks the session's video completed with the number of claims
// added during the session.
func (s *Session) Complete(ctx context.Context) (*domain.QueueEntry, error) {
	entry, err := s.service.queue.CompleteProcessing(ctx, s.entry.VideoID, s.added)
	if err != nil {
		return nil, err
	}

	observability.QueueTransitions.WithLabelValues(string(domain.QueueCompleted)).Inc()
	s.service.logger.Info().Str("video", s.entry.VideoID).Int("claims", s.added).
		Msg("processing completed")

	return entry, nil
}

// Fail marks the session's video failed with a reason. Claims already
// added stay in the graph.
func (s *Session) Fail(ctx context.Context, reason string) (*domain.QueueEntry, error) {
	entry, err := s.service.queue.FailProcessing(ctx, s.entry.VideoID, reason)
	if err != nil {
		return nil, err
	}

	observability.QueueTransitions.WithLabelValues(string(domain.QueueFailed)).Inc()
	s.service.logger.Warn().Str("video", s.entry.VideoID).Str("reason", reason).
		Msg("processing failed")

	return entry, nil
}
