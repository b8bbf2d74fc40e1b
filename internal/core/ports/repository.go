// Package ports provides domain-centric interfaces for external dependencies.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern,
// allowing business logic to remain independent of infrastructure concerns.
package ports

import (
	"context"
	"time"

	"github.com/maelkann/cliograph/internal/core/domain"
)

// TranscriptFetcher retrieves video metadata and captions from the
// hosting platform.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) (*domain.Video, *domain.Transcript, error)
}

// Indexer pushes claims and transcripts into the full-text search backend.
// Indexing is best-effort: callers log failures and continue, the graph
// store stays authoritative.
type Indexer interface {
	IndexClaim(ctx context.Context, claim *domain.Claim) error
	IndexTranscript(ctx context.Context, video *domain.Video, transcript *domain.Transcript) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Ping(ctx context.Context) error
}

// GraphSource supplies the full graph state for an index rebuild.
type GraphSource interface {
	ListAllClaims(ctx context.Context) ([]domain.Claim, error)
	ListAllLinks(ctx context.Context) ([]domain.Link, error)
	ListMOCMemberIDs(ctx context.Context) (map[string][]string, error)
	ListAllQuestionEvidence(ctx context.Context) (map[string][]string, error)
}

// QueueStore is the processing-queue surface used by workers.
type QueueStore interface {
	Enqueue(ctx context.Context, videoID string, priority int) (*domain.QueueEntry, error)
	GetQueueEntry(ctx context.Context, videoID string) (*domain.QueueEntry, error)
	ListQueue(ctx context.Context, status domain.QueueStatus, limit int) ([]domain.QueueEntry, error)
	StartNext(ctx context.Context) (*domain.QueueEntry, error)
	StartProcessing(ctx context.Context, videoID string) (*domain.QueueEntry, error)
	CompleteProcessing(ctx context.Context, videoID string, claimCount int) (*domain.QueueEntry, error)
	FailProcessing(ctx context.Context, videoID, reason string) (*domain.QueueEntry, error)
	RetryProcessing(ctx context.Context, videoID string) (*domain.QueueEntry, error)
	QueueStats(ctx context.Context) (map[domain.QueueStatus]int, error)
}

// VideoStore is the video and transcript persistence surface used by the
// ingest service.
type VideoStore interface {
	SaveVideo(ctx context.Context, video *domain.Video) (string, error)
	GetVideo(ctx context.Context, id string) (*domain.Video, error)
	GetVideoByExternalID(ctx context.Context, externalID string) (*domain.Video, error)
	SaveTranscript(ctx context.Context, transcript *domain.Transcript) error
	GetTranscript(ctx context.Context, videoID, language string) (*domain.Transcript, error)
}

// ClaimStore is the claim persistence surface used by the ingest service.
type ClaimStore interface {
	SaveClaim(ctx context.Context, claim *domain.Claim) (string, error)
	GetClaim(ctx context.Context, id string) (*domain.Claim, error)
	SaveLink(ctx context.Context, link *domain.Link) (string, error)
}

// ReviewSource supplies the health engine's reads. Everything here uses
// plain SELECTs; review scans must not count as claim access.
type ReviewSource interface {
	GetClaimsByIDs(ctx context.Context, ids []string) ([]domain.Claim, error)
	ListStaleClaims(ctx context.Context, cutoff time.Time, limit int) ([]domain.Claim, error)
	ListQuestions(ctx context.Context, status domain.QuestionStatus) ([]domain.Question, error)
	PickRandomClaim(ctx context.Context) (*domain.Claim, error)
	PickRandomOpenQuestion(ctx context.Context) (*domain.Question, error)
}
