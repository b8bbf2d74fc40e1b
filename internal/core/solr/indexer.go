package solr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
	"github.com/maelkann/cliograph/internal/platform/observability"
)

// GraphIndexer adapts the Solr client to the full-text indexer port. Errors
// are translated into the application taxonomy so callers do not depend on
// Solr sentinels.
type GraphIndexer struct {
	client *Client
	retry  RetryConfig
}

// NewGraphIndexer wraps a Solr client for claim and transcript indexing.
func NewGraphIndexer(client *Client) *GraphIndexer {
	return &GraphIndexer{
		client: client,
		retry:  DefaultRetryConfig(),
	}
}

// Enabled reports whether a Solr backend is configured.
func (g *GraphIndexer) Enabled() bool {
	return g.client.Enabled()
}

// IndexClaim indexes one claim's text and quote.
func (g *GraphIndexer) IndexClaim(ctx context.Context, claim *domain.Claim) error {
	doc := NewIndexDocument(ClaimDocID(claim.ID)).
		SetField("kind", KindClaim).
		SetField("claim_id", claim.ID).
		SetField("video_id", claim.VideoID).
		SetField("content", claim.Text).
		SetField("source_quote", claim.SourceQuote).
		SetField("category", string(claim.Category)).
		SetField("confidence", string(claim.Confidence)).
		SetField("timestamp_sec", claim.Timestamp).
		SetField("indexed_at", time.Now().UTC().Format(time.RFC3339))

	if err := g.client.IndexWithRetry(ctx, g.retry, doc); err != nil {
		observability.IndexerRequests.WithLabelValues(KindClaim, "error").Inc()

		return fmt.Errorf("index claim %s: %w", claim.ID, translate(err))
	}

	observability.IndexerRequests.WithLabelValues(KindClaim, "ok").Inc()

	return nil
}

// IndexTranscript indexes a video's full transcript text.
func (g *GraphIndexer) IndexTranscript(ctx context.Context, video *domain.Video, transcript *domain.Transcript) error {
	doc := NewIndexDocument(TranscriptDocID(video.ID)).
		SetField("kind", KindTranscript).
		SetField("video_id", video.ID).
		SetField("external_id", video.ExternalID).
		SetField("title", video.Title).
		SetField("channel", video.Channel).
		SetField("language", transcript.Language).
		SetField("content", transcript.FullText).
		SetField("indexed_at", time.Now().UTC().Format(time.RFC3339))

	if err := g.client.IndexWithRetry(ctx, g.retry, doc); err != nil {
		observability.IndexerRequests.WithLabelValues(KindTranscript, "error").Inc()

		return fmt.Errorf("index transcript for video %s: %w", video.ID, translate(err))
	}

	observability.IndexerRequests.WithLabelValues(KindTranscript, "ok").Inc()

	return nil
}

// Search returns matching document ids, claims and transcripts mixed.
func (g *GraphIndexer) Search(ctx context.Context, query string, limit int) ([]string, error) {
	resp, err := g.client.Search(ctx, query,
		WithEdismax("content title source_quote"),
		WithFields("id"),
		WithRows(limit),
	)
	if err != nil {
		observability.SearchRequests.WithLabelValues("error").Inc()

		return nil, fmt.Errorf("search index: %w", translate(err))
	}

	observability.SearchRequests.WithLabelValues("ok").Inc()

	ids := make([]string, 0, len(resp.Response.Docs))
	for _, doc := range resp.Response.Docs {
		ids = append(ids, doc.ID)
	}

	return ids, nil
}

// Ping reports backend reachability.
func (g *GraphIndexer) Ping(ctx context.Context) error {
	if err := g.client.Ping(ctx); err != nil {
		return translate(err)
	}

	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, ErrClientDisabled):
		return apperrors.ErrIndexerDisabled
	case errors.Is(err, ErrServerError):
		return fmt.Errorf("%w: %s", apperrors.ErrIndexerUnavailable, err)
	default:
		return err
	}
}
