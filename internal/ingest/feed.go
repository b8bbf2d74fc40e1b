package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

const channelFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// FeedEntry is one video discovered in a channel feed.
type FeedEntry struct {
	ExternalID string
	Title      string
	URL        string
	Published  time.Time
}

// FeedWatcher discovers new channel uploads through the platform's Atom
// feeds. It only lists; fetching and persistence stay with the Service.
type FeedWatcher struct {
	parser  *gofeed.Parser
	feedURL string
	logger  *zerolog.Logger
}

// NewFeedWatcher creates a FeedWatcher.
func NewFeedWatcher(logger *zerolog.Logger) *FeedWatcher {
	return &FeedWatcher{
		parser:  gofeed.NewParser(),
		feedURL: channelFeedURL,
		logger:  logger,
	}
}

// ChannelVideos lists the videos currently present in a channel's feed,
// newest first. Entries with an unparseable date keep a zero Published.
func (w *FeedWatcher) ChannelVideos(ctx context.Context, channelID string) ([]FeedEntry, error) {
	if channelID == "" {
		return nil, apperrors.Validationf("channel_id", "must not be empty")
	}

	feed, err := w.parser.ParseURLWithContext(fmt.Sprintf(w.feedURL, channelID), ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: channel feed %s: %s", apperrors.ErrFetchFailed, channelID, err)
	}

	entries := make([]FeedEntry, 0, len(feed.Items))

	for _, item := range feed.Items {
		entry := FeedEntry{
			ExternalID: externalIDFromFeedItem(item),
			Title:      item.Title,
			URL:        item.Link,
		}

		if entry.ExternalID == "" {
			w.logger.Warn().Str("channel", channelID).Str("link", item.Link).
				Msg("feed item without video id, skipping")
			continue
		}

		if item.PublishedParsed != nil {
			entry.Published = item.PublishedParsed.UTC()
		} else if item.Published != "" {
			if published, err := dateparse.ParseAny(item.Published); err == nil {
				entry.Published = published.UTC()
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// externalIDFromFeedItem pulls the video id out of a feed entry. The Atom
// feed uses ids shaped like "yt:video:VIDEOID".
func externalIDFromFeedItem(item *gofeed.Item) string {
	const prefix = "yt:video:"
	if strings.HasPrefix(item.GUID, prefix) {
		return strings.TrimPrefix(item.GUID, prefix)
	}

	if idx := strings.LastIndex(item.Link, "v="); idx >= 0 {
		return item.Link[idx+2:]
	}

	return ""
}
