package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns="http://www.w3.org/2005/Atom">
  <title>Channel uploads</title>
  <entry>
    <id>yt:video:abc123xyz00</id>
    <title>Bronze Age Collapse</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123xyz00"/>
    <published>2026-08-01T10:00:00+00:00</published>
  </entry>
  <entry>
    <id>yt:video:def456uvw11</id>
    <title>Silk Road Transmission</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=def456uvw11"/>
    <published>2026-08-02T12:30:00+00:00</published>
  </entry>
  <entry>
    <id>channel-announcement</id>
    <title>No video here</title>
    <link rel="alternate" href="https://www.youtube.com/feed"/>
  </entry>
</feed>`

func newTestWatcher(t *testing.T, handler http.HandlerFunc) *FeedWatcher {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()

	return &FeedWatcher{
		parser:  gofeed.NewParser(),
		feedURL: srv.URL + "/feeds/videos.xml?channel_id=%s",
		logger:  &logger,
	}
}

func TestChannelVideosParsesFeed(t *testing.T) {
	watcher := newTestWatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UCtest", r.URL.Query().Get("channel_id"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(testFeed))
	})

	entries, err := watcher.ChannelVideos(context.Background(), "UCtest")
	require.NoError(t, err)

	// The announcement entry has no video id and is skipped.
	require.Len(t, entries, 2)
	assert.Equal(t, "abc123xyz00", entries[0].ExternalID)
	assert.Equal(t, "Bronze Age Collapse", entries[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123xyz00", entries[0].URL)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), entries[0].Published)
	assert.Equal(t, "def456uvw11", entries[1].ExternalID)
}

func TestChannelVideosFeedUnavailable(t *testing.T) {
	watcher := newTestWatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := watcher.ChannelVideos(context.Background(), "UCtest")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
}

func TestExternalIDFromFeedItem(t *testing.T) {
	tests := []struct {
		name string
		item gofeed.Item
		want string
	}{
		{"guid prefix", gofeed.Item{GUID: "yt:video:abc"}, "abc"},
		{"link fallback", gofeed.Item{GUID: "other", Link: "https://youtube.com/watch?v=xyz"}, "xyz"},
		{"no id", gofeed.Item{GUID: "other", Link: "https://youtube.com/feed"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, externalIDFromFeedItem(&tt.item))
		})
	}
}
