package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maelkann/cliograph/internal/core/domain"
)

const msPerSecond = 1000

// json3Track mirrors the caption format yt-dlp downloads for json3 subs.
type json3Track struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs    int64      `json:"tStartMs"`
	DurationMs int64      `json:"dDurationMs"`
	Segs       []json3Seg `json:"segs"`
}

type json3Seg struct {
	UTF8 string `json:"utf8"`
}

// ParseJSON3 converts a json3 caption track into transcript segments.
// Styling-only events with no text are dropped, whitespace inside a cue is
// collapsed, and FullText joins all cues with single spaces.
func ParseJSON3(data []byte) (*domain.Transcript, error) {
	var track json3Track
	if err := json.Unmarshal(data, &track); err != nil {
		return nil, fmt.Errorf("decode json3 track: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(track.Events))

	var full strings.Builder

	for _, event := range track.Events {
		text := eventText(event)
		if text == "" {
			continue
		}

		segments = append(segments, domain.TranscriptSegment{
			Start:    float64(event.StartMs) / msPerSecond,
			Duration: float64(event.DurationMs) / msPerSecond,
			Text:     text,
		})

		if full.Len() > 0 {
			full.WriteByte(' ')
		}

		full.WriteString(text)
	}

	return &domain.Transcript{
		Segments: segments,
		FullText: full.String(),
	}, nil
}

func eventText(event json3Event) string {
	var b strings.Builder

	for _, seg := range event.Segs {
		b.WriteString(seg.UTF8)
	}

	// Auto captions embed newlines and music markers as bare whitespace runs.
	return strings.Join(strings.Fields(b.String()), " ")
}
