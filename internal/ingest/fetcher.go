// Package ingest brings new videos into the graph: fetching metadata and
// captions from the hosting platform, persisting them, and driving the
// processing queue.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
	"github.com/maelkann/cliograph/internal/platform/observability"
)

const (
	defaultFetchTimeout = 2 * time.Minute
	defaultFetchRate    = rate.Limit(0.5) // one fetch per two seconds
	defaultFetchBurst   = 1
	subtitleFormat      = "json3"
)

// FetcherConfig configures the yt-dlp transcript fetcher.
type FetcherConfig struct {
	// Binary is the yt-dlp executable path.
	Binary string
	// Language is the caption language to request.
	Language string
	// Timeout bounds one fetch, metadata and captions together.
	Timeout time.Duration
	// RequestsPerSecond paces calls against the platform.
	RequestsPerSecond float64
}

// Fetcher retrieves video metadata and captions by shelling out to yt-dlp.
// Fetches are rate limited so bulk ingestion does not hammer the platform.
type Fetcher struct {
	binary   string
	language string
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   *zerolog.Logger
}

// NewFetcher creates a Fetcher. Zero-value config fields fall back to
// defaults.
func NewFetcher(cfg FetcherConfig, logger *zerolog.Logger) *Fetcher {
	binary := cfg.Binary
	if binary == "" {
		binary = "yt-dlp"
	}

	language := cfg.Language
	if language == "" {
		language = "en"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	limit := rate.Limit(cfg.RequestsPerSecond)
	if limit <= 0 {
		limit = defaultFetchRate
	}

	return &Fetcher{
		binary:   binary,
		language: language,
		timeout:  timeout,
		limiter:  rate.NewLimiter(limit, defaultFetchBurst),
		logger:   logger,
	}
}

// videoMetadata is the subset of yt-dlp --dump-json output we keep.
type videoMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date"`
	Description string `json:"description"`
	WebpageURL  string `json:"webpage_url"` //nolint:tagliatelle // yt-dlp field name
}

// Fetch retrieves a video's metadata and caption track. A failure of any
// stage wraps ErrFetchFailed; nothing is persisted here.
func (f *Fetcher) Fetch(ctx context.Context, videoURL string) (*domain.Video, *domain.Transcript, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("fetch rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	started := time.Now()

	video, transcript, err := f.fetch(ctx, videoURL)

	observability.FetchDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		observability.FetchesTotal.WithLabelValues("error").Inc()

		return nil, nil, err
	}

	observability.FetchesTotal.WithLabelValues("ok").Inc()

	return video, transcript, nil
}

func (f *Fetcher) fetch(ctx context.Context, videoURL string) (*domain.Video, *domain.Transcript, error) {
	video, err := f.fetchMetadata(ctx, videoURL)
	if err != nil {
		return nil, nil, err
	}

	transcript, err := f.fetchCaptions(ctx, videoURL, video.ExternalID)
	if err != nil {
		return nil, nil, err
	}

	return video, transcript, nil
}

func (f *Fetcher) fetchMetadata(ctx context.Context, videoURL string) (*domain.Video, error) {
	out, err := f.run(ctx, "--dump-json", "--skip-download", "--no-warnings", videoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata for %s: %s", apperrors.ErrFetchFailed, videoURL, err)
	}

	var meta videoMetadata
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("%w: parse metadata for %s: %s", apperrors.ErrFetchFailed, videoURL, err)
	}

	if meta.ID == "" {
		return nil, fmt.Errorf("%w: empty video id for %s", apperrors.ErrFetchFailed, videoURL)
	}

	channel := meta.Channel
	if channel == "" {
		channel = meta.Uploader
	}

	video := &domain.Video{
		ExternalID:  meta.ID,
		URL:         meta.WebpageURL,
		Title:       meta.Title,
		Channel:     channel,
		Description: meta.Description,
		FetchedAt:   time.Now().UTC(),
	}

	if video.URL == "" {
		video.URL = videoURL
	}

	if meta.UploadDate != "" {
		// yt-dlp emits upload_date as YYYYMMDD; dateparse also copes with
		// the occasional full timestamp.
		uploaded, err := dateparse.ParseAny(meta.UploadDate)
		if err != nil {
			f.logger.Warn().Str("video", meta.ID).Str("upload_date", meta.UploadDate).
				Err(err).Msg("unparseable upload date, leaving empty")
		} else {
			video.UploadDate = uploaded.UTC()
		}
	}

	return video, nil
}

func (f *Fetcher) fetchCaptions(ctx context.Context, videoURL, externalID string) (*domain.Transcript, error) {
	dir, err := os.MkdirTemp("", "captions-*")
	if err != nil {
		return nil, fmt.Errorf("create caption dir: %w", err)
	}

	defer func() {
		_ = os.RemoveAll(dir)
	}()

	_, err = f.run(ctx,
		"--skip-download",
		"--write-subs", "--write-auto-subs",
		"--sub-langs", f.language,
		"--sub-format", subtitleFormat,
		"--no-warnings",
		"-o", filepath.Join(dir, "%(id)s"),
		videoURL,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: captions for %s: %s", apperrors.ErrFetchFailed, videoURL, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s.%s", externalID, f.language, subtitleFormat))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: no %s captions for %s", apperrors.ErrFetchFailed, f.language, videoURL)
	}

	transcript, err := ParseJSON3(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse captions for %s: %s", apperrors.ErrFetchFailed, videoURL, err)
	}

	transcript.Language = f.language

	return transcript, nil
}

func (f *Fetcher) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, f.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}

		return nil, fmt.Errorf("%s: %s", f.binary, detail)
	}

	return stdout.Bytes(), nil
}
