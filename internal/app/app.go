// Package app provides the main application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Watch mode: polls channel feeds and ingests newly published videos
//   - Review mode: periodic graph health scans and metrics refresh
//
// Each mode can be run independently or combined based on deployment needs.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maelkann/cliograph/internal/core/ports"
	"github.com/maelkann/cliograph/internal/core/solr"
	"github.com/maelkann/cliograph/internal/graph"
	"github.com/maelkann/cliograph/internal/ingest"
	"github.com/maelkann/cliograph/internal/platform/config"
	"github.com/maelkann/cliograph/internal/platform/observability"
	"github.com/maelkann/cliograph/internal/platform/worker"
	"github.com/maelkann/cliograph/internal/review"
	db "github.com/maelkann/cliograph/internal/storage"
)

const (
	reviewScanLockID  = int64(94231)
	reviewScanTimeout = 5 * time.Minute
	metricsInterval   = time.Minute
)

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	index    *graph.Index
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		index:    graph.NewIndex(),
		logger:   logger,
	}
}

// Init rebuilds the in-memory graph index from the store. Call once after
// migrations, before running any mode.
func (a *App) Init(ctx context.Context) error {
	if err := a.index.Rebuild(ctx, a.database); err != nil {
		return fmt.Errorf("initial index rebuild: %w", err)
	}

	a.logger.Info().Int("claims", a.index.ClaimCount()).Msg("graph index built")

	return nil
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunWatch runs the channel watch mode: poll feeds, ingest new uploads.
func (a *App) RunWatch(ctx context.Context) error {
	ingestCfg := a.cfg.IngestCfg()

	a.logger.Info().Strs("channels", ingestCfg.WatchChannels).Msg("Starting watch mode")

	if len(ingestCfg.WatchChannels) == 0 {
		return errors.New("watch mode requires WATCH_CHANNELS")
	}

	service := a.newIngestService()
	watcher := ingest.NewFeedWatcher(a.logger)

	return worker.Loop(ctx, worker.Config{
		Name:         "channel-watch",
		PollInterval: ingestCfg.WatchInterval,
		Poll: func(ctx context.Context) error {
			// A single broken channel must not block the others.
			for _, channelID := range ingestCfg.WatchChannels {
				ingested, err := service.IngestChannel(ctx, watcher, channelID, ingestCfg.DefaultPriority)
				if err != nil {
					a.logger.Warn().Err(err).Str("channel", channelID).Msg("channel scan failed")
					continue
				}

				observability.VideosIngested.WithLabelValues(channelID).Add(float64(ingested))
			}

			return nil
		},
		PeriodicTasks: []worker.PeriodicTask{{
			Name:     "queue-metrics",
			Interval: metricsInterval,
			Run:      a.refreshQueueMetrics,
		}},
		Logger: a.logger,
	})
}

// RunReview runs the review mode: periodic health scans plus metrics refresh.
func (a *App) RunReview(ctx context.Context) error {
	reviewCfg := a.cfg.ReviewCfg()

	a.logger.Info().Dur("interval", reviewCfg.Interval).Msg("Starting review mode")

	engine := review.NewEngine(a.database, a.index, reviewCfg.StaleAfter, a.logger)
	engine.SetStaleLimit(reviewCfg.StaleLimit)

	return worker.SingleTickerLoop(ctx, worker.SingleTickerConfig{
		Name:       "review",
		Interval:   reviewCfg.Interval,
		RunOnStart: true,
		OnTick: func(ctx context.Context) {
			a.runReviewOnce(ctx, engine)
		},
		SecondaryInterval: metricsInterval,
		OnSecondaryTick:   a.refreshQueueMetrics,
		Logger:            a.logger,
	})
}

// IngestOnce fetches and enqueues a single video by URL. Used by one-shot
// invocations.
func (a *App) IngestOnce(ctx context.Context, videoURL string) error {
	service := a.newIngestService()

	entry, err := service.IngestVideo(ctx, videoURL, a.cfg.DefaultPriority)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", videoURL, err)
	}

	a.logger.Info().Str("video", entry.VideoID).Str("status", string(entry.Status)).
		Msg("video queued")

	return nil
}

// runReviewOnce runs one health scan under an advisory lock so concurrent
// instances do not duplicate the work.
func (a *App) runReviewOnce(ctx context.Context, engine *review.Engine) {
	defer worker.RecoverPanic(a.logger, "review scan")

	err := worker.RunWithTimeout(ctx, reviewScanTimeout, func(ctx context.Context) error {
		acquired, err := a.database.TryAcquireAdvisoryLock(ctx, reviewScanLockID)
		if err != nil {
			return fmt.Errorf("acquire scan lock: %w", err)
		}

		if !acquired {
			return nil
		}

		defer func() {
			if err := a.database.ReleaseAdvisoryLock(ctx, reviewScanLockID); err != nil {
				a.logger.Warn().Err(err).Msg("release review scan lock failed")
			}
		}()

		started := time.Now()

		report, err := engine.Scan(ctx)
		if err != nil {
			return err
		}

		observability.ReviewScanDuration.Observe(time.Since(started).Seconds())
		observability.OrphanClaims.Set(float64(len(report.OrphanIDs)))
		observability.StaleClaims.Set(float64(len(report.Stale)))
		observability.OpenQuestions.Set(float64(len(report.OpenQuestions)))
		observability.IndexClaimCount.Set(float64(a.index.ClaimCount()))

		return nil
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("review scan failed")
	}
}

func (a *App) refreshQueueMetrics(ctx context.Context) {
	stats, err := a.database.GetGraphStats(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("failed to fetch graph stats")
		}

		return
	}

	for status, count := range stats.Queue {
		observability.QueueDepth.WithLabelValues(string(status)).Set(float64(count))
	}

	observability.GraphEntities.WithLabelValues("videos").Set(float64(stats.Videos))
	observability.GraphEntities.WithLabelValues("claims").Set(float64(stats.Claims))
	observability.GraphEntities.WithLabelValues("links").Set(float64(stats.Links))
	observability.GraphEntities.WithLabelValues("mocs").Set(float64(stats.MOCs))
	observability.GraphEntities.WithLabelValues("patterns").Set(float64(stats.Patterns))
	observability.GraphEntities.WithLabelValues("framework_annotations").Set(float64(stats.Frameworks))
}

func (a *App) newIngestService() *ingest.Service {
	ingestCfg := a.cfg.IngestCfg()

	fetcher := ingest.NewFetcher(ingest.FetcherConfig{
		Binary:            ingestCfg.YtDlpPath,
		Language:          ingestCfg.CaptionLanguage,
		Timeout:           ingestCfg.FetchTimeout,
		RequestsPerSecond: ingestCfg.FetchRPS,
	}, a.logger)

	return ingest.NewService(a.database, a.database, a.database,
		fetcher, a.newIndexer(), a.index, a.logger)
}

// newIndexer creates the full-text indexer. With no Solr backend
// configured the indexer stays disabled and every call is a logged no-op.
func (a *App) newIndexer() ports.Indexer {
	solrCfg := a.cfg.SolrCfg()

	client := solr.New(solr.Config{
		BaseURL: solrCfg.BaseURL,
		Timeout: solrCfg.Timeout,
	})

	if !client.Enabled() {
		a.logger.Info().Msg("full-text indexing disabled, no SOLR_BASE_URL")
	}

	return solr.NewGraphIndexer(client)
}
