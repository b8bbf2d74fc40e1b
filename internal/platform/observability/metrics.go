package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_videos_ingested_total",
		Help: "The total number of ingested videos",
	}, []string{"channel"})

	ClaimsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_claims_created_total",
		Help: "The total number of claims added to the graph",
	}, []string{"category"})

	LinksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_links_created_total",
		Help: "The total number of links added to the graph",
	}, []string{"kind"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cliograph_queue_depth",
		Help: "Number of queue entries per processing status",
	}, []string{"status"})

	QueueTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_queue_transitions_total",
		Help: "Total number of queue status transitions",
	}, []string{"to"})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cliograph_fetch_duration_seconds",
		Help:    "Duration of video metadata and caption fetches",
		Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
	})

	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_fetches_total",
		Help: "Total number of fetch attempts",
	}, []string{"status"})

	IndexClaimCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cliograph_index_claims",
		Help: "Number of claims tracked by the in-memory graph index",
	})

	OrphanClaims = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cliograph_orphan_claims",
		Help: "Number of claims with no incident links in either direction",
	})

	StaleClaims = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cliograph_stale_claims",
		Help: "Number of claims not accessed within the staleness window",
	})

	OpenQuestions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cliograph_open_questions",
		Help: "Number of research questions still open",
	})

	GraphEntities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cliograph_graph_entities",
		Help: "Number of stored entities per kind",
	}, []string{"kind"})

	ReviewScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cliograph_review_scan_duration_seconds",
		Help:    "Duration of health review scans",
		Buckets: prometheus.DefBuckets,
	})

	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_search_requests_total",
		Help: "Total number of full-text search requests",
	}, []string{"status"})

	IndexerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cliograph_indexer_requests_total",
		Help: "Total number of full-text indexing requests",
	}, []string{"kind", "status"})
)
