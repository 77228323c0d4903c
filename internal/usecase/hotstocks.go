package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TickerPulse/internal/domain/models"
	"TickerPulse/internal/domain/repository"
	"TickerPulse/internal/service/relevance"
	"TickerPulse/internal/service/report"
	"TickerPulse/internal/service/trend"
	"TickerPulse/pkg/cache"
	applogger "TickerPulse/pkg/logger"
)

const (
	// HotStocksCacheKey is where the latest hot-stock list is cached for the
	// API handler.
	HotStocksCacheKey = "hotstocks:latest"

	SkipSentimentFailed = "sentiment_failed"
)

// HotStockRunner turns the three newest snapshots into the hot-stock list,
// collects each hot symbol's qualifying posts from the latest run's archive,
// and renders sentiment reports.
type HotStockRunner struct {
	store    repository.SnapshotStore
	archive  repository.PostArchive
	filter   *relevance.Filter
	analyst  repository.Analyst
	reports  *report.Writer
	cache    cache.Service
	cacheTTL time.Duration
	metrics  repository.Metrics
	logger   *applogger.Logger
}

func NewHotStockRunner(
	store repository.SnapshotStore,
	archive repository.PostArchive,
	filter *relevance.Filter,
	analyst repository.Analyst,
	reports *report.Writer,
	c cache.Service,
	cacheTTL time.Duration,
	m repository.Metrics,
	logger *applogger.Logger,
) *HotStockRunner {
	return &HotStockRunner{
		store:    store,
		archive:  archive,
		filter:   filter,
		analyst:  analyst,
		reports:  reports,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
		logger:   logger,
	}
}

// Run detects hot symbols and writes their reports. With fewer than three
// snapshots on record it logs and returns an empty list; that is the normal
// cold-start path, not a failure.
func (r *HotStockRunner) Run(ctx context.Context) ([]models.HotStock, error) {
	start := time.Now()

	snapshots, err := r.store.LatestN(ctx, 3)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	hot, err := trend.Detect(snapshots)
	if err != nil {
		if errors.Is(err, trend.ErrInsufficientHistory) {
			if r.logger != nil {
				r.logger.Info("not enough history for trend detection",
					applogger.Int("snapshots", len(snapshots)))
			}
			return nil, nil
		}
		return nil, fmt.Errorf("detect trends: %w", err)
	}

	if r.metrics != nil {
		r.metrics.RecordHotSymbols(len(hot))
	}
	if r.cache != nil {
		_ = r.cache.Set(ctx, HotStocksCacheKey, hot, r.cacheTTL)
	}
	if len(hot) == 0 {
		return hot, nil
	}

	runID := snapshots[0].RunID
	posts, err := r.archive.LoadRun(ctx, runID)
	if err != nil {
		return hot, fmt.Errorf("load posts for run %s: %w", runID, err)
	}

	for _, h := range hot {
		bundle := &models.SymbolPosts{
			Symbol:  h.Symbol,
			Company: h.Company,
			Posts:   r.filter.QualifyingPosts(posts, h.Symbol),
		}
		bundle.PostCount = len(bundle.Posts)
		if bundle.PostCount == 0 {
			continue
		}

		var sr *models.SentimentReport
		if r.analyst != nil {
			sr, err = r.analyst.Analyze(ctx, bundle)
			if err != nil {
				sr = nil
				if r.logger != nil {
					r.logger.Skip(SkipSentimentFailed, "sentiment analysis failed",
						applogger.String("symbol", h.Symbol),
						applogger.Error(err),
					)
				}
				if r.metrics != nil {
					r.metrics.RecordSkip(SkipSentimentFailed)
				}
			}
		}

		if r.reports != nil {
			if _, err := r.reports.WriteSymbolReport(runID, bundle, sr); err != nil {
				return hot, fmt.Errorf("write report for %s: %w", h.Symbol, err)
			}
		}
	}
	if r.reports != nil {
		if err := r.reports.WriteIndex(); err != nil {
			return hot, fmt.Errorf("write report index: %w", err)
		}
	}

	if r.metrics != nil {
		r.metrics.RecordStageDuration("hotstocks", time.Since(start).Seconds())
	}
	if r.logger != nil {
		r.logger.Info("hot stock stage complete",
			applogger.String("run_id", runID),
			applogger.Int("hot_symbols", len(hot)),
		)
	}
	return hot, nil
}
