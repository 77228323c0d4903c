package di

import (
	"context"
	"fmt"
	"time"

	domrepo "TickerPulse/internal/domain/repository"
	"TickerPulse/internal/handler/api"
	internalrepo "TickerPulse/internal/repository"
	"TickerPulse/internal/service/forum"
	"TickerPulse/internal/service/lexicon"
	"TickerPulse/internal/service/relevance"
	"TickerPulse/internal/service/report"
	"TickerPulse/internal/service/retention"
	"TickerPulse/internal/service/sentiment"
	"TickerPulse/internal/usecase"
	"TickerPulse/pkg/cache"
	pkgch "TickerPulse/pkg/clickhouse"
	"TickerPulse/pkg/config"
	applogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/metrics"
	"TickerPulse/pkg/server"
)

// ProvideLogger creates the application logger with an attached skip counter.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.WithDiagnostics(applogger.NewDiagnostics()), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCache creates the cache backend selected by configuration.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	return cache.New(cfg)
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// mentions schema. Returns nil when file storage is configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Storage.Type != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore selects the snapshot store backend.
func ProvideSnapshotStore(cfg *config.Config, chClient *pkgch.Client, logger *applogger.Logger) domrepo.SnapshotStore {
	if cfg.Storage.Type == "clickhouse" && chClient != nil {
		store := internalrepo.NewCHSnapshotStore(chClient)
		store.SetLogger(logger)
		return store
	}
	return internalrepo.NewFileSnapshotStore(cfg.Storage.Dir, logger)
}

// ProvidePostArchive creates the per-run post archive. Raw posts always live
// on disk; they are inputs to report generation, not analytical rows.
func ProvidePostArchive(cfg *config.Config) domrepo.PostArchive {
	return internalrepo.NewFilePostArchive(cfg.Storage.Dir)
}

// ProvidePublisher creates the Kafka run-event publisher, or a no-op one when
// Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (domrepo.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopPublisher{}, nil
	}
	pub, err := internalrepo.NewKafkaPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	return pub, nil
}

// ProvideLexicon creates the cached symbol-lexicon loader.
func ProvideLexicon(cfg *config.Config, c cache.Service, logger *applogger.Logger) usecase.LexiconSource {
	return lexicon.NewLoader(cfg, c, logger)
}

// ProvidePostSource creates the forum client.
func ProvidePostSource(cfg *config.Config, logger *applogger.Logger, m domrepo.Metrics) domrepo.PostSource {
	client := forum.NewClient(cfg, logger)
	client.SetMetrics(m)
	return client
}

// ProvideAnalyst creates the sentiment client, or nil when analysis is
// disabled; reports then fall back to the neutral rendering.
func ProvideAnalyst(cfg *config.Config) domrepo.Analyst {
	if !cfg.Sentiment.Enabled {
		return nil
	}
	return sentiment.NewClient(cfg)
}

// ProvideRelevanceFilter creates the comment relevance filter.
func ProvideRelevanceFilter(cfg *config.Config, logger *applogger.Logger, m domrepo.Metrics) *relevance.Filter {
	filter := relevance.NewFilter(relevance.Mode(cfg.Scan.RelevanceMode), cfg.Scan.MinComments, logger)
	filter.SetMetrics(m)
	return filter
}

// ProvideReportWriter creates the HTML report writer.
func ProvideReportWriter(cfg *config.Config, logger *applogger.Logger) *report.Writer {
	return report.NewWriter(cfg.Reports.Dir, logger)
}

// ProvideCleaner creates the retention cleaner.
func ProvideCleaner(cfg *config.Config, logger *applogger.Logger) *retention.Cleaner {
	return retention.NewCleaner(cfg.Reports.Keep, logger)
}

// ProvideScanRunner creates the scan stage.
func ProvideScanRunner(
	cfg *config.Config,
	lex usecase.LexiconSource,
	source domrepo.PostSource,
	store domrepo.SnapshotStore,
	archive domrepo.PostArchive,
	m domrepo.Metrics,
	logger *applogger.Logger,
) *usecase.ScanRunner {
	return usecase.NewScanRunner(cfg, lex, source, store, archive, m, logger)
}

// ProvideHotStockRunner creates the hot-stock stage.
func ProvideHotStockRunner(
	cfg *config.Config,
	store domrepo.SnapshotStore,
	archive domrepo.PostArchive,
	filter *relevance.Filter,
	analyst domrepo.Analyst,
	reports *report.Writer,
	c cache.Service,
	m domrepo.Metrics,
	logger *applogger.Logger,
) *usecase.HotStockRunner {
	return usecase.NewHotStockRunner(store, archive, filter, analyst, reports,
		c, cfg.Cache.TTL.HotStocks, m, logger)
}

// ProvidePipeline chains the stages with publication and retention.
func ProvidePipeline(
	cfg *config.Config,
	scan *usecase.ScanRunner,
	hot *usecase.HotStockRunner,
	publisher domrepo.Publisher,
	cleaner *retention.Cleaner,
	logger *applogger.Logger,
) *usecase.Pipeline {
	sweepDirs := []string{cfg.Storage.Dir, cfg.Reports.Dir}
	return usecase.NewPipeline(scan, hot, publisher, cleaner, sweepDirs, logger)
}

// ProvideHotStocksHandler creates the API handler.
func ProvideHotStocksHandler(
	cfg *config.Config,
	logger *applogger.Logger,
	store domrepo.SnapshotStore,
	c cache.Service,
	pipeline *usecase.Pipeline,
) *api.HotStocksHandler {
	return api.NewHotStocksHandler(logger, store, c, cfg.Cache.TTL.HotStocks, pipeline)
}

// ProvideLiveHandler creates the websocket push handler.
func ProvideLiveHandler(logger *applogger.Logger) *api.LiveHandler {
	return api.NewLiveHandler(logger)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	pipeline *usecase.Pipeline,
	hotstocks *api.HotStocksHandler,
	live *api.LiveHandler,
	store domrepo.SnapshotStore,
	publisher domrepo.Publisher,
	c cache.Service,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, logger, pipeline, hotstocks, live, store, publisher, c, chClient)
}
