//go:build wireinject
// +build wireinject

package di

import (
	"TickerPulse/pkg/config"
	"TickerPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideSnapshotStore,
		ProvidePostArchive,
		ProvidePublisher,

		// Services
		ProvideLexicon,
		ProvidePostSource,
		ProvideAnalyst,
		ProvideRelevanceFilter,
		ProvideReportWriter,
		ProvideCleaner,

		// Use cases
		ProvideScanRunner,
		ProvideHotStockRunner,
		ProvidePipeline,

		// HTTP handlers and application server
		ProvideHotStocksHandler,
		ProvideLiveHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
