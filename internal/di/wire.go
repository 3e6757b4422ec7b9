//go:build wireinject
// +build wireinject

package di

import (
	"LovePulse/pkg/config"
	"LovePulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKVStore,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Repositories and provider adapters
		ProvideMarkets,
		ProvideTranscriber,
		ProvideClassifyService,
		ProvideClassifier,
		ProvidePulseGenerator,
		ProvideFeedHub,
		ProvideFeedPublisher,
		ProvideAuditStore,

		// Use cases
		ProvideMarketUpdater,
		ProvideIndexCalculator,
		ProvideAnalyzeRecording,
		ProvidePulseRefresher,

		// HTTP surface
		ProvideMarketsHandler,
		ProvideFeedHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
