//go:build wireinject
// +build wireinject

package di

import (
	"stocklens/pkg/config"
	"stocklens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient infrastructure
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideHTTPClient,
		ProvideRateLimiter,

		// Repositories
		ProvideSignalStore,
		ProvidePublisher,

		// Feeds and scoring
		ProvidePriceFeed,
		ProvideNewsFeed,
		ProvideSentimentAnalyzer,
		ProvideScorer,

		// Use cases
		ProvideAnalyzer,
		ProvideRefresher,
		ProvideSignalReader,
		ProvideQueueConsumer,
		ProvideQueuePublisher,
		ProvideQuoteCollector,

		// HTTP surface and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
