//go:build wireinject
// +build wireinject

package di

import (
	"QuantSift/pkg/config"
	"QuantSift/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisClient,
		ProvideCache,
		ProvideHTTPClient,
		ProvideRateLimiter,

		// Repositories
		ProvideArtifactStore,
		ProvideRecordPublisher,

		// Data providers
		ProvidePriceProvider,
		ProvideMacroProvider,
		ProvideNewsProvider,
		ProvideFundamentalsProviders,
		ProvideQuoteStream,

		// Use cases
		ProvideScanPipeline,
		ProvideRunRecorder,

		// Queue
		ProvideQueueConsumer,
		ProvideQueuePublisher,

		// HTTP
		ProvideAPIHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
