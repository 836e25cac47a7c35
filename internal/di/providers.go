package di

import (
	"fmt"
	"net"
	"strconv"

	"QuantSift/internal/domain/repository"
	"QuantSift/internal/handler/api"
	internalrepo "QuantSift/internal/repository"
	"QuantSift/internal/service/fundamentals"
	"QuantSift/internal/service/macro"
	"QuantSift/internal/service/marketdata"
	"QuantSift/internal/service/news"
	"QuantSift/internal/service/quotes"
	"QuantSift/internal/service/ratelimit"
	"QuantSift/internal/services/screen"
	"QuantSift/internal/usecase"
	"QuantSift/pkg/cache"
	pkgch "QuantSift/pkg/clickhouse"
	"QuantSift/pkg/config"
	xhttp "QuantSift/pkg/http"
	pkgkafka "QuantSift/pkg/kafka"
	applogger "QuantSift/pkg/logger"
	"QuantSift/pkg/metrics"
	"QuantSift/pkg/queue"
	"QuantSift/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client. Schema init happens
// in the artifact store so the DDL lives next to the queries that use it.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideArtifactStore creates the ClickHouse-backed artifact store.
func ProvideArtifactStore(chClient *pkgch.Client, log *applogger.Logger) repository.ArtifactStore {
	return internalrepo.NewCHArtifactStore(chClient, log)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers
// are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRecordPublisher creates the Kafka-backed record publisher, or nil
// when Kafka is not configured.
func ProvideRecordPublisher(producer *pkgkafka.Producer, cfg *config.Config, log *applogger.Logger) repository.RecordPublisher {
	if producer == nil || cfg.Kafka.Topic == "" {
		return nil
	}
	return internalrepo.NewKafkaRecordPublisher(producer, cfg.Kafka.Topic, log)
}

// ProvideRedisClient creates the shared Redis client, or nil when disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCache builds the series cache: layered over Redis when enabled,
// in-process memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	opts := []cache.RedisOption{
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	}
	if cfg.Redis.KeyPrefix != "" {
		opts = append(opts, cache.WithRedisPrefix(cfg.Redis.KeyPrefix))
	}
	rc, err := cache.NewRedisCache(opts...)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient()
}

// ProvideRateLimiter creates the shared vendor rate limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePriceProvider creates the daily history client.
func ProvidePriceProvider(cfg *config.Config, httpClient *xhttp.Client, cacheSvc cache.Service, limiter *ratelimit.Limiter, log *applogger.Logger) repository.PriceProvider {
	return marketdata.NewClient(marketdata.Config{
		BaseURL:        cfg.MarketData.BaseURL,
		APIKey:         cfg.MarketData.APIKey,
		RequestsPerSec: cfg.MarketData.RequestsPerSec,
		Burst:          cfg.MarketData.Burst,
	}, httpClient, cacheSvc, limiter, log)
}

// ProvideMacroProvider creates the macro weight provider.
func ProvideMacroProvider(cfg *config.Config, httpClient *xhttp.Client, log *applogger.Logger) repository.MacroProvider {
	return macro.NewProvider(macro.Config{
		URL:    cfg.Macro.URL,
		APIKey: cfg.Macro.APIKey,
		Weight: cfg.Macro.Weight,
	}, httpClient, log)
}

// ProvideNewsProvider creates the headline presence provider.
func ProvideNewsProvider(cfg *config.Config, httpClient *xhttp.Client, limiter *ratelimit.Limiter, log *applogger.Logger) repository.NewsProvider {
	return news.NewProvider(news.Config{
		BaseURL:        cfg.News.BaseURL,
		APIKey:         cfg.News.APIKey,
		RequestsPerSec: cfg.News.RequestsPerSec,
	}, httpClient, limiter, log)
}

// ProvideFundamentalsProviders creates the configured fundamentals sources
// in precedence order: profile first, overview second.
func ProvideFundamentalsProviders(cfg *config.Config, httpClient *xhttp.Client, limiter *ratelimit.Limiter) []repository.FundamentalsProvider {
	var providers []repository.FundamentalsProvider
	if cfg.Fundamentals.ProfileBaseURL != "" {
		providers = append(providers, fundamentals.NewProfileProvider(fundamentals.ProfileConfig{
			BaseURL: cfg.Fundamentals.ProfileBaseURL,
			APIKey:  cfg.Fundamentals.ProfileAPIKey,
		}, httpClient, limiter))
	}
	if cfg.Fundamentals.OverviewBaseURL != "" {
		providers = append(providers, fundamentals.NewOverviewProvider(fundamentals.OverviewConfig{
			BaseURL: cfg.Fundamentals.OverviewBaseURL,
			APIKey:  cfg.Fundamentals.OverviewAPIKey,
		}, httpClient, limiter))
	}
	return providers
}

// ProvideQuoteStream creates the realtime quote stream, or nil when no
// websocket URL is configured.
func ProvideQuoteStream(cfg *config.Config, log *applogger.Logger) repository.QuoteStream {
	if cfg.Quotes.WebSocketURL == "" {
		return nil
	}
	return quotes.NewStream(quotes.Config{
		URL:            cfg.Quotes.WebSocketURL,
		APIKey:         cfg.Quotes.APIKey,
		Symbols:        cfg.Screen.Universe,
		ReconnectDelay: cfg.Quotes.ReconnectDelay,
		PingInterval:   cfg.Quotes.PingInterval,
		Staleness:      cfg.Quotes.Staleness,
	}, log)
}

// ProvideScanPipeline assembles the two-stage screening pipeline.
func ProvideScanPipeline(
	cfg *config.Config,
	prices repository.PriceProvider,
	macroProv repository.MacroProvider,
	newsProv repository.NewsProvider,
	funds []repository.FundamentalsProvider,
	quoteStream repository.QuoteStream,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ScanPipeline {
	return usecase.NewScanPipeline(usecase.PipelineConfig{
		Stage1LookbackDays: cfg.Screen.Stage1LookbackDays,
		Stage2LookbackDays: cfg.Screen.Stage2LookbackDays,
		NewsLookbackDays:   cfg.Screen.NewsLookbackDays,
		Concurrency:        cfg.Screen.Concurrency,
		DryRun:             cfg.Screen.DryRun,
	}, usecase.PipelineDeps{
		Prices:       prices,
		Macro:        macroProv,
		News:         newsProv,
		Fundamentals: funds,
		Quotes:       quoteStream,
		Scorer: screen.NewAnomalyScorer(screen.ScorerConfig{
			AnomalyLookback: cfg.Screen.AnomalyLookback,
			ZThreshold:      cfg.Screen.ZThreshold,
		}),
		Gate:       screen.NewGate(cfg.Screen.ScoreThreshold, cfg.Screen.MaxSignalsPerRun),
		Analyzer:   screen.NewStructureAnalyzer(screen.AnalyzerConfig{}),
		Reconciler: screen.NewReconciler(),
		Metrics:    m,
		Logger:     log,
	})
}

// ProvideRunRecorder creates the artifact recorder.
func ProvideRunRecorder(store repository.ArtifactStore, publisher repository.RecordPublisher, log *applogger.Logger) *usecase.RunRecorder {
	return usecase.NewRunRecorder(store, publisher, log)
}

// ProvideQueueConsumer creates the Redis-backed scan queue worker, or nil
// when the queue (or Redis) is disabled.
func ProvideQueueConsumer(cfg *config.Config, client *redis.Client, pipeline *usecase.ScanPipeline, recorder *usecase.RunRecorder, log *applogger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || client == nil {
		return nil
	}
	job := usecase.NewScanJob(pipeline, recorder, cfg.Screen.Universe, log)
	return queue.NewRedisConsumer(log, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, []queue.Job{job})
}

// ProvideQueuePublisher creates the queue publisher used by the async scan
// endpoint, or nil when the queue is disabled.
func ProvideQueuePublisher(cfg *config.Config, client *redis.Client, log *applogger.Logger) queue.QueueService {
	if !cfg.Queue.Enabled || client == nil {
		return nil
	}
	return queue.NewRedisPublisher(log, client)
}

// ProvideAPIHandler creates the HTTP API handler.
func ProvideAPIHandler(
	cfg *config.Config,
	log *applogger.Logger,
	pipeline *usecase.ScanPipeline,
	recorder *usecase.RunRecorder,
	store repository.ArtifactStore,
	q queue.QueueService,
) xhttp.Handler {
	return api.NewScansEchoHandler(log, pipeline, recorder, store, q, cfg.Screen.Universe)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	pipeline *usecase.ScanPipeline,
	recorder *usecase.RunRecorder,
	store repository.ArtifactStore,
	publisher repository.RecordPublisher,
	quoteStream repository.QuoteStream,
	consumer *queue.RedisQueue,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, log, pipeline, recorder, store, publisher, quoteStream, consumer, chClient)
	app.SetHTTPHandler(handler)
	return app
}
