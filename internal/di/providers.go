package di

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stocklens/internal/domain/models"
	"stocklens/internal/domain/repository"
	domsvc "stocklens/internal/domain/service"
	"stocklens/internal/handler/api"
	mid "stocklens/internal/middleware"
	internalrepo "stocklens/internal/repository"
	icache "stocklens/internal/service/cache"
	"stocklens/internal/service/finnhub"
	"stocklens/internal/service/ratelimit"
	"stocklens/internal/services/alphavantage"
	"stocklens/internal/services/marketaux"
	"stocklens/internal/services/sentiment"
	"stocklens/internal/usecase"
	"stocklens/pkg/cache"
	pkgch "stocklens/pkg/clickhouse"
	"stocklens/pkg/config"
	xhttp "stocklens/pkg/http"
	pkgkafka "stocklens/pkg/kafka"
	applogger "stocklens/pkg/logger"
	"stocklens/pkg/metrics"
	"stocklens/pkg/queue"
	"stocklens/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{Level: "info", Format: "json", Output: "stdout"}
	if cfg.Environment == "development" {
		lc.Level = "debug"
		lc.Format = "console"
	}
	return applogger.New(lc)
}

// ProvideCache creates the shared cache: layered memory-over-Redis when
// Redis is enabled, in-process otherwise. The cache backs signal reads,
// refresh locks and quotes.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	host, port := splitHostPort(cfg.Redis.Addr)
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("stocklens"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// redisCacheFrom unwraps the Redis layer from the configured cache, or
// nil when the cache is memory-only.
func redisCacheFrom(c cache.Service) *cache.RedisCache {
	switch v := c.(type) {
	case *cache.RedisCache:
		return v
	case *cache.LayeredCache:
		return v.Redis()
	default:
		return nil
	}
}

func splitHostPort(addr string) (string, int) {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideClickHouseClient creates a ClickHouse client.
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

// ProvideSignalStore creates the ClickHouse signal store and initializes
// its schema.
func ProvideSignalStore(chClient *pkgch.Client, lgr *applogger.Logger) (repository.SignalStore, error) {
	store := internalrepo.NewCHSignalStore(chClient)
	store.SetLogger(lgr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("signal store schema: %w", err)
	}
	return store, nil
}

// ProvidePublisher creates the Kafka signal event publisher, or nil when
// Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the shared outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	timeout := cfg.AlphaVantage.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return xhttp.NewClient(xhttp.WithTimeout(timeout))
}

// ProvideRateLimiter creates the shared token bucket limiter used by the
// provider clients and the refresh endpoint.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePriceFeed creates the Alpha Vantage OHLC feed.
func ProvidePriceFeed(cfg *config.Config, hc *xhttp.Client, rl *ratelimit.Limiter, lgr *applogger.Logger) repository.PriceFeed {
	return alphavantage.NewClient(
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.BaseURL,
		hc, rl, lgr,
		alphavantage.WithOutputSize(cfg.AlphaVantage.OutputSize),
		alphavantage.WithRatePerMin(cfg.AlphaVantage.RatePerMin),
	)
}

// ProvideNewsFeed creates the Marketaux news feed.
func ProvideNewsFeed(cfg *config.Config, hc *xhttp.Client, rl *ratelimit.Limiter, lgr *applogger.Logger) repository.NewsFeed {
	return marketaux.NewClient(
		cfg.Marketaux.APIKey,
		cfg.Marketaux.BaseURL,
		hc, rl, lgr,
		marketaux.WithRatePerMin(cfg.Marketaux.RatePerMin),
	)
}

// ProvideSentimentAnalyzer creates the lexicon sentiment analyzer.
func ProvideSentimentAnalyzer() domsvc.SentimentAnalyzer {
	return sentiment.NewAnalyzer()
}

// ProvideScorer builds the hybrid scorer from the configured bias table.
func ProvideScorer(cfg *config.Config) *usecase.Scorer {
	return usecase.NewScorer(biasPolicyFromConfig(cfg.Engine.Bias))
}

// biasPolicyFromConfig maps the YAML bias table onto the directional
// policy. Unknown zones or directions are ignored; an empty table keeps
// the default policy.
func biasPolicyFromConfig(bias map[string][]string) usecase.BiasPolicy {
	if len(bias) == 0 {
		return nil
	}

	zones := map[string]models.RSIZone{
		string(models.ZoneOversold):   models.ZoneOversold,
		string(models.ZoneNeutral):    models.ZoneNeutral,
		string(models.ZoneOverbought): models.ZoneOverbought,
	}
	directions := map[string]models.Direction{
		string(models.DirectionLong):  models.DirectionLong,
		string(models.DirectionShort): models.DirectionShort,
	}

	policy := usecase.DefaultBiasPolicy()
	for zoneName, dirNames := range bias {
		zone, ok := zones[strings.ToUpper(zoneName)]
		if !ok {
			continue
		}
		var dirs []models.Direction
		for _, d := range dirNames {
			if dir, ok := directions[strings.ToUpper(d)]; ok {
				dirs = append(dirs, dir)
			}
		}
		policy[zone] = dirs
	}
	return policy
}

// ProvideAnalyzer creates the per-key analysis pipeline.
func ProvideAnalyzer(
	prices repository.PriceFeed,
	news repository.NewsFeed,
	sent domsvc.SentimentAnalyzer,
	scorer *usecase.Scorer,
	lgr *applogger.Logger,
	cfg *config.Config,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(prices, news, sent, scorer, lgr, cfg.Marketaux.Limit, cfg.Engine.NewsMaxAge)
}

// ProvideRefresher creates the refresh orchestrator.
func ProvideRefresher(
	cfg *config.Config,
	analyzer *usecase.Analyzer,
	store repository.SignalStore,
	c cache.Service,
	pub repository.Publisher,
	m repository.Metrics,
	lgr *applogger.Logger,
) *usecase.Refresher {
	timeframes := make([]repository.Timeframe, 0, len(cfg.Engine.Timeframes))
	for _, tf := range cfg.Engine.Timeframes {
		timeframes = append(timeframes, repository.NormalizeTimeframe(tf))
	}

	return usecase.NewRefresher(usecase.RefresherConfig{
		Symbols:      cfg.Engine.Symbols,
		Timeframes:   timeframes,
		TickInterval: cfg.Engine.TickInterval,
		RunTimeout:   cfg.Engine.RunTimeout,
		Workers:      cfg.Engine.Workers,
		FreshnessFor: cfg.FreshnessFor,
	}, analyzer, store, c, pub, m, lgr)
}

// ProvideSignalReader creates the cached read path.
func ProvideSignalReader(store repository.SignalStore, c cache.Service, lgr *applogger.Logger) *usecase.SignalReader {
	return usecase.NewSignalReader(store, c, lgr)
}

// ProvideQueueConsumer creates the on-demand refresh consumer, or nil when
// the queue (or Redis) is disabled.
func ProvideQueueConsumer(cfg *config.Config, c cache.Service, refresher *usecase.Refresher, lgr *applogger.Logger) *queue.RedisQueue {
	rc := redisCacheFrom(c)
	if rc == nil || !cfg.Queue.Enabled {
		return nil
	}

	jobs := []queue.Job{
		usecase.NewRefreshJob(refresher),
		usecase.NewLogDigestJob(lgr),
	}
	return queue.NewRedisConsumer(lgr, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryMax,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rc.Client(), jobs)
}

// ProvideQueuePublisher creates the refresh job publisher, or nil when the
// queue (or Redis) is disabled.
func ProvideQueuePublisher(cfg *config.Config, c cache.Service, lgr *applogger.Logger) queue.QueueService {
	rc := redisCacheFrom(c)
	if rc == nil || !cfg.Queue.Enabled {
		return nil
	}
	pub := queue.NewRedisPublisher(lgr, rc.Client())

	// Error logs aggregate through the same queue; the digest job on the
	// consumer side folds repeats into one line.
	lgr.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          usecase.LogDigestJobType,
		Publisher:      pub,
	})
	return pub
}

// ProvideQuoteCollector creates the Finnhub quote collector, or nil when
// the stream is disabled.
func ProvideQuoteCollector(cfg *config.Config, c cache.Service, m repository.Metrics) *usecase.QuoteCollector {
	if !cfg.Finnhub.Enabled {
		return nil
	}

	stream := finnhub.New(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
	)
	collector := usecase.NewQuoteCollector(stream, c, m, nil, cfg.Engine.Symbols)
	collector.SetPipeline(mid.NewQuotePipeline(collector, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	))
	return collector
}

// ProvideHTTPHandler creates the signal API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	lgr *applogger.Logger,
	reader *usecase.SignalReader,
	refresher *usecase.Refresher,
	queueSvc queue.QueueService,
) xhttp.Handler {
	h := api.NewSignalsEchoHandler(lgr, reader, refresher)
	if queueSvc != nil {
		h.SetQueue(queueSvc)
	}
	if cfg.Redis.Enabled {
		h.SetResponseCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetResponseCache(icache.NewTTLCache())
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	refresher *usecase.Refresher,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
	collector *usecase.QuoteCollector,
	consumer *queue.RedisQueue,
	pub repository.Publisher,
) *server.App {
	app := server.New(cfg, lgr, refresher, chClient)
	app.SetHTTPHandler(httpHandler)
	if collector != nil {
		app.SetQuoteCollector(collector)
	}
	if consumer != nil {
		app.SetQueueConsumer(consumer)
	}
	if pub != nil {
		app.SetPublisher(pub)
	}
	return app
}
