package di

import (
	"context"
	"fmt"
	"time"

	drepo "LovePulse/internal/domain/repository"
	"LovePulse/internal/handler/api"
	internalrepo "LovePulse/internal/repository"
	"LovePulse/internal/service/classify"
	"LovePulse/internal/service/deepgram"
	"LovePulse/internal/service/feed"
	"LovePulse/internal/usecase"
	pkgch "LovePulse/pkg/clickhouse"
	"LovePulse/pkg/config"
	pkgkafka "LovePulse/pkg/kafka"
	"LovePulse/pkg/kv"
	applogger "LovePulse/pkg/logger"
	"LovePulse/pkg/metrics"
	"LovePulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideKVStore creates the Redis-backed KV store.
func ProvideKVStore(cfg *config.Config) (kv.Store, error) {
	store, err := kv.NewRedisStore(
		kv.WithAddr(cfg.Redis.Addr),
		kv.WithPassword(cfg.Redis.Password),
		kv.WithDB(cfg.Redis.DB),
		kv.WithPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return store, nil
}

// ProvideMarkets creates the market repository.
func ProvideMarkets(cfg *config.Config, store kv.Store, l *applogger.Logger) drepo.Markets {
	return internalrepo.NewMarketRepository(store,
		internalrepo.WithLock(cfg.Market.LockTTL, cfg.Market.LockRetries, cfg.Market.LockRetryWait),
		internalrepo.WithLogger(l),
	)
}

// ProvideTranscriber creates the Deepgram transcription adapter.
func ProvideTranscriber(cfg *config.Config, l *applogger.Logger) drepo.Transcriber {
	return deepgram.New(
		cfg.Deepgram.APIKey,
		cfg.Deepgram.BaseURL,
		cfg.Deepgram.Model,
		cfg.Deepgram.Timeout,
		deepgram.WithLogger(l),
	)
}

// ProvideClassifyService creates the language-model classifier service.
func ProvideClassifyService(cfg *config.Config, l *applogger.Logger) *classify.Service {
	return classify.New(
		cfg.Anthropic.APIKey,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		cfg.Anthropic.Timeout,
		cfg.Classifier.DegradedMode,
		classify.WithLogger(l),
	)
}

// ProvideClassifier exposes the service as a Classifier.
func ProvideClassifier(s *classify.Service) drepo.Classifier { return s }

// ProvidePulseGenerator exposes the service as a PulseGenerator.
func ProvidePulseGenerator(s *classify.Service) drepo.PulseGenerator { return s }

// ProvideMetrics creates the metrics recorder.
func ProvideMetrics(cfg *config.Config) drepo.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideFeedHub creates the live WebSocket feed hub.
func ProvideFeedHub(l *applogger.Logger) *feed.Hub {
	return feed.NewHub(l)
}

// ProvideKafkaProducer creates the Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideFeedPublisher fans feed entries to the live hub and, when
// configured, to Kafka.
func ProvideFeedPublisher(cfg *config.Config, hub *feed.Hub, producer *pkgkafka.Producer) drepo.FeedPublisher {
	pubs := internalrepo.MultiFeedPublisher{hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaFeedPublisher(producer, cfg.Kafka.Topic))
	}
	return pubs
}

// ProvideClickHouseClient creates the ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideAuditStore creates the analysis audit archive.
func ProvideAuditStore(client *pkgch.Client) (drepo.AuditStore, error) {
	if client == nil {
		return internalrepo.NopAuditStore{}, nil
	}
	store := internalrepo.NewClickHouseAuditStore(client.DB())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("audit schema: %w", err)
	}
	return store, nil
}

// ProvideMarketUpdater creates the price updater.
func ProvideMarketUpdater(cfg *config.Config, markets drepo.Markets, m drepo.Metrics, l *applogger.Logger) *usecase.MarketUpdater {
	return usecase.NewMarketUpdater(markets, m, cfg.Market.BasePrice, l)
}

// ProvideIndexCalculator creates the aggregate index calculator.
func ProvideIndexCalculator(cfg *config.Config, markets drepo.Markets, m drepo.Metrics, l *applogger.Logger) *usecase.IndexCalculator {
	return usecase.NewIndexCalculator(markets, m, cfg.Market.IndexScale, l)
}

// ProvideAnalyzeRecording wires the recording pipeline.
func ProvideAnalyzeRecording(
	transcriber drepo.Transcriber,
	classifier drepo.Classifier,
	updater *usecase.MarketUpdater,
	index *usecase.IndexCalculator,
	markets drepo.Markets,
	pub drepo.FeedPublisher,
	audit drepo.AuditStore,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.AnalyzeRecording {
	return usecase.NewAnalyzeRecording(transcriber, classifier, updater, index, markets, pub, audit, m, l)
}

// ProvidePulseRefresher wires the pulse path.
func ProvidePulseRefresher(
	markets drepo.Markets,
	gen drepo.PulseGenerator,
	index *usecase.IndexCalculator,
	pub drepo.FeedPublisher,
	m drepo.Metrics,
	l *applogger.Logger,
) *usecase.PulseRefresher {
	return usecase.NewPulseRefresher(markets, gen, index, pub, m, l)
}

// ProvideMarketsHandler creates the market HTTP handler.
func ProvideMarketsHandler(
	l *applogger.Logger,
	analyze *usecase.AnalyzeRecording,
	pulse *usecase.PulseRefresher,
	index *usecase.IndexCalculator,
	markets drepo.Markets,
) *api.MarketsHandler {
	return api.NewMarketsHandler(l, analyze, pulse, index, markets)
}

// ProvideFeedHandler creates the live feed HTTP handler.
func ProvideFeedHandler(l *applogger.Logger, hub *feed.Hub) *api.FeedHandler {
	return api.NewFeedHandler(l, hub)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	marketsHandler *api.MarketsHandler,
	feedHandler *api.FeedHandler,
	hub *feed.Hub,
	store kv.Store,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, l, marketsHandler, feedHandler, hub, store, producer, chClient)
}
