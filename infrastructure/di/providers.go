package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/go-redis/redis/v8"
	"github.com/google/wire"
	"go.uber.org/zap"

	"clothing-api/application/ports"
	"clothing-api/application/services"
	"clothing-api/infrastructure/config"
	"clothing-api/infrastructure/messaging/eventbridge"
	"clothing-api/infrastructure/persistence/cache"
	"clothing-api/infrastructure/persistence/decorators"
	"clothing-api/infrastructure/persistence/dynamodb"
	"clothing-api/infrastructure/persistence/leveldb"
	"clothing-api/infrastructure/persistence/sqlstore"
	"clothing-api/pkg/errors"
	"clothing-api/pkg/observability"
)

// ServiceName names the service in traces and metrics.
const ServiceName = "clothing-api"

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideRedisClient,
	ProvideMetrics,
	ProvideTracer,
	ProvideErrorHandler,
	ProvideEventPublisher,
	ProvideRepository,
	ProvideClothingService,
	wire.Struct(new(Container), "*"),
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build(zap.Fields(zap.String("service", ServiceName)))
}

// ProvideAWSConfig creates AWS configuration. The SDK retryer is disabled
// and clients are instrumented for X-Ray when tracing is on.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client. DYNAMODB_ENDPOINT points
// it at DynamoDB Local or LocalStack.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideRedisClient connects to Redis. It returns nil when no address is
// configured.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func()) {
	if !cfg.CacheEnabled() {
		return nil, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		MaxRetries: -1,
	})
	return client, func() { _ = client.Close() }
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are
// disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("clothing_api")
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(ServiceName, cfg.EnableTracing)
}

// ProvideErrorHandler creates the error handler. Stack traces are exposed in
// development only.
func ProvideErrorHandler(logger *zap.Logger, cfg *config.Config) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideEventPublisher creates the EventBridge publisher, or a no-op one
// when EVENT_BUS_NAME is unset.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NoopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideRepository opens the configured store backend and wraps it with
// the metrics and cache decorators.
func ProvideRepository(
	ctx context.Context,
	cfg *config.Config,
	client *awsdynamodb.Client,
	rdb *redis.Client,
	collector *observability.Collector,
	logger *zap.Logger,
) (ports.ClothingRepository, func(), error) {
	base, cleanup, err := openBackend(ctx, cfg, client, logger)
	if err != nil {
		return nil, nil, err
	}

	repo := base
	if collector != nil {
		repo = decorators.NewMetricsRepository(repo, collector)
	}
	if rdb != nil {
		repo = cache.NewCachingRepository(repo, cache.NewRedisCache(rdb), cfg.CacheTTL(), logger, collector)
	}

	logger.Info("Repository ready",
		zap.String("backend", cfg.StoreBackend),
		zap.Bool("cache", rdb != nil),
		zap.Bool("metrics", collector != nil),
	)
	return repo, cleanup, nil
}

func openBackend(ctx context.Context, cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (ports.ClothingRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendDynamoDB:
		return dynamodb.NewClothingRepository(client, cfg.TableName, logger), func() {}, nil

	case config.BackendSQLite, config.BackendMySQL:
		db, err := sqlstore.Open(ctx, cfg.StoreBackend, cfg.SQLDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlstore.EnsureSchema(ctx, db, cfg.TableName); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlstore.NewClothingRepository(db, cfg.TableName, logger), func() { _ = db.Close() }, nil

	case config.BackendLevelDB:
		db, err := leveldb.Open(cfg.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		return leveldb.NewClothingRepository(db, logger), func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}

// ProvideClothingService creates the request service
func ProvideClothingService(
	repo ports.ClothingRepository,
	publisher ports.EventPublisher,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.ClothingService {
	return services.NewClothingService(repo, publisher, tracer, logger)
}
