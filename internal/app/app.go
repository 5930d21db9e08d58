// Package app wires configuration, infrastructure clients, repositories and
// use cases. Both the gRPC server and erpctl start from New.
package app

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-erp-service/config"
	"github.com/fekuna/omnipos-erp-service/internal/account"
	accRepoPkg "github.com/fekuna/omnipos-erp-service/internal/account/repository"
	accUCPkg "github.com/fekuna/omnipos-erp-service/internal/account/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/analytics"
	anaRepoPkg "github.com/fekuna/omnipos-erp-service/internal/analytics/repository"
	anaUCPkg "github.com/fekuna/omnipos-erp-service/internal/analytics/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/auth"
	"github.com/fekuna/omnipos-erp-service/internal/customer"
	custRepoPkg "github.com/fekuna/omnipos-erp-service/internal/customer/repository"
	custUCPkg "github.com/fekuna/omnipos-erp-service/internal/customer/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/order"
	orderRepoPkg "github.com/fekuna/omnipos-erp-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-erp-service/internal/order/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-erp-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-erp-service/internal/product/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/stock"
	stockRepoPkg "github.com/fekuna/omnipos-erp-service/internal/stock/repository"
	stockUCPkg "github.com/fekuna/omnipos-erp-service/internal/stock/usecase"
	"github.com/fekuna/omnipos-erp-service/internal/warehouse"
	whRepoPkg "github.com/fekuna/omnipos-erp-service/internal/warehouse/repository"
	whUCPkg "github.com/fekuna/omnipos-erp-service/internal/warehouse/usecase"
	"github.com/fekuna/omnipos-erp-service/migrations"
	"github.com/fekuna/omnipos-erp-service/pkg/broker"
	"github.com/fekuna/omnipos-erp-service/pkg/cache"
	"github.com/fekuna/omnipos-erp-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-erp-service/pkg/logger"
	"github.com/fekuna/omnipos-erp-service/pkg/search"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type App struct {
	Config *config.Config
	Logger logger.ZapLogger
	DB     *sqlx.DB
	Cache  *cache.RedisClient
	Search *search.Client
	Tokens *auth.TokenManager

	OrderEvents *broker.KafkaProducer
	Alerts      *broker.KafkaProducer

	Accounts   account.UseCase
	Warehouses warehouse.UseCase
	Products   product.UseCase
	Customers  customer.UseCase
	Stocks     stock.UseCase
	Orders     order.UseCase
	Analytics  analytics.UseCase

	closers []func() error
}

func NewLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}
	return logger.NewZapLogger(logConfig)
}

func NewDatabase(cfg *config.Config) (*sqlx.DB, error) {
	return postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
}

// Migrate applies the embedded schema and logs the versions it ran.
func Migrate(ctx context.Context, db *sqlx.DB, log logger.ZapLogger) error {
	applied, err := postgres.Migrate(ctx, db, migrations.FS)
	if err != nil {
		return err
	}
	log.Info("Migrations applied", zap.Strings("versions", applied))
	return nil
}

// New connects to every backing service. PostgreSQL is required; Redis and
// Elasticsearch only degrade locking, caching and search when unreachable.
func New(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	db, err := NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)
	log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		if err := Migrate(ctx, db, log); err != nil {
			a.Close()
			return nil, err
		}
	}

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Could not connect to Redis, caching and stock locks disabled", zap.Error(err))
	} else {
		a.Cache = redisClient
		a.closers = append(a.closers, redisClient.Close)
		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		log.Warn("Could not connect to Elasticsearch, product search falls back to SQL", zap.Error(err))
	} else {
		a.Search = esClient
		if err := prodUCPkg.EnsureIndex(ctx, esClient); err != nil {
			log.Warn("Could not create product index", zap.Error(err))
		}
		log.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	a.OrderEvents = broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.OrderTopic})
	a.Alerts = broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.AlertTopic})
	a.closers = append(a.closers, a.OrderEvents.Close, a.Alerts.Close)

	a.Tokens = auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	accRepo := accRepoPkg.NewPGRepository(db)
	whRepo := whRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	custRepo := custRepoPkg.NewPGRepository(db)
	stockRepo := stockRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db, cfg.Stock.DefaultReorderLevel)
	anaRepo := anaRepoPkg.NewPGRepository(db)

	a.Accounts = accUCPkg.NewAccountUseCase(accRepo, whRepo, a.Tokens, log)
	a.Warehouses = whUCPkg.NewWarehouseUseCase(whRepo, stockRepo, log)
	a.Products = prodUCPkg.NewProductUseCase(prodRepo, stockRepo, a.Cache, a.Search, log)
	a.Customers = custUCPkg.NewCustomerUseCase(custRepo, orderRepo, log)
	a.Stocks = stockUCPkg.NewStockUseCase(stockRepo, a.Cache, cfg.Stock, log)
	a.Orders = orderUCPkg.NewOrderUseCase(orderRepo, custRepo, prodRepo, whRepo, stockRepo, a.OrderEvents, log)
	a.Analytics = anaUCPkg.NewAnalyticsUseCase(anaRepo, stockRepo, a.Alerts, log)

	return a, nil
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
}
