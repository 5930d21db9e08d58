package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	erpv1 "github.com/fekuna/omnipos-erp-service/api/erp/v1"
	"github.com/fekuna/omnipos-erp-service/config"
	"github.com/fekuna/omnipos-erp-service/internal/app"
	"github.com/fekuna/omnipos-erp-service/pkg/broker"
	"github.com/fekuna/omnipos-erp-service/pkg/i18n"
	"github.com/fekuna/omnipos-erp-service/pkg/middleware"

	accH "github.com/fekuna/omnipos-erp-service/internal/account/handler"
	anaH "github.com/fekuna/omnipos-erp-service/internal/analytics/handler"
	anaListenerPkg "github.com/fekuna/omnipos-erp-service/internal/analytics/listener"
	anaSchedulerPkg "github.com/fekuna/omnipos-erp-service/internal/analytics/scheduler"
	custH "github.com/fekuna/omnipos-erp-service/internal/customer/handler"
	orderH "github.com/fekuna/omnipos-erp-service/internal/order/handler"
	prodH "github.com/fekuna/omnipos-erp-service/internal/product/handler"
	stockH "github.com/fekuna/omnipos-erp-service/internal/stock/handler"
	whH "github.com/fekuna/omnipos-erp-service/internal/warehouse/handler"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 1.5 Initialize i18n; extra locale files override the embedded ones
	i18n.Init()
	for _, path := range cfg.I18n.LocaleFiles {
		if err := i18n.Load(path); err != nil {
			log.Printf("Failed to load locale file %s: %v", path, err)
		}
	}

	// 2. Initialize Logger
	appLogger := app.NewLogger(cfg)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Connect backing services and build use cases
	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not initialize application", zap.Error(err))
	}
	defer a.Close()

	// 4. Initialize Handlers
	accHandler := accH.NewAccountHandler(a.Accounts, appLogger)
	whHandler := whH.NewWarehouseHandler(a.Warehouses, appLogger)
	prodHandler := prodH.NewProductHandler(a.Products, appLogger)
	custHandler := custH.NewCustomerHandler(a.Customers, appLogger)
	stockHandler := stockH.NewStockHandler(a.Stocks, appLogger)
	orderHandler := orderH.NewOrderHandler(a.Orders, appLogger)
	anaHandler := anaH.NewAnalyticsHandler(a.Analytics, appLogger)

	// 5. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.LoggingInterceptor(appLogger),
			middleware.ContextInterceptor(a.Tokens.Authenticate, erpv1.PublicMethods...),
		),
	)

	// Register Services
	erpv1.RegisterAccountServiceServer(grpcServer, accHandler)
	erpv1.RegisterWarehouseServiceServer(grpcServer, whHandler)
	erpv1.RegisterProductServiceServer(grpcServer, prodHandler)
	erpv1.RegisterCustomerServiceServer(grpcServer, custHandler)
	erpv1.RegisterStockServiceServer(grpcServer, stockHandler)
	erpv1.RegisterOrderServiceServer(grpcServer, orderHandler)
	erpv1.RegisterAnalyticsServiceServer(grpcServer, anaHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Register Reflection
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Starting gRPC server", zap.String("port", port))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})

	// 6. Background workers
	if cfg.Jobs.Enabled {
		consumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer consumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrderTopic))

		metricsListener := anaListenerPkg.NewMetricsListener(consumer, a.Analytics, appLogger)
		g.Go(func() error {
			metricsListener.Start(gctx)
			return nil
		})

		scheduler := anaSchedulerPkg.NewScheduler(a.Analytics, cfg.Jobs, appLogger)
		g.Go(func() error {
			return scheduler.Run(gctx)
		})
	}

	// Graceful Shutdown
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server exited with error", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}
