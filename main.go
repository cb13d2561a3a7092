package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appauth "github.com/alma-labs/storefront/internal/application/auth"
	appcatalog "github.com/alma-labs/storefront/internal/application/catalog"
	"github.com/alma-labs/storefront/internal/application/checkout"
	"github.com/alma-labs/storefront/internal/config"
	domaincatalog "github.com/alma-labs/storefront/internal/domain/catalog"
	domainorder "github.com/alma-labs/storefront/internal/domain/order"
	domainuser "github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/infrastructure/fulfillment"
	"github.com/alma-labs/storefront/internal/infrastructure/httpapi"
	"github.com/alma-labs/storefront/internal/infrastructure/id"
	"github.com/alma-labs/storefront/internal/infrastructure/memory"
	mongostore "github.com/alma-labs/storefront/internal/infrastructure/mongo"
	"github.com/alma-labs/storefront/internal/infrastructure/outbox"
	"github.com/alma-labs/storefront/internal/infrastructure/razorpay"
	"github.com/alma-labs/storefront/internal/infrastructure/seed"
	"github.com/alma-labs/storefront/internal/pkg/logging"
	"github.com/alma-labs/storefront/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	m := metrics.New(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		orderRepo   domainorder.Repository
		productRepo domaincatalog.Repository
		userRepo    domainuser.Repository
	)
	if cfg.MongoURI != "" {
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			logger.Fatal("mongo_connect_failed", zap.Error(err))
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warn("mongo_disconnect_failed", zap.Error(err))
			}
		}()
		db := client.Database(cfg.MongoDB)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			logger.Fatal("mongo_index_bootstrap_failed", zap.Error(err))
		}
		orderRepo = mongostore.NewOrderRepository(db)
		productRepo = mongostore.NewProductRepository(db)
		userRepo = mongostore.NewUserRepository(db)
		logger.Info("store_selected", zap.String("store", "mongo"), zap.String("db", cfg.MongoDB))
	} else {
		orderRepo = memory.NewOrderRepository()
		productRepo = memory.NewProductRepository()
		userRepo = memory.NewUserRepository()
		logger.Info("store_selected", zap.String("store", "memory"))
	}

	// Gateway variant is fixed here at startup; business logic never
	// branches on configuration.
	var gateway checkout.Gateway
	if cfg.UseRealGateway() {
		gateway = razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		logger.Info("payment_gateway_selected", zap.String("gateway", "razorpay"))
	} else {
		gateway = razorpay.NewFake("rzp_test_fake", "fake-secret")
		logger.Warn("payment_gateway_selected", zap.String("gateway", "fake"))
	}

	idGen := id.NewUUIDGenerator()

	if cfg.SeedDemoData {
		if err := seed.Demo(ctx, productRepo, userRepo, idGen); err != nil {
			logger.Fatal("seed_failed", zap.Error(err))
		}
	}

	bus := outbox.NewBus(logger)
	bus.Start(ctx)
	defer bus.Stop(context.Background())

	fulfillmentWorker := fulfillment.New(bus, logger, m)
	fulfillmentWorker.Start()

	checkoutSvc := checkout.NewService(orderRepo, productRepo, userRepo, gateway, idGen, bus, m, cfg.Currency)
	catalogSvc := appcatalog.NewService(productRepo)
	authSvc := appauth.NewService(userRepo, idGen, cfg.JWTSecret, cfg.TokenTTL)

	handler := httpapi.NewHandler(checkoutSvc, catalogSvc, authSvc, logger, m, cfg.Env == "prod")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
}
