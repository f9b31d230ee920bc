package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
	"github.com/ariefcatur/bookstore-storefront/internal/catalog"
	"github.com/ariefcatur/bookstore-storefront/internal/config"
	"github.com/ariefcatur/bookstore-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/bookstore-storefront/internal/kafka"
	"github.com/ariefcatur/bookstore-storefront/internal/logger"
	"github.com/ariefcatur/bookstore-storefront/internal/metrics"
	"github.com/ariefcatur/bookstore-storefront/internal/orders"
	"github.com/ariefcatur/bookstore-storefront/internal/postgres"
	"github.com/ariefcatur/bookstore-storefront/internal/redisx"
	"github.com/ariefcatur/bookstore-storefront/internal/users"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", cfg.ServiceName))
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		lg.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	version, err := postgres.Migrate(db)
	if err != nil {
		lg.Fatal("db migrate", zap.Error(err))
	}
	lg.Info("schema ready", zap.Uint("version", version))

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024, lg)
	prod.Start(ctx)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Repos, services & handlers
	productRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	checkout := &orders.Service{
		Validator:   &orders.PriceValidator{Catalog: productRepo},
		Writer:      orderRepo,
		Redis:       rdb,
		Producer:    prod,
		Logger:      lg.Named("checkout"),
		ServiceName: cfg.ServiceName,
	}

	router := httpx.NewRouter(lg.Named("http"), cfg.FrontendURL, reg)
	(&httpx.AuthHandler{
		Users:  &users.Repo{DB: db},
		Tokens: tokens,
		Admin:  httpx.Admin{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword},
		Logger: lg,
	}).Register(router)
	(&httpx.ProductsHandler{
		Store:  productRepo,
		Getter: &catalog.Cache{Repo: productRepo, Redis: rdb, Logger: lg},
		Tokens: tokens,
		Logger: lg,
	}).Register(router)
	(&httpx.OrdersHandler{Orders: orderRepo, Tokens: tokens, Logger: lg}).Register(router)
	(&httpx.CheckoutHandler{
		Service: checkout,
		Tokens:  tokens,
		Metrics: metrics.NewCheckout(reg),
		Logger:  lg,
		Debug:   !cfg.Production(),
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		lg.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	lg.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Warn("http shutdown", zap.Error(err))
	}
	prod.Close()
	prod.WaitClosed()
}
