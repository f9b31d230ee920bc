package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/bookstore-storefront/internal/catalog"
	"github.com/ariefcatur/bookstore-storefront/internal/catalogsync"
	"github.com/ariefcatur/bookstore-storefront/internal/config"
	kafkax "github.com/ariefcatur/bookstore-storefront/internal/kafka"
	"github.com/ariefcatur/bookstore-storefront/internal/logger"
	"github.com/ariefcatur/bookstore-storefront/internal/orders"
	"github.com/ariefcatur/bookstore-storefront/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	name := cfg.ServiceName + "-catalog-sync"
	lg := logger.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", name))
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &catalogsync.Service{
		Cache:       &catalog.Cache{Redis: rdb, Logger: lg},
		Redis:       rdb,
		Logger:      lg,
		ServiceName: name,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.CatalogSyncGroup, orders.TopicOrderCreated, cfg.CatalogSyncWorkers, lg)
	lg.Info("consumer started",
		zap.String("group", cfg.CatalogSyncGroup),
		zap.String("topic", orders.TopicOrderCreated),
		zap.Int("workers", cfg.CatalogSyncWorkers))
	if err := cons.Start(ctx, svc.HandleOrderCreated); err != nil {
		lg.Error("consumer exit", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("consumer stopped")
}
