package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Tato-23/TareaTiendaOnline/internal/application/catalog"
	"github.com/Tato-23/TareaTiendaOnline/internal/application/handler"
	"github.com/Tato-23/TareaTiendaOnline/internal/application/orders"
	"github.com/Tato-23/TareaTiendaOnline/internal/cache"
	"github.com/Tato-23/TareaTiendaOnline/internal/config"
	"github.com/Tato-23/TareaTiendaOnline/internal/httpapi"
	"github.com/Tato-23/TareaTiendaOnline/internal/index"
	"github.com/Tato-23/TareaTiendaOnline/internal/infrastructure/database"
	"github.com/Tato-23/TareaTiendaOnline/internal/infrastructure/kafka"
	"github.com/Tato-23/TareaTiendaOnline/internal/infrastructure/postgres"
	"github.com/Tato-23/TareaTiendaOnline/internal/observability"
	"github.com/Tato-23/TareaTiendaOnline/internal/pkg/breaker"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := postgres.MustPool(ctx, cfg.DSN(), logger)
	defer pool.Close()

	products := database.NewProductRepository(pool)
	pedidos := database.NewOrderRepository(pool)

	metrics := observability.NewInmem(256)

	idx := index.New()
	seq := cache.New()
	catalogSvc := catalog.NewService(idx, products, logger, metrics)
	ordersSvc := orders.NewService(seq, pedidos, idx, logger, metrics)

	server := httpapi.New(catalogSvc, ordersSvc, cfg.Snapshot, logger, metrics)

	if cfg.KafkaEnabled() {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Workers, 1, logger); err != nil {
			logger.Fatal("kafka topic bootstrap failed", zap.Error(err))
		}

		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.Group,
			Topic:          cfg.Kafka.Topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        2 * time.Second,
			CommitInterval: 0, // explicit commits only
		})
		defer reader.Close()

		ingest := handler.NewHandler(ordersSvc, breaker.New(cfg.Breaker), cfg.Retry, logger, metrics)
		consumer := kafka.NewConsumer(ingest, reader, cfg.Kafka.Workers, logger)
		go consumer.Start(ctx)
	}

	logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server stopped")
}
