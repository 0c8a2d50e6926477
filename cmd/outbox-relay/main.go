package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pokerledger/tracker/internal/infra"
	"github.com/pokerledger/tracker/internal/outbox"
	"github.com/pokerledger/tracker/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox relay failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = infra.NewLogger(cfg)
	slog.SetDefault(logger)

	if cfg.StoreDriver != infra.DriverPostgres {
		return fmt.Errorf("outbox relay needs the postgres store, STORE_DRIVER is %q", cfg.StoreDriver)
	}

	pool, err := infra.SharedPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("outbox-relay connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	relay := outbox.NewRelay(pool, repository.NewOutboxRepository(), producer, logger, outbox.Options{
		TopicPrefix: cfg.KafkaTopicPrefix,
		Interval:    cfg.OutboxInterval,
		BatchSize:   cfg.OutboxBatchSize,
	})
	relay.Run(ctx)
	return nil
}
