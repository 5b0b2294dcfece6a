package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/attaboy/strokecheck/internal/infra"
	"github.com/segmentio/kafka-go"
)

const consumerGroup = "strokecheck-audit-consumer"

func main() {
	if err := run(); err != nil {
		slog.Error("audit consumer failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := infra.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if !cfg.KafkaEnabled {
		return errors.New("KAFKA_ENABLED must be true to consume audit events")
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.AuditTopic, consumerGroup, true, logger)
	defer consumer.Close()

	logger.Info("audit-consumer starting", "topic", cfg.AuditTopic, "brokers", cfg.KafkaBrokers)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("audit-consumer shutting down")
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		handle(logger, msg)
	}
}

// handle logs one audit event. Undecodable messages are logged and skipped
// so a single bad record cannot stall the group.
func handle(logger *slog.Logger, msg kafka.Message) {
	evt, err := infra.DecodeAuditEvent(msg)
	if err != nil {
		logger.Error("skipping audit message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	logger.Info("audit event",
		"event_id", evt.EventID,
		"event_type", evt.EventType,
		"username", evt.Username,
		"occurred_at", evt.OccurredAt,
		"payload", string(evt.Payload),
		"partition", msg.Partition,
		"offset", msg.Offset,
	)
}
