// Worker consumes auth events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, AUTH_EVENTS_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/segmentio/kafka-go"

	"login-api/internal/config"
	"login-api/internal/logging"
	"login-api/internal/telemetry/loki"
)

const pushTimeout = 10 * time.Second

// messageReader is the part of *kafka.Reader the worker loop uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// pusher is the part of *loki.Client the worker loop uses.
type pusher interface {
	PushEventJSON(ctx context.Context, raw []byte) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("worker", "info", false).Error("config", "error", err)
		os.Exit(1)
	}
	logger := logging.New("worker", cfg.LogLevel, cfg.JSONLogs())

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		logger.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}
	client, err := loki.NewClient(cfg.LokiURL, "login-api", logger.Named("loki"))
	if err != nil {
		logger.Error("LOKI_URL is required", "error", err)
		os.Exit(1)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    cfg.AuthEventsTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  1 * time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("consuming auth events", "topic", cfg.AuthEventsTopic, "group", cfg.KafkaGroupID, "loki", cfg.LokiURL)
	consume(ctx, reader, client, logger)
	logger.Info("stopped")
}

// consume forwards messages until ctx ends. A message is committed once Loki accepted it or
// gave up after retries, so a Loki outage does not wedge the partition.
func consume(ctx context.Context, r messageReader, p pusher, logger hclog.Logger) {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			logger.Warn("kafka fetch failed", "error", err)
			continue
		}

		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := p.PushEventJSON(pushCtx, msg.Value); err != nil {
			logger.Warn("loki push failed, dropping event", "offset", msg.Offset, "error", err)
		}
		cancel()

		if err := r.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Warn("kafka commit failed", "offset", msg.Offset, "error", err)
		}
	}
}
