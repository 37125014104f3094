package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"

	"github.com/klwxsrx/state-aggregator/internal/pkg/cmd"
	"github.com/klwxsrx/state-aggregator/pkg/env"
	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
	"github.com/klwxsrx/state-aggregator/pkg/worker"
)

const (
	defaultTopic   = "queue_test"
	defaultPayload = "Hello world!"
)

// Publishes PRODUCER_COUNT copies of the message, concurrently when PRODUCER_CONCURRENCY is above one
func main() {
	ctx := context.Background()
	infra := cmd.NewInfrastructureContainer()
	defer infra.Close(ctx)

	logger := infra.Logger.MustLoad()
	broker := infra.MessageBroker.MustLoad()

	topic := env.Must(env.ParseDefault("PRODUCER_TOPIC", defaultTopic))
	key := env.Must(env.ParseDefault("PRODUCER_KEY", ""))
	payload := env.Must(env.ParseDefault("PRODUCER_PAYLOAD", defaultPayload))
	count := env.Must(env.ParseDefault("PRODUCER_COUNT", 1))
	concurrency := env.Must(env.ParseDefault("PRODUCER_CONCURRENCY", 1))

	group := worker.WithinFailSafeGroup(ctx, worker.NewPool(concurrency))
	for range count {
		group.Do(func(ctx context.Context) error {
			msg := &message.Message{
				ID:      uuid.New(),
				Topic:   topic,
				Key:     key,
				Payload: []byte(payload),
			}

			err := broker.Produce(ctx, msg)
			if err != nil {
				logger.WithError(err).Error(ctx, "failed to send message")
				return fmt.Errorf("produce message %v: %w", msg.ID, err)
			}

			logger.With(log.Fields{
				"messageID": msg.ID,
				"topic":     msg.Topic,
				"key":       msg.Key,
			}).Info(ctx, "message sent")
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		panic(err)
	}
}
