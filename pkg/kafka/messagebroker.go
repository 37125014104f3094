package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const (
	defaultConnectionTimeout = 20 * time.Second
	topicsDiscoveryPeriod    = 30 * time.Second
)

type Config struct {
	Brokers           []string
	ClientID          string
	ConnectionTimeout time.Duration
}

type MessageBroker struct {
	client   sarama.Client
	producer sarama.SyncProducer
	logger   log.Logger
}

func NewMessageBroker(config *Config, logger log.Logger) (*MessageBroker, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V2_6_0_0
	if config.ClientID != "" {
		saramaConfig.ClientID = config.ClientID
	}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	sarama.Logger = newLoggerAdapter(logger)

	connTimeout := defaultConnectionTimeout
	if config.ConnectionTimeout > 0 {
		connTimeout = config.ConnectionTimeout
	}

	client, err := connect(config.Brokers, saramaConfig, connTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create producer: %w", err)
	}

	return &MessageBroker{
		client:   client,
		producer: producer,
		logger:   logger,
	}, nil
}

// Consumer joins the consumer group named after the subscriber, every consumption type is served by group partition assignment
func (b *MessageBroker) Consumer(
	filter message.TopicFilter,
	subscriber message.SubscriberName,
	_ message.ConsumptionType,
) (message.Consumer, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	group, err := sarama.NewConsumerGroupFromClient(string(subscriber), b.client)
	if err != nil {
		return nil, fmt.Errorf("create consumer group %s: %w", subscriber, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer := &messageConsumer{
		name:     fmt.Sprintf("%s/%s", subscriber, filter),
		filter:   filter,
		client:   b.client,
		group:    group,
		logger:   b.logger.WithField("consumer", string(subscriber)),
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
		messages: make(chan *message.ConsumerMessage),
	}

	go consumer.run()
	return consumer, nil
}

func (b *MessageBroker) Close() {
	_ = b.producer.Close()
	_ = b.client.Close()
}

func connect(brokers []string, config *sarama.Config, connTimeout time.Duration) (sarama.Client, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = connTimeout / 4
	eb.MaxElapsedTime = connTimeout

	var client sarama.Client
	err := backoff.Retry(func() error {
		var err error
		client, err = sarama.NewClient(brokers, config)
		return err
	}, eb)
	return client, err
}
