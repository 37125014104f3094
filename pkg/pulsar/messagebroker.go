package pulsar

import (
	"fmt"
	"sync"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/cenkalti/backoff/v4"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const (
	defaultConnectionTimeout = 20 * time.Second
	defaultNamespace         = "public/default"
	topicsDiscoveryPeriod    = 30 * time.Second
)

type Config struct {
	Address string
	// Namespace is the tenant/namespace pair the message topics belong to
	Namespace         string
	ConnectionTimeout time.Duration
}

type MessageBroker struct {
	client    pulsar.Client
	namespace string

	producersMutex sync.Mutex
	producers      map[string]pulsar.Producer
}

func NewMessageBroker(config *Config, logger log.Logger) (*MessageBroker, error) {
	c, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:    fmt.Sprintf("pulsar://%s", config.Address),
		Logger: newLoggerAdapter(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("create pulsar client: %w", err)
	}

	namespace := defaultNamespace
	if config.Namespace != "" {
		namespace = config.Namespace
	}

	broker := &MessageBroker{
		client:    c,
		namespace: namespace,
		producers: make(map[string]pulsar.Producer),
	}

	connTimeout := defaultConnectionTimeout
	if config.ConnectionTimeout > 0 {
		connTimeout = config.ConnectionTimeout
	}
	err = broker.testCreateProducer(connTimeout)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return broker, nil
}

func (b *MessageBroker) Consumer(
	filter message.TopicFilter,
	subscriber message.SubscriberName,
	consumptionType message.ConsumptionType,
) (message.Consumer, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	opts := pulsar.ConsumerOptions{
		SubscriptionName:            string(subscriber),
		Type:                        subscriptionType(consumptionType),
		SubscriptionInitialPosition: pulsar.SubscriptionPositionEarliest,
	}
	if filter.HasWildcards() {
		opts.TopicsPattern = topicsPattern(b.namespace, filter)
		opts.AutoDiscoveryPeriod = topicsDiscoveryPeriod
	} else {
		opts.Topic = topicName(b.namespace, string(filter))
	}

	consumer, err := b.client.Subscribe(opts)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s by %s subscriber: %w", filter, subscriber, err)
	}

	return newMessageConsumer(consumer, b.namespace, filter), nil
}

func (b *MessageBroker) Close() {
	b.producersMutex.Lock()
	defer b.producersMutex.Unlock()

	for _, producer := range b.producers {
		producer.Close()
	}
	b.client.Close()
}

func (b *MessageBroker) testCreateProducer(connTimeout time.Duration) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = connTimeout / 4
	eb.MaxElapsedTime = connTimeout

	return backoff.Retry(func() error {
		p, err := b.client.CreateProducer(pulsar.ProducerOptions{
			Topic: fmt.Sprintf("non-persistent://%s/connection-probe", b.namespace),
		})
		if err == nil {
			p.Close()
		}
		return err
	}, eb)
}

func subscriptionType(consumptionType message.ConsumptionType) pulsar.SubscriptionType {
	switch consumptionType {
	case message.ConsumptionTypeShared:
		return pulsar.Shared
	default:
		return pulsar.Failover
	}
}
