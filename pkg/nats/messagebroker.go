package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const (
	defaultConnectionTimeout = 20 * time.Second
	defaultStream            = "AGGREGATOR"
	consumerBufferSize       = 64
)

type Config struct {
	URL string
	// Stream is the JetStream stream keeping the messages, created when missing
	Stream            string
	ClientName        string
	ConnectionTimeout time.Duration
}

type MessageBroker struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	stream        string
	subjectPrefix string

	connClosedOnce sync.Once
	connClosed     chan struct{}
}

func NewMessageBroker(config *Config, logger log.Logger) (*MessageBroker, error) {
	stream := defaultStream
	if config.Stream != "" {
		stream = config.Stream
	}

	connTimeout := defaultConnectionTimeout
	if config.ConnectionTimeout > 0 {
		connTimeout = config.ConnectionTimeout
	}

	broker := &MessageBroker{
		stream:        stream,
		subjectPrefix: strings.ToLower(stream),
		connClosed:    make(chan struct{}),
	}

	opts := []nats.Option{
		nats.Timeout(connTimeout),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.WithError(err).Warn(context.Background(), "nats connection lost")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			logger.WithField("url", conn.ConnectedUrl()).Info(context.Background(), "nats connection restored")
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			broker.connClosedOnce.Do(func() {
				close(broker.connClosed)
			})
		}),
	}
	if config.ClientName != "" {
		opts = append(opts, nats.Name(config.ClientName))
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := connect(url, opts, connTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	broker.conn = conn

	broker.js, err = conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	err = broker.ensureStreamExists()
	if err != nil {
		conn.Close()
		return nil, err
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

	subject := filterSubject(b.subjectPrefix, filter)
	durable := string(subscriber)
	shared := consumptionType == message.ConsumptionTypeShared

	err := b.ensureConsumerExists(durable, subject, shared)
	if err != nil {
		return nil, err
	}

	ch := make(chan *nats.Msg, consumerBufferSize)
	opts := []nats.SubOpt{
		nats.Bind(b.stream, durable),
		nats.ManualAck(),
	}

	var sub *nats.Subscription
	if shared {
		sub, err = b.js.ChanQueueSubscribe(subject, durable, ch, opts...)
	} else {
		sub, err = b.js.ChanSubscribe(subject, ch, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s by %s subscriber: %w", subject, subscriber, err)
	}

	return newMessageConsumer(fmt.Sprintf("%s/%s", subscriber, filter), b.subjectPrefix, sub, ch, b.connClosed), nil
}

func (b *MessageBroker) Close() {
	b.conn.Close()
}

func (b *MessageBroker) ensureStreamExists() error {
	_, err := b.js.StreamInfo(b.stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("get stream %s info: %w", b.stream, err)
	}

	_, err = b.js.AddStream(&nats.StreamConfig{
		Name:      b.stream,
		Subjects:  []string{b.subjectPrefix + ".>"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", b.stream, err)
	}

	return nil
}

func (b *MessageBroker) ensureConsumerExists(durable, subject string, shared bool) error {
	_, err := b.js.ConsumerInfo(b.stream, durable)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrConsumerNotFound) {
		return fmt.Errorf("get consumer %s info: %w", durable, err)
	}

	cfg := &nats.ConsumerConfig{
		Durable:        durable,
		FilterSubject:  subject,
		DeliverSubject: nats.NewInbox(),
		DeliverPolicy:  nats.DeliverAllPolicy,
		AckPolicy:      nats.AckExplicitPolicy,
	}
	if shared {
		cfg.DeliverGroup = durable
	}

	_, err = b.js.AddConsumer(b.stream, cfg)
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", durable, err)
	}

	return nil
}

func connect(url string, opts []nats.Option, connTimeout time.Duration) (*nats.Conn, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = connTimeout / 4
	eb.MaxElapsedTime = connTimeout

	var conn *nats.Conn
	err := backoff.Retry(func() error {
		var err error
		conn, err = nats.Connect(url, opts...)
		return err
	}, eb)
	return conn, err
}
