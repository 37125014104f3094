package kafka

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const messageIDHeader = "id"

const kafkaMessageContextKey contextKey = iota

var errMissingKafkaMessage = errors.New("kafka message not found in message context")

type (
	contextKey int

	delivery struct {
		session sarama.ConsumerGroupSession
		msg     *sarama.ConsumerMessage
	}
)

type messageConsumer struct {
	name   string
	filter message.TopicFilter
	client sarama.Client
	group  sarama.ConsumerGroup
	logger log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	stopped   chan struct{}
	messages  chan *message.ConsumerMessage
}

func (c *messageConsumer) Name() string {
	return c.name
}

func (c *messageConsumer) Messages() <-chan *message.ConsumerMessage {
	return c.messages
}

func (c *messageConsumer) Ack(_ context.Context, msg *message.ConsumerMessage) error {
	d, ok := msg.Context.Value(kafkaMessageContextKey).(delivery)
	if !ok {
		return errMissingKafkaMessage
	}

	d.session.MarkMessage(d.msg, "")
	return nil
}

func (c *messageConsumer) Nack(context.Context, *message.ConsumerMessage) error {
	return message.ErrNegativeAckNotSupported
}

func (c *messageConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.group.Close()
		<-c.stopped
	})
	return err
}

func (c *messageConsumer) run() {
	defer close(c.stopped)
	defer close(c.messages)

	retry := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxInterval(time.Minute),
		backoff.WithMaxElapsedTime(0),
	)

	for {
		err := c.consumeDiscoveredTopics()
		if c.ctx.Err() != nil || errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return
		}
		if err != nil {
			c.logger.WithError(err).Error(c.ctx, "kafka consumer group session failed")
		} else {
			retry.Reset()
		}

		select {
		case <-time.After(retry.NextBackOff()):
		case <-c.ctx.Done():
			return
		}
	}
}

// consumeDiscoveredTopics consumes topics matching the filter until the matching topic set changes
func (c *messageConsumer) consumeDiscoveredTopics() error {
	topics, err := c.discoverTopics()
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		c.logger.WithField("filter", string(c.filter)).Debug(c.ctx, "no kafka topics match the filter yet")
		return c.waitTopicsChanged(c.ctx, topics)
	}

	ctx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	go func() {
		if c.waitTopicsChanged(ctx, topics) == nil {
			cancel()
		}
	}()

	return c.group.Consume(ctx, topics, consumerGroupHandler{c})
}

func (c *messageConsumer) discoverTopics() ([]string, error) {
	if err := c.client.RefreshMetadata(); err != nil {
		return nil, err
	}

	topics, err := c.client.Topics()
	if err != nil {
		return nil, err
	}

	return matchingTopics(c.filter, topics), nil
}

func (c *messageConsumer) waitTopicsChanged(ctx context.Context, current []string) error {
	ticker := time.NewTicker(topicsDiscoveryPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			topics, err := c.discoverTopics()
			if err != nil {
				c.logger.WithError(err).Warn(ctx, "failed to discover kafka topics")
				continue
			}
			if !slices.Equal(topics, current) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

type consumerGroupHandler struct {
	consumer *messageConsumer
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			select {
			case h.consumer.messages <- convert(session, msg):
			case <-session.Context().Done():
				return nil
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

func convert(session sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) *message.ConsumerMessage {
	ctx := context.WithValue(context.Background(), kafkaMessageContextKey, delivery{session: session, msg: msg})
	return &message.ConsumerMessage{
		Context: ctx,
		Message: message.Message{
			ID:      messageID(msg),
			Topic:   messageTopic(msg.Topic),
			Key:     string(msg.Key),
			Payload: msg.Value,
		},
	}
}

func messageID(msg *sarama.ConsumerMessage) uuid.UUID {
	for _, header := range msg.Headers {
		if header == nil || string(header.Key) != messageIDHeader {
			continue
		}
		if id, err := uuid.ParseBytes(header.Value); err == nil {
			return id
		}
	}

	return message.NewPositionID(
		"kafka",
		msg.Topic,
		strconv.FormatInt(int64(msg.Partition), 10),
		strconv.FormatInt(msg.Offset, 10),
	)
}
