package pulsar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/google/uuid"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const messageIDPropertyName = "id"

const pulsarMessageIDContextKey contextKey = iota

var errMissingMessageID = errors.New("pulsar message id not found in message context")

type contextKey int

type messageConsumer struct {
	name      string
	namespace string
	pulsar    pulsar.Consumer

	onceDoer  *sync.Once
	closeOnce *sync.Once
	done      chan struct{}
	messages  chan *message.ConsumerMessage
}

func newMessageConsumer(pulsarConsumer pulsar.Consumer, namespace string, filter message.TopicFilter) message.Consumer {
	return &messageConsumer{
		name:      fmt.Sprintf("%s/%s", pulsarConsumer.Subscription(), filter),
		namespace: namespace,
		pulsar:    pulsarConsumer,
		onceDoer:  &sync.Once{},
		closeOnce: &sync.Once{},
		done:      make(chan struct{}),
		messages:  make(chan *message.ConsumerMessage),
	}
}

func (c *messageConsumer) Name() string {
	return c.name
}

func (c *messageConsumer) Messages() <-chan *message.ConsumerMessage {
	c.onceDoer.Do(func() {
		go c.pump()
	})
	return c.messages
}

func (c *messageConsumer) Ack(_ context.Context, msg *message.ConsumerMessage) error {
	messageID, ok := msg.Context.Value(pulsarMessageIDContextKey).(pulsar.MessageID)
	if !ok {
		return errMissingMessageID
	}

	return c.pulsar.AckID(messageID)
}

func (c *messageConsumer) Nack(_ context.Context, msg *message.ConsumerMessage) error {
	messageID, ok := msg.Context.Value(pulsarMessageIDContextKey).(pulsar.MessageID)
	if !ok {
		return errMissingMessageID
	}

	c.pulsar.NackID(messageID)
	return nil
}

func (c *messageConsumer) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.pulsar.Close()
	})
	return nil
}

func (c *messageConsumer) pump() {
	defer close(c.messages)

	for {
		select {
		case msg, ok := <-c.pulsar.Chan():
			if !ok {
				return
			}

			select {
			case c.messages <- c.convert(msg):
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *messageConsumer) convert(consumerMsg pulsar.ConsumerMessage) *message.ConsumerMessage {
	msg := consumerMsg.Message
	ctx := context.WithValue(context.Background(), pulsarMessageIDContextKey, msg.ID())
	return &message.ConsumerMessage{
		Context: ctx,
		Message: message.Message{
			ID:      messageID(msg),
			Topic:   messageTopic(c.namespace, msg.Topic()),
			Key:     msg.Key(),
			Payload: msg.Payload(),
		},
	}
}

func messageID(msg pulsar.Message) uuid.UUID {
	id, err := uuid.Parse(msg.Properties()[messageIDPropertyName])
	if err == nil {
		return id
	}

	pos := msg.ID()
	return message.NewPositionID(
		"pulsar",
		msg.Topic(),
		strconv.FormatInt(pos.LedgerID(), 10),
		strconv.FormatInt(pos.EntryID(), 10),
		strconv.FormatInt(int64(pos.BatchIdx()), 10),
	)
}
