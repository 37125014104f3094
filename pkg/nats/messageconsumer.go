package nats

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const messageKeyHeader = "Message-Key"

const natsMessageContextKey contextKey = iota

var errMissingNatsMessage = errors.New("nats message not found in message context")

type contextKey int

type messageConsumer struct {
	name          string
	subjectPrefix string
	sub           *nats.Subscription
	natsMessages  chan *nats.Msg
	connClosed    <-chan struct{}

	onceDoer  *sync.Once
	closeOnce *sync.Once
	done      chan struct{}
	messages  chan *message.ConsumerMessage
}

func newMessageConsumer(
	name string,
	subjectPrefix string,
	sub *nats.Subscription,
	natsMessages chan *nats.Msg,
	connClosed <-chan struct{},
) message.Consumer {
	return &messageConsumer{
		name:          name,
		subjectPrefix: subjectPrefix,
		sub:           sub,
		natsMessages:  natsMessages,
		connClosed:    connClosed,
		onceDoer:      &sync.Once{},
		closeOnce:     &sync.Once{},
		done:          make(chan struct{}),
		messages:      make(chan *message.ConsumerMessage),
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

func (c *messageConsumer) Ack(ctx context.Context, msg *message.ConsumerMessage) error {
	natsMsg, ok := msg.Context.Value(natsMessageContextKey).(*nats.Msg)
	if !ok {
		return errMissingNatsMessage
	}

	return natsMsg.Ack(nats.Context(ctx))
}

func (c *messageConsumer) Nack(ctx context.Context, msg *message.ConsumerMessage) error {
	natsMsg, ok := msg.Context.Value(natsMessageContextKey).(*nats.Msg)
	if !ok {
		return errMissingNatsMessage
	}

	return natsMsg.Nak(nats.Context(ctx))
}

// Close keeps the durable consumer on the server, so the subscription resumes after restart
func (c *messageConsumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.sub.Unsubscribe()
		if errors.Is(err, nats.ErrConnectionClosed) {
			err = nil
		}
	})
	return err
}

func (c *messageConsumer) pump() {
	defer close(c.messages)

	for {
		select {
		case msg := <-c.natsMessages:
			select {
			case c.messages <- c.convert(msg):
			case <-c.done:
				return
			case <-c.connClosed:
				return
			}
		case <-c.done:
			return
		case <-c.connClosed:
			return
		}
	}
}

func (c *messageConsumer) convert(msg *nats.Msg) *message.ConsumerMessage {
	return &message.ConsumerMessage{
		Context: context.WithValue(context.Background(), natsMessageContextKey, msg),
		Message: message.Message{
			ID:      messageID(msg),
			Topic:   subjectTopic(c.subjectPrefix, msg.Subject),
			Key:     msg.Header.Get(messageKeyHeader),
			Payload: msg.Data,
		},
	}
}

func messageID(msg *nats.Msg) uuid.UUID {
	id, err := uuid.Parse(msg.Header.Get(nats.MsgIdHdr))
	if err == nil {
		return id
	}

	meta, err := msg.Metadata()
	if err != nil {
		return uuid.New()
	}

	return message.NewPositionID("nats", meta.Stream, strconv.FormatUint(meta.Sequence.Stream, 10))
}
