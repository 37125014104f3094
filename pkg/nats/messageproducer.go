package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

func (b *MessageBroker) Produce(ctx context.Context, msg *message.Message) error {
	if err := validateTopic(msg.Topic); err != nil {
		return fmt.Errorf("produce message %v: %w", msg.ID, err)
	}

	natsMsg := nats.NewMsg(topicSubject(b.subjectPrefix, msg.Topic))
	natsMsg.Data = msg.Payload
	natsMsg.Header.Set(nats.MsgIdHdr, msg.ID.String())
	if msg.Key != "" {
		natsMsg.Header.Set(messageKeyHeader, msg.Key)
	}

	_, err := b.js.PublishMsg(natsMsg, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("publish message to %s: %w", natsMsg.Subject, err)
	}

	return nil
}
