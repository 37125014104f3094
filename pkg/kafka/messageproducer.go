package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

func (b *MessageBroker) Produce(ctx context.Context, msg *message.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: kafkaTopic(msg.Topic),
		Value: sarama.ByteEncoder(msg.Payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(messageIDHeader), Value: []byte(msg.ID.String())},
		},
	}
	if msg.Key != "" {
		producerMsg.Key = sarama.StringEncoder(msg.Key)
	}

	_, _, err := b.producer.SendMessage(producerMsg)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", producerMsg.Topic, err)
	}

	return nil
}
