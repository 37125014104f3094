//go:generate ${TOOLS_BIN}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Consumer=Consumer"
package message

import (
	"context"
	"errors"
)

var (
	ErrConsumerClosed          = errors.New("consumer closed messages channel")
	ErrAcknowledge             = errors.New("acknowledge message")
	ErrNegativeAckNotSupported = errors.New("negative acknowledgement not supported")
	ErrNotAwaitingAck          = errors.New("message is not awaiting acknowledgement")
)

type (
	ConsumerMessage struct {
		// Context carries broker-specific delivery data required for Ack and Nack
		Context context.Context
		Message Message
	}

	// Consumer is a subscription to a topic filter.
	// Messages channel is closed when the subscription terminates, Ack must be called once per message.
	Consumer interface {
		Name() string
		Messages() <-chan *ConsumerMessage
		Ack(ctx context.Context, msg *ConsumerMessage) error
		Nack(ctx context.Context, msg *ConsumerMessage) error
		Close() error
	}
)
