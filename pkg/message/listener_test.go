package message_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
	pkgmessagemock "github.com/klwxsrx/state-aggregator/pkg/message/mock"
	"github.com/klwxsrx/state-aggregator/pkg/metric"
)

func TestListener_AcknowledgesOnlyHandledMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	messages := []*message.ConsumerMessage{
		newConsumerMessage("a", "1"),
		newConsumerMessage("b", "2"),
		newConsumerMessage("c", "3"),
	}

	consumer := newClosingConsumer(ctrl, messages)
	consumer.EXPECT().Ack(gomock.Any(), messages[0]).Return(nil)
	consumer.EXPECT().Ack(gomock.Any(), messages[2]).Return(nil)

	var handled []string
	handler := func(_ context.Context, msg *message.Message) error {
		handled = append(handled, msg.Topic)
		if msg.Topic == "b" {
			return errors.New("undecodable")
		}
		return nil
	}

	err := message.NewListener(consumer, handler)(context.Background())
	require.ErrorIs(t, err, message.ErrConsumerClosed)
	assert.Equal(t, []string{"a", "b", "c"}, handled)
}

func TestListener_NegativeAckOnError(t *testing.T) {
	tests := []struct {
		name    string
		nackErr error
	}{
		{
			name:    "nack_supported",
			nackErr: nil,
		},
		{
			name:    "nack_not_supported_is_ignored",
			nackErr: message.ErrNegativeAckNotSupported,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			msg := newConsumerMessage("a", "1")
			consumer := newClosingConsumer(ctrl, []*message.ConsumerMessage{msg})
			consumer.EXPECT().Nack(gomock.Any(), msg).Return(tt.nackErr)

			var ackResult error
			onAck := func(l *message.ListenerImpl) {
				l.OnAcknowledgeResult = append(l.OnAcknowledgeResult, func(_ context.Context, _ *message.Message, _, err error) {
					ackResult = err
				})
			}

			handler := func(context.Context, *message.Message) error {
				return errors.New("failed")
			}

			err := message.NewListener(consumer, handler, message.WithNegativeAckOnError(), onAck)(context.Background())
			require.ErrorIs(t, err, message.ErrConsumerClosed)
			assert.NoError(t, ackResult)
		})
	}
}

func TestListener_RecoversHandlerPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	messages := []*message.ConsumerMessage{
		newConsumerMessage("panic", "1"),
		newConsumerMessage("ok", "2"),
	}

	consumer := newClosingConsumer(ctrl, messages)
	consumer.EXPECT().Ack(gomock.Any(), messages[1]).Return(nil)

	var panics []*message.PanicErr
	mw := func(next message.Handler) message.Handler {
		return func(ctx context.Context, msg *message.Message) error {
			err := next(ctx, msg)
			panics = append(panics, message.GetHandlerMetadata(ctx).Panic)
			return err
		}
	}

	handler := func(_ context.Context, msg *message.Message) error {
		if msg.Topic == "panic" {
			panic("boom")
		}
		return nil
	}

	var handlerResults []error
	onResult := func(l *message.ListenerImpl) {
		l.OnHandlerResult = append(l.OnHandlerResult, func(_ context.Context, _ *message.Message, err error) {
			handlerResults = append(handlerResults, err)
		})
	}

	err := message.NewListener(consumer, handler, message.WithHandlerMiddleware(mw), onResult)(context.Background())
	require.ErrorIs(t, err, message.ErrConsumerClosed)
	require.Len(t, handlerResults, 2)
	assert.ErrorContains(t, handlerResults[0], "boom")
	assert.NoError(t, handlerResults[1])

	require.Len(t, panics, 2)
	require.NotNil(t, panics[0])
	assert.Equal(t, "boom", panics[0].Message)
	assert.NotEmpty(t, panics[0].Stacktrace)
	assert.Nil(t, panics[1])
}

func TestListener_ContinuesAfterAcknowledgeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	messages := []*message.ConsumerMessage{
		newConsumerMessage("a", "1"),
		newConsumerMessage("b", "2"),
	}

	consumer := newClosingConsumer(ctrl, messages)
	consumer.EXPECT().Ack(gomock.Any(), messages[0]).Return(errors.New("connection reset"))
	consumer.EXPECT().Ack(gomock.Any(), messages[1]).Return(nil)

	var ackErrors []error
	onAck := func(l *message.ListenerImpl) {
		l.OnAcknowledgeResult = append(l.OnAcknowledgeResult, func(_ context.Context, _ *message.Message, _, err error) {
			ackErrors = append(ackErrors, err)
		})
	}

	handler := func(context.Context, *message.Message) error { return nil }
	opts := []message.ListenerOption{
		message.WithHandlerLogging(log.New(log.LevelDisabled), log.LevelInfo, log.LevelError),
		message.WithHandlerMetrics(metric.NewMetricsStub()),
		onAck,
	}

	err := message.NewListener(consumer, handler, opts...)(context.Background())
	require.ErrorIs(t, err, message.ErrConsumerClosed)
	require.Len(t, ackErrors, 2)
	assert.ErrorIs(t, ackErrors[0], message.ErrAcknowledge)
	assert.NoError(t, ackErrors[1])
}

func TestListener_ClosesConsumerOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	consumer := pkgmessagemock.NewConsumer(ctrl)
	consumer.EXPECT().Name().Return("test").AnyTimes()
	consumer.EXPECT().Messages().Return((<-chan *message.ConsumerMessage)(make(chan *message.ConsumerMessage))).AnyTimes()
	consumer.EXPECT().Close().Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := func(context.Context, *message.Message) error {
		t.Fatal("handler must not be called")
		return nil
	}

	err := message.NewListener(consumer, handler)(ctx)
	assert.NoError(t, err)
}

func TestListener_MiddlewaresReceiveHandlerMetadata(t *testing.T) {
	ctrl := gomock.NewController(t)
	msg := newConsumerMessage("queue_test", "1")
	msg.Message.Key = "key"

	consumer := newClosingConsumer(ctrl, []*message.ConsumerMessage{msg})
	consumer.EXPECT().Ack(gomock.Any(), msg).Return(nil)

	var meta message.HandlerMetadata
	mw := func(next message.Handler) message.Handler {
		return func(ctx context.Context, m *message.Message) error {
			meta = *message.GetHandlerMetadata(ctx)
			return next(ctx, m)
		}
	}

	handler := func(context.Context, *message.Message) error { return nil }
	err := message.NewListener(consumer, handler, message.WithHandlerMiddleware(mw))(context.Background())
	require.ErrorIs(t, err, message.ErrConsumerClosed)
	assert.Equal(t, msg.Message.ID, meta.MessageID)
	assert.Equal(t, "queue_test", meta.MessageTopic)
	assert.Equal(t, "key", meta.MessageKey)
}

func newConsumerMessage(topic, payload string) *message.ConsumerMessage {
	return &message.ConsumerMessage{
		Context: context.Background(),
		Message: message.Message{
			ID:      uuid.New(),
			Topic:   topic,
			Payload: []byte(payload),
		},
	}
}

func newClosingConsumer(ctrl *gomock.Controller, messages []*message.ConsumerMessage) *pkgmessagemock.Consumer {
	ch := make(chan *message.ConsumerMessage, len(messages))
	for _, msg := range messages {
		ch <- msg
	}
	close(ch)

	consumer := pkgmessagemock.NewConsumer(ctrl)
	consumer.EXPECT().Name().Return("test").AnyTimes()
	consumer.EXPECT().Messages().Return((<-chan *message.ConsumerMessage)(ch)).AnyTimes()
	consumer.EXPECT().Close().Return(nil)
	return consumer
}
