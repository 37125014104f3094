package message

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/metric"
	"github.com/klwxsrx/state-aggregator/pkg/worker"
)

type (
	ListenerImpl struct {
		Middlewares []HandlerMiddleware
		// NegativeAckOnError sends an explicit negative acknowledgement for failed messages,
		// otherwise failed messages are left unacknowledged
		NegativeAckOnError  bool
		OnHandlerResult     []func(context.Context, *Message, error)
		OnAcknowledgeResult []func(_ context.Context, _ *Message, handlerResult error, ackErr error)
		OnConsumerClosed    []func(ctx context.Context, consumerName string)

		consumer Consumer
		handler  Handler
	}

	ListenerOption func(*ListenerImpl)
)

// NewListener returns a job folding consumer messages into handler one by one in delivery order.
// A message is acknowledged only after handler succeeded.
func NewListener(consumer Consumer, handler Handler, opts ...ListenerOption) worker.ErrorJob {
	impl := &ListenerImpl{
		Middlewares:         nil,
		NegativeAckOnError:  false,
		OnHandlerResult:     nil,
		OnAcknowledgeResult: nil,
		OnConsumerClosed:    nil,

		consumer: consumer,
	}
	for _, opt := range opts {
		opt(impl)
	}

	handler = impl.wrapWithPanicHandler(handler)
	for j := len(impl.Middlewares) - 1; j >= 0; j-- {
		handler = impl.Middlewares[j](handler)
	}
	impl.handler = handler

	return impl.consumerWorker
}

func (l *ListenerImpl) wrapWithPanicHandler(handler Handler) Handler {
	return func(ctx context.Context, msg *Message) (err error) {
		recoverPanic := func(ctx context.Context) {
			panicMsg := recover()
			if panicMsg == nil {
				return
			}

			meta := GetHandlerMetadata(ctx)
			meta.Panic = &PanicErr{
				Message:    fmt.Sprintf("%v", panicMsg),
				Stacktrace: debug.Stack(),
			}

			err = fmt.Errorf("message handled with panic: %v", panicMsg)
		}

		defer recoverPanic(ctx)
		return handler(ctx, msg)
	}
}

func (l *ListenerImpl) consumerWorker(ctx context.Context) error {
	err := func() error {
		for {
			select {
			case <-ctx.Done():
				return l.consumer.Close()
			default:
			}

			select {
			case msg, ok := <-l.consumer.Messages():
				if !ok {
					for _, fn := range l.OnConsumerClosed {
						fn(ctx, l.consumer.Name())
					}
					_ = l.consumer.Close()
					return ErrConsumerClosed
				}

				l.processMessage(msg)
			case <-ctx.Done():
				return l.consumer.Close()
			}
		}
	}()
	if err != nil {
		return fmt.Errorf("message listener %s: %w", l.consumer.Name(), err)
	}

	return nil
}

func (l *ListenerImpl) processMessage(msg *ConsumerMessage) {
	msgCtx := msg.Context
	if msgCtx == nil {
		msgCtx = context.Background()
	}
	msgCtx = withHandlerMetadata(msgCtx, &msg.Message)

	handlerErr := l.handler(msgCtx, &msg.Message)
	for _, fn := range l.OnHandlerResult {
		fn(msgCtx, &msg.Message, handlerErr)
	}

	var ackErr error
	switch {
	case handlerErr == nil:
		ackErr = l.consumer.Ack(msgCtx, msg)
	case l.NegativeAckOnError:
		ackErr = l.consumer.Nack(msgCtx, msg)
		if errors.Is(ackErr, ErrNegativeAckNotSupported) {
			ackErr = nil
		}
	default:
		return
	}
	if ackErr != nil {
		ackErr = fmt.Errorf("%w: %w", ErrAcknowledge, ackErr)
	}

	for _, fn := range l.OnAcknowledgeResult {
		fn(msgCtx, &msg.Message, handlerErr, ackErr)
	}
}

func WithNegativeAckOnError() ListenerOption {
	return func(l *ListenerImpl) {
		l.NegativeAckOnError = true
	}
}

func WithHandlerMiddleware(mw HandlerMiddleware) ListenerOption {
	return func(l *ListenerImpl) {
		l.Middlewares = append(l.Middlewares, mw)
	}
}

func WithHandlerLogging(logger log.Logger, infoLevel, errorLevel log.Level) ListenerOption {
	mw := func(handler Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			meta := GetHandlerMetadata(ctx)
			ctx = logger.WithContext(ctx, log.Fields{
				"consumerMessage": log.Fields{
					"correlation": uuid.New(),
					"topic":       meta.MessageTopic,
					"key":         meta.MessageKey,
					"messageID":   meta.MessageID,
				},
			})

			err := handler(ctx, msg)
			if meta.Panic != nil {
				logger.WithField("panic", log.Fields{
					"message": meta.Panic.Message,
					"stack":   string(meta.Panic.Stacktrace),
				}).Error(ctx, "message handled with panic")
				return err
			}
			if err != nil {
				logger.WithError(err).Log(ctx, errorLevel, "message handled with error")
				return err
			}

			logger.Log(ctx, infoLevel, "message handled")
			return nil
		}
	}

	return func(l *ListenerImpl) {
		l.Middlewares = append(l.Middlewares, mw)

		l.OnAcknowledgeResult = append(l.OnAcknowledgeResult, func(ctx context.Context, msg *Message, handlerResult, err error) {
			if err == nil {
				return
			}

			var handlerResultStr *string
			if handlerResult != nil {
				v := handlerResult.Error()
				handlerResultStr = &v
			}

			logger.
				With(log.Fields{
					"messageID":    msg.ID,
					"topic":        msg.Topic,
					"handleResult": handlerResultStr,
				}).
				WithError(err).
				Log(ctx, errorLevel, "failed to acknowledge handled message")
		})

		l.OnConsumerClosed = append(l.OnConsumerClosed, func(ctx context.Context, consumerName string) {
			logger.
				WithField("consumer", consumerName).
				Error(ctx, "consumer closed messages channel, listener stopped")
		})
	}
}

func WithHandlerMetrics(metrics metric.Metrics) ListenerOption {
	mw := func(handler Handler) Handler {
		return func(ctx context.Context, msg *Message) error {
			started := time.Now()

			err := handler(ctx, msg)
			meta := GetHandlerMetadata(ctx)
			if meta.Panic != nil {
				metrics.WithLabel("topic", meta.MessageTopic).Increment("msg_handle_panics_total")
			}

			metrics.With(metric.Labels{
				"topic":   meta.MessageTopic,
				"success": err == nil,
			}).Duration("msg_handle_duration_seconds", time.Since(started))
			return err
		}
	}

	return func(l *ListenerImpl) {
		l.Middlewares = append(l.Middlewares, mw)

		l.OnAcknowledgeResult = append(l.OnAcknowledgeResult, func(_ context.Context, msg *Message, _, err error) {
			if err != nil {
				metrics.WithLabel("topic", msg.Topic).Increment("msg_ack_failures_total")
			}
		})
	}
}
