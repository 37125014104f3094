package message

import (
	"context"

	"github.com/google/uuid"
)

const handlerMetaContextKey contextKey = iota

type (
	HandlerMetadata struct {
		MessageID    uuid.UUID
		MessageTopic string
		MessageKey   string
		Panic        *PanicErr
	}

	PanicErr struct {
		Message    string
		Stacktrace []byte
	}

	contextKey int
)

func withHandlerMetadata(ctx context.Context, msg *Message) context.Context {
	return context.WithValue(ctx, handlerMetaContextKey, &HandlerMetadata{
		MessageID:    msg.ID,
		MessageTopic: msg.Topic,
		MessageKey:   msg.Key,
	})
}

func GetHandlerMetadata(ctx context.Context) *HandlerMetadata {
	meta, ok := ctx.Value(handlerMetaContextKey).(*HandlerMetadata)
	if ok {
		return meta
	}

	return &HandlerMetadata{}
}
