package message

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type (
	Message struct {
		ID    uuid.UUID
		Topic string
		// Key is used for topic partitioning, messages with the same key will fall in the same topic partition
		Key     string
		Payload []byte
	}

	Handler           func(ctx context.Context, msg *Message) error
	HandlerMiddleware func(Handler) Handler
)

// NewPositionID derives a stable message ID from a broker-specific delivery position,
// so a redelivered message keeps its ID when the producer did not set one.
func NewPositionID(position ...string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.Join(position, "/")))
}
