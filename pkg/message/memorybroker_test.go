package message_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const waitTimeout = 5 * time.Second

func TestMemoryBroker_DeliversMatchingTopicsInOrder(t *testing.T) {
	broker := message.NewMemoryBroker(0)
	defer broker.Close()

	consumer, err := broker.MemoryConsumer("sensors/+", "test", message.ConsumptionTypeSingle)
	require.NoError(t, err)

	ctx := context.Background()
	for _, topic := range []string{"sensors/a", "other/a", "sensors/b", "sensors/a/deep"} {
		require.NoError(t, broker.Produce(ctx, &message.Message{ID: uuid.New(), Topic: topic}))
	}

	assert.Equal(t, "sensors/a", receive(t, consumer).Message.Topic)
	assert.Equal(t, "sensors/b", receive(t, consumer).Message.Topic)
	select {
	case msg := <-consumer.Messages():
		t.Fatalf("unexpected message %s", msg.Message.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBroker_AcknowledgeExactlyOnce(t *testing.T) {
	broker := message.NewMemoryBroker(0)
	defer broker.Close()

	consumer, err := broker.MemoryConsumer(message.MatchAllTopics, "test", message.ConsumptionTypeSingle)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, broker.Produce(context.Background(), &message.Message{ID: id, Topic: "queue_test"}))

	msg := receive(t, consumer)
	assert.Equal(t, 1, consumer.Unacknowledged())
	require.NoError(t, consumer.Ack(context.Background(), msg))
	assert.ErrorIs(t, consumer.Ack(context.Background(), msg), message.ErrNotAwaitingAck)
	assert.Equal(t, []uuid.UUID{id}, consumer.Acknowledged())
	assert.Zero(t, consumer.Unacknowledged())
}

func TestMemoryBroker_NackRedelivers(t *testing.T) {
	broker := message.NewMemoryBroker(0)
	defer broker.Close()

	consumer, err := broker.MemoryConsumer(message.MatchAllTopics, "test", message.ConsumptionTypeSingle)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, broker.Produce(context.Background(), &message.Message{ID: id, Topic: "queue_test", Payload: []byte("1")}))

	first := receive(t, consumer)
	require.NoError(t, consumer.Nack(context.Background(), first))

	second := receive(t, consumer)
	assert.Equal(t, id, second.Message.ID)
	assert.Equal(t, []byte("1"), second.Message.Payload)
	assert.Equal(t, []uuid.UUID{id}, consumer.NegativelyAcknowledged())
}

func TestMemoryBroker_CloseTerminatesConsumers(t *testing.T) {
	broker := message.NewMemoryBroker(0)
	consumer, err := broker.Consumer(message.MatchAllTopics, "test", message.ConsumptionTypeSingle)
	require.NoError(t, err)

	broker.Close()

	select {
	case _, ok := <-consumer.Messages():
		assert.False(t, ok)
	case <-time.After(waitTimeout):
		t.Fatal("messages channel is not closed")
	}

	_, err = broker.Consumer(message.MatchAllTopics, "test", message.ConsumptionTypeSingle)
	assert.ErrorIs(t, err, message.ErrBrokerClosed)
	assert.ErrorIs(t, broker.Produce(context.Background(), &message.Message{Topic: "a"}), message.ErrBrokerClosed)
}

func TestMemoryBroker_RejectsInvalidFilter(t *testing.T) {
	broker := message.NewMemoryBroker(0)
	defer broker.Close()

	_, err := broker.Consumer("a/#/b", "test", message.ConsumptionTypeSingle)
	assert.ErrorIs(t, err, message.ErrInvalidTopicFilter)
}

func TestMemoryBroker_WithListener(t *testing.T) {
	broker := message.NewMemoryBroker(0)
	defer broker.Close()

	consumer, err := broker.MemoryConsumer(message.MatchAllTopics, "test", message.ConsumptionTypeSingle)
	require.NoError(t, err)

	handled := make(chan string, 3)
	handler := func(_ context.Context, msg *message.Message) error {
		handled <- string(msg.Payload)
		if string(msg.Payload) == "bad" {
			return errors.New("undecodable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	wg.Add(1)
	var listenerErr error
	go func() {
		defer wg.Done()
		listenerErr = message.NewListener(consumer, handler)(ctx)
	}()

	for _, payload := range []string{"1", "bad", "2"} {
		require.NoError(t, broker.Produce(ctx, &message.Message{ID: uuid.New(), Topic: "queue_test", Payload: []byte(payload)}))
	}
	for range 3 {
		select {
		case <-handled:
		case <-time.After(waitTimeout):
			t.Fatal("message is not handled")
		}
	}

	cancel()
	wg.Wait()
	assert.NoError(t, listenerErr)
	assert.Len(t, consumer.Acknowledged(), 2)
	assert.Equal(t, 1, consumer.Unacknowledged())
}

func receive(t *testing.T, consumer message.Consumer) *message.ConsumerMessage {
	t.Helper()

	select {
	case msg, ok := <-consumer.Messages():
		require.True(t, ok)
		return msg
	case <-time.After(waitTimeout):
		t.Fatal("message is not received")
		return nil
	}
}
