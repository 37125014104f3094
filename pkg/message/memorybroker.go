package message

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

const defaultMemoryQueueSize = 64

var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker delivers produced messages to every subscribed consumer whose filter matches the topic.
// Messages are not persisted, consumers created after Produce do not receive earlier messages.
type MemoryBroker struct {
	queueSize int

	mutex     sync.RWMutex
	consumers []*MemoryConsumer
	closed    bool
}

func NewMemoryBroker(queueSize int) *MemoryBroker {
	if queueSize <= 0 {
		queueSize = defaultMemoryQueueSize
	}

	return &MemoryBroker{queueSize: queueSize}
}

func (b *MemoryBroker) Consumer(filter TopicFilter, subscriber SubscriberName, ct ConsumptionType) (Consumer, error) {
	return b.MemoryConsumer(filter, subscriber, ct)
}

func (b *MemoryBroker) MemoryConsumer(filter TopicFilter, subscriber SubscriberName, _ ConsumptionType) (*MemoryConsumer, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}

	consumer := &MemoryConsumer{
		name:     fmt.Sprintf("%s/%s", subscriber, filter),
		filter:   filter,
		queue:    make(chan *Message, b.queueSize),
		messages: make(chan *ConsumerMessage),
		done:     make(chan struct{}),
		pending:  make(map[*ConsumerMessage]struct{}),
		onClose:  b.removeConsumer,
	}
	b.consumers = append(b.consumers, consumer)

	go consumer.pump()
	return consumer, nil
}

func (b *MemoryBroker) Produce(ctx context.Context, msg *Message) error {
	b.mutex.RLock()
	consumers := slices.Clone(b.consumers)
	closed := b.closed
	b.mutex.RUnlock()
	if closed {
		return ErrBrokerClosed
	}

	for _, consumer := range consumers {
		if !consumer.filter.Matches(msg.Topic) {
			continue
		}

		msgCopy := *msg
		msgCopy.Payload = bytes.Clone(msg.Payload)
		if err := consumer.enqueue(ctx, &msgCopy); err != nil {
			return fmt.Errorf("produce message to %s: %w", consumer.name, err)
		}
	}

	return nil
}

// Close terminates every consumer subscription, consumers observe a closed messages channel
func (b *MemoryBroker) Close() {
	b.mutex.Lock()
	b.closed = true
	consumers := b.consumers
	b.consumers = nil
	b.mutex.Unlock()

	for _, consumer := range consumers {
		consumer.terminate()
	}
}

func (b *MemoryBroker) removeConsumer(consumer *MemoryConsumer) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.consumers = slices.DeleteFunc(b.consumers, func(c *MemoryConsumer) bool {
		return c == consumer
	})
}

type MemoryConsumer struct {
	name     string
	filter   TopicFilter
	queue    chan *Message
	messages chan *ConsumerMessage
	done     chan struct{}
	doneOnce sync.Once
	onClose  func(*MemoryConsumer)

	mutex   sync.Mutex
	pending map[*ConsumerMessage]struct{}
	acked   []uuid.UUID
	nacked  []uuid.UUID
}

func (c *MemoryConsumer) Name() string {
	return c.name
}

func (c *MemoryConsumer) Messages() <-chan *ConsumerMessage {
	return c.messages
}

func (c *MemoryConsumer) Ack(_ context.Context, msg *ConsumerMessage) error {
	if err := c.settle(msg); err != nil {
		return err
	}

	c.mutex.Lock()
	c.acked = append(c.acked, msg.Message.ID)
	c.mutex.Unlock()
	return nil
}

// Nack schedules the message for redelivery
func (c *MemoryConsumer) Nack(_ context.Context, msg *ConsumerMessage) error {
	if err := c.settle(msg); err != nil {
		return err
	}

	c.mutex.Lock()
	c.nacked = append(c.nacked, msg.Message.ID)
	c.mutex.Unlock()

	redelivered := msg.Message
	go func() {
		_ = c.enqueue(context.Background(), &redelivered)
	}()
	return nil
}

func (c *MemoryConsumer) Close() error {
	c.onClose(c)
	c.terminate()
	return nil
}

func (c *MemoryConsumer) Acknowledged() []uuid.UUID {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return slices.Clone(c.acked)
}

func (c *MemoryConsumer) NegativelyAcknowledged() []uuid.UUID {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return slices.Clone(c.nacked)
}

// Unacknowledged returns the count of delivered messages which were neither acknowledged nor negatively acknowledged
func (c *MemoryConsumer) Unacknowledged() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.pending)
}

func (c *MemoryConsumer) settle(msg *ConsumerMessage) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.pending[msg]; !ok {
		return fmt.Errorf("%w: %v", ErrNotAwaitingAck, msg.Message.ID)
	}

	delete(c.pending, msg)
	return nil
}

func (c *MemoryConsumer) enqueue(ctx context.Context, msg *Message) error {
	select {
	case c.queue <- msg:
		return nil
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *MemoryConsumer) terminate() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

func (c *MemoryConsumer) pump() {
	defer close(c.messages)

	for {
		select {
		case msg := <-c.queue:
			consumerMsg := &ConsumerMessage{
				Context: context.Background(),
				Message: *msg,
			}

			c.mutex.Lock()
			c.pending[consumerMsg] = struct{}{}
			c.mutex.Unlock()

			select {
			case c.messages <- consumerMsg:
			case <-c.done:
				c.mutex.Lock()
				delete(c.pending, consumerMsg)
				c.mutex.Unlock()
				return
			}
		case <-c.done:
			return
		}
	}
}
