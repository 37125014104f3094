package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

func TestMatchingTopics(t *testing.T) {
	topics := []string{"queue_test", "sensors.kitchen", "sensors.hall.temperature", "__consumer_offsets"}

	assert.Equal(t, []string{"queue_test", "sensors.hall.temperature", "sensors.kitchen"}, matchingTopics(message.MatchAllTopics, topics))
	assert.Equal(t, []string{"sensors.kitchen"}, matchingTopics("sensors/+", topics))
	assert.Equal(t, []string{"sensors.hall.temperature", "sensors.kitchen"}, matchingTopics("sensors/#", topics))
	assert.Empty(t, matchingTopics("missing", topics))
}

func TestKafkaTopic(t *testing.T) {
	assert.Equal(t, "sensors.kitchen", kafkaTopic("sensors/kitchen"))
	assert.Equal(t, "sensors/kitchen", messageTopic("sensors.kitchen"))
}

func TestMessageID(t *testing.T) {
	id := uuid.New()
	withHeader := &sarama.ConsumerMessage{
		Topic:   "queue_test",
		Headers: []*sarama.RecordHeader{{Key: []byte(messageIDHeader), Value: []byte(id.String())}},
	}
	assert.Equal(t, id, messageID(withHeader))

	withoutHeader := &sarama.ConsumerMessage{Topic: "queue_test", Partition: 1, Offset: 42}
	assert.Equal(t, message.NewPositionID("kafka", "queue_test", "1", "42"), messageID(withoutHeader))
}
