package pulsar

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

func TestTopicName(t *testing.T) {
	assert.Equal(t, "persistent://public/default/queue_test", topicName("public/default", "queue_test"))
}

func TestTopicsPattern(t *testing.T) {
	tests := []struct {
		filter  message.TopicFilter
		topic   string
		matches bool
	}{
		{filter: "#", topic: "persistent://public/default/queue_test", matches: true},
		{filter: "+", topic: "persistent://public/default/queue_test", matches: true},
		{filter: "#", topic: "persistent://other/ns/queue_test", matches: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter)+"_"+tt.topic, func(t *testing.T) {
			re := regexp.MustCompile("^" + topicsPattern("public/default", tt.filter) + "$")
			assert.Equal(t, tt.matches, re.MatchString(tt.topic))
		})
	}
}

func TestMessageTopic(t *testing.T) {
	assert.Equal(t, "queue_test", messageTopic("public/default", "persistent://public/default/queue_test"))
	assert.Equal(t, "queue_test", messageTopic("public/default", "persistent://public/default/queue_test-partition-3"))
	assert.Equal(t, "queue_test", messageTopic("public/default", "non-persistent://public/default/queue_test"))
}
