package kafka

import (
	"slices"
	"strings"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const kafkaTopicLevelSeparator = "."

func kafkaTopic(topic string) string {
	return strings.ReplaceAll(topic, message.TopicLevelSeparator, kafkaTopicLevelSeparator)
}

func messageTopic(kafkaTopic string) string {
	return strings.ReplaceAll(kafkaTopic, kafkaTopicLevelSeparator, message.TopicLevelSeparator)
}

// matchingTopics returns the sorted kafka topics selected by filter, internal topics are skipped
func matchingTopics(filter message.TopicFilter, topics []string) []string {
	result := make([]string, 0, len(topics))
	for _, topic := range topics {
		if strings.HasPrefix(topic, "__") {
			continue
		}
		if filter.Matches(messageTopic(topic)) {
			result = append(result, topic)
		}
	}

	slices.Sort(result)
	return result
}
