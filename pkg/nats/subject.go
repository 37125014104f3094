package nats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const subjectTokenSeparator = "."

var ErrUnsupportedTopic = errors.New("topic is not representable as nats subject")

// validateTopic rejects topics that would not survive the topic to subject round trip.
func validateTopic(topic string) error {
	if strings.ContainsAny(topic, subjectTokenSeparator+"*> \t\r\n") {
		return fmt.Errorf("%w: %q contains reserved subject characters", ErrUnsupportedTopic, topic)
	}
	for _, level := range strings.Split(topic, message.TopicLevelSeparator) {
		if level == "" {
			return fmt.Errorf("%w: %q contains an empty level", ErrUnsupportedTopic, topic)
		}
	}

	return nil
}

// filterSubject converts a topic filter to a subject within the stream prefix.
// A trailing "#" becomes ">" which requires at least one more token, so "a/#" does not match "a" itself.
func filterSubject(prefix string, filter message.TopicFilter) string {
	levels := filter.Levels()
	tokens := make([]string, 0, len(levels)+1)
	tokens = append(tokens, prefix)
	for _, level := range levels {
		switch level {
		case message.MultiLevelWildcard:
			tokens = append(tokens, ">")
		case message.SingleLevelWildcard:
			tokens = append(tokens, "*")
		default:
			tokens = append(tokens, level)
		}
	}

	return strings.Join(tokens, subjectTokenSeparator)
}

func topicSubject(prefix, topic string) string {
	return prefix + subjectTokenSeparator + strings.ReplaceAll(topic, message.TopicLevelSeparator, subjectTokenSeparator)
}

func subjectTopic(prefix, subject string) string {
	topic := strings.TrimPrefix(subject, prefix+subjectTokenSeparator)
	return strings.ReplaceAll(topic, subjectTokenSeparator, message.TopicLevelSeparator)
}
