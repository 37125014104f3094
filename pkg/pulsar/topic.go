package pulsar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/klwxsrx/state-aggregator/pkg/message"
)

const persistentTopicScheme = "persistent://"

var partitionSuffix = regexp.MustCompile(`-partition-\d+$`)

func topicName(namespace, topic string) string {
	return fmt.Sprintf("%s%s/%s", persistentTopicScheme, namespace, topic)
}

func topicsPattern(namespace string, filter message.TopicFilter) string {
	return fmt.Sprintf("%s%s/%s", persistentTopicScheme, regexp.QuoteMeta(namespace), filter.RegexpBody())
}

// messageTopic converts a fully qualified topic name back to the namespace-local one
func messageTopic(namespace, fullName string) string {
	topic := partitionSuffix.ReplaceAllString(fullName, "")
	for _, scheme := range []string{persistentTopicScheme, "non-" + persistentTopicScheme} {
		topic = strings.TrimPrefix(topic, scheme)
	}

	return strings.TrimPrefix(topic, namespace+"/")
}
