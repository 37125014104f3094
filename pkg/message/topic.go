package message

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	TopicLevelSeparator = "/"
	SingleLevelWildcard = "+"
	MultiLevelWildcard  = "#"

	MatchAllTopics TopicFilter = MultiLevelWildcard
)

var ErrInvalidTopicFilter = errors.New("invalid topic filter")

// TopicFilter selects topics by levels separated with "/".
// "+" matches exactly one level, "#" matches any number of trailing levels and must be the last one.
type TopicFilter string

func (f TopicFilter) Validate() error {
	if f == "" {
		return fmt.Errorf("%w: empty filter", ErrInvalidTopicFilter)
	}

	levels := f.Levels()
	for i, level := range levels {
		if strings.Contains(level, MultiLevelWildcard) && (level != MultiLevelWildcard || i != len(levels)-1) {
			return fmt.Errorf("%w %q: %s must be the last level", ErrInvalidTopicFilter, f, MultiLevelWildcard)
		}
		if strings.Contains(level, SingleLevelWildcard) && level != SingleLevelWildcard {
			return fmt.Errorf("%w %q: %s must occupy the entire level", ErrInvalidTopicFilter, f, SingleLevelWildcard)
		}
	}

	return nil
}

func (f TopicFilter) Levels() []string {
	return strings.Split(string(f), TopicLevelSeparator)
}

func (f TopicFilter) HasWildcards() bool {
	return strings.ContainsAny(string(f), SingleLevelWildcard+MultiLevelWildcard)
}

func (f TopicFilter) Matches(topic string) bool {
	filterLevels := f.Levels()
	topicLevels := strings.Split(topic, TopicLevelSeparator)
	for i, level := range filterLevels {
		if level == MultiLevelWildcard {
			return true
		}
		if i >= len(topicLevels) {
			return false
		}
		if level != SingleLevelWildcard && level != topicLevels[i] {
			return false
		}
	}

	return len(filterLevels) == len(topicLevels)
}

// RegexpBody returns an unanchored regular expression equivalent to the filter
func (f TopicFilter) RegexpBody() string {
	sb := strings.Builder{}
	for i, level := range f.Levels() {
		switch {
		case level == MultiLevelWildcard && i == 0:
			sb.WriteString(".*")
		case level == MultiLevelWildcard:
			sb.WriteString("(" + regexp.QuoteMeta(TopicLevelSeparator) + ".*)?")
		default:
			if i > 0 {
				sb.WriteString(regexp.QuoteMeta(TopicLevelSeparator))
			}
			if level == SingleLevelWildcard {
				sb.WriteString("[^" + regexp.QuoteMeta(TopicLevelSeparator) + "]+")
			} else {
				sb.WriteString(regexp.QuoteMeta(level))
			}
		}
	}

	return sb.String()
}
