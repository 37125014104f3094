package message

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicFilter_Validate(t *testing.T) {
	tests := []struct {
		filter TopicFilter
		valid  bool
	}{
		{filter: "#", valid: true},
		{filter: "+", valid: true},
		{filter: "queue_test", valid: true},
		{filter: "sensors/+/temperature", valid: true},
		{filter: "sensors/#", valid: true},
		{filter: "", valid: false},
		{filter: "sensors/#/temperature", valid: false},
		{filter: "sensors#", valid: false},
		{filter: "sensors/room+", valid: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTopicFilter)
			}
		})
	}
}

func TestTopicFilter_Matches(t *testing.T) {
	tests := []struct {
		filter  TopicFilter
		topic   string
		matches bool
	}{
		{filter: "#", topic: "queue_test", matches: true},
		{filter: "#", topic: "a/b/c", matches: true},
		{filter: "queue_test", topic: "queue_test", matches: true},
		{filter: "queue_test", topic: "queue_test2", matches: false},
		{filter: "sensors/#", topic: "sensors", matches: true},
		{filter: "sensors/#", topic: "sensors/a/b", matches: true},
		{filter: "sensors/#", topic: "other/a", matches: false},
		{filter: "sensors/+", topic: "sensors/a", matches: true},
		{filter: "sensors/+", topic: "sensors/a/b", matches: false},
		{filter: "sensors/+", topic: "sensors", matches: false},
		{filter: "+/temperature", topic: "kitchen/temperature", matches: true},
		{filter: "+/temperature", topic: "kitchen/humidity", matches: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter)+"_"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.filter.Matches(tt.topic))

			re := regexp.MustCompile("^" + tt.filter.RegexpBody() + "$")
			assert.Equal(t, tt.matches, re.MatchString(tt.topic))
		})
	}
}

func TestTopicFilter_HasWildcards(t *testing.T) {
	assert.True(t, MatchAllTopics.HasWildcards())
	assert.True(t, TopicFilter("a/+/b").HasWildcards())
	assert.False(t, TopicFilter("a/b").HasWildcards())
}
