package metric

import "time"

type (
	Labels map[string]any

	Metrics interface {
		With(labels Labels) Metrics
		WithLabel(name string, value any) Metrics
		Increment(key string)
		Count(key string, value int)
		Gauge(key string, value int)
		Duration(key string, duration time.Duration)
	}
)

func (l Labels) merge(other Labels) Labels {
	result := make(Labels, len(l)+len(other))
	for name, value := range l {
		result[name] = value
	}
	for name, value := range other {
		result[name] = value
	}

	return result
}
