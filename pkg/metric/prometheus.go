package metric

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusMetrics interface {
	Metrics
	HTTPHandler() http.Handler
}

type prometheusMetrics struct {
	set    *collectorSet
	labels Labels
}

// NewPrometheusMetrics registers collectors lazily: the first call of a key fixes its label names,
// later calls with a different label set are dropped and passed to onError.
func NewPrometheusMetrics(namespace string, onError func(error)) PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if onError == nil {
		onError = func(error) {}
	}

	return prometheusMetrics{
		set: &collectorSet{
			namespace:  normalizeName(namespace),
			registry:   registry,
			onError:    onError,
			counters:   make(map[string]*prometheus.CounterVec),
			gauges:     make(map[string]*prometheus.GaugeVec),
			histograms: make(map[string]*prometheus.HistogramVec),
		},
		labels: nil,
	}
}

func (m prometheusMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.set.registry, promhttp.HandlerOpts{})
}

func (m prometheusMetrics) With(labels Labels) Metrics {
	if len(labels) == 0 {
		return m
	}

	m.labels = m.labels.merge(labels)
	return m
}

func (m prometheusMetrics) WithLabel(name string, value any) Metrics {
	return m.With(Labels{name: value})
}

func (m prometheusMetrics) Increment(key string) {
	m.Count(key, 1)
}

func (m prometheusMetrics) Count(key string, value int) {
	names, values := m.labelPairs()
	counter, err := m.set.counter(key, names)
	if err != nil {
		m.set.onError(err)
		return
	}

	counter.WithLabelValues(values...).Add(float64(value))
}

func (m prometheusMetrics) Gauge(key string, value int) {
	names, values := m.labelPairs()
	gauge, err := m.set.gauge(key, names)
	if err != nil {
		m.set.onError(err)
		return
	}

	gauge.WithLabelValues(values...).Set(float64(value))
}

func (m prometheusMetrics) Duration(key string, duration time.Duration) {
	names, values := m.labelPairs()
	histogram, err := m.set.histogram(key, names)
	if err != nil {
		m.set.onError(err)
		return
	}

	histogram.WithLabelValues(values...).Observe(duration.Seconds())
}

func (m prometheusMetrics) labelPairs() (names, values []string) {
	names = make([]string, 0, len(m.labels))
	for name := range m.labels {
		names = append(names, name)
	}
	sort.Strings(names)

	values = make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, fmt.Sprintf("%v", m.labels[name]))
	}

	return names, values
}

type collectorSet struct {
	namespace string
	registry  *prometheus.Registry
	onError   func(error)

	mutex      sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func (c *collectorSet) counter(key string, labelNames []string) (*prometheus.CounterVec, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	id := collectorID(key, labelNames)
	if counter, ok := c.counters[id]; ok {
		return counter, nil
	}

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      normalizeName(key),
	}, labelNames)
	if err := c.register(key, counter); err != nil {
		return nil, err
	}

	c.counters[id] = counter
	return counter, nil
}

func (c *collectorSet) gauge(key string, labelNames []string) (*prometheus.GaugeVec, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	id := collectorID(key, labelNames)
	if gauge, ok := c.gauges[id]; ok {
		return gauge, nil
	}

	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      normalizeName(key),
	}, labelNames)
	if err := c.register(key, gauge); err != nil {
		return nil, err
	}

	c.gauges[id] = gauge
	return gauge, nil
}

func (c *collectorSet) histogram(key string, labelNames []string) (*prometheus.HistogramVec, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	id := collectorID(key, labelNames)
	if histogram, ok := c.histograms[id]; ok {
		return histogram, nil
	}

	histogram := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      normalizeName(key),
		Buckets:   prometheus.DefBuckets,
	}, labelNames)
	if err := c.register(key, histogram); err != nil {
		return nil, err
	}

	c.histograms[id] = histogram
	return histogram, nil
}

func (c *collectorSet) register(key string, collector prometheus.Collector) error {
	err := c.registry.Register(collector)
	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return fmt.Errorf("metric %s is already registered with another label set", key)
	}
	if err != nil {
		return fmt.Errorf("register metric %s: %w", key, err)
	}

	return nil
}

func collectorID(key string, labelNames []string) string {
	return fmt.Sprintf("%s{%s}", key, strings.Join(labelNames, ","))
}

func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Latin, r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, strings.ToLower(name))
}
