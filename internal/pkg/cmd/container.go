package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/api"
	"github.com/klwxsrx/state-aggregator/pkg/cmd"
	"github.com/klwxsrx/state-aggregator/pkg/env"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
	"github.com/klwxsrx/state-aggregator/pkg/kafka"
	"github.com/klwxsrx/state-aggregator/pkg/lazy"
	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
	"github.com/klwxsrx/state-aggregator/pkg/metric"
	"github.com/klwxsrx/state-aggregator/pkg/nats"
	"github.com/klwxsrx/state-aggregator/pkg/pulsar"
)

const (
	BrokerTypePulsar BrokerType = "pulsar"
	BrokerTypeNATS   BrokerType = "nats"
	BrokerTypeKafka  BrokerType = "kafka"
	BrokerTypeMemory BrokerType = "memory"

	metricsNamespace = "state_aggregator"
	metricsPath      = "/metrics"
)

type BrokerType string

type InfrastructureContainer struct {
	HTTPServer        lazy.Loader[pkghttp.Server]
	HTTPClientFactory lazy.Loader[HTTPClientFactory]
	MessageBroker     lazy.Loader[message.Broker]
	ListenerOptions   lazy.Loader[[]message.ListenerOption]
	Metrics           lazy.Loader[metric.Metrics]
	Logger            lazy.Loader[log.Logger]
}

func NewInfrastructureContainer() *InfrastructureContainer {
	logger := loggerProvider()
	prometheusMetrics := prometheusMetricsProvider(logger)
	metrics := lazy.New(func() (metric.Metrics, error) { return prometheusMetrics.Load() })

	return &InfrastructureContainer{
		HTTPServer:        httpServerProvider(prometheusMetrics, logger),
		HTTPClientFactory: httpClientFactoryProvider(metrics, logger),
		MessageBroker:     messageBrokerProvider(logger),
		ListenerOptions:   listenerOptionsProvider(metrics, logger),
		Metrics:           metrics,
		Logger:            logger,
	}
}

// Close must be called directly by defer, it exits the process on a recovered panic
func (i *InfrastructureContainer) Close(ctx context.Context) {
	if cmd.LogPanic(ctx, i.Logger.MustLoad(), recover()) {
		defer os.Exit(1)
	}

	i.MessageBroker.IfLoaded(func(broker message.Broker) { broker.Close() })
}

func loggerProvider() lazy.Loader[log.Logger] {
	return lazy.New(func() (log.Logger, error) {
		logLevelStr, err := env.Parse[string]("LOG_LEVEL")
		if err != nil {
			return log.New(log.LevelInfo), nil
		}

		logLevel, ok := log.ParseLevel(logLevelStr)
		if !ok {
			logLevel = log.LevelInfo
		}

		return log.New(logLevel), nil
	})
}

func prometheusMetricsProvider(logger lazy.Loader[log.Logger]) lazy.Loader[metric.PrometheusMetrics] {
	return lazy.New(func() (metric.PrometheusMetrics, error) {
		onError := func(err error) {
			logger.MustLoad().WithError(err).Warn(context.Background(), "failed to report metric")
		}

		return metric.NewPrometheusMetrics(metricsNamespace, onError), nil
	})
}

func httpServerProvider(
	metrics lazy.Loader[metric.PrometheusMetrics],
	logger lazy.Loader[log.Logger],
) lazy.Loader[pkghttp.Server] {
	return lazy.New(func() (pkghttp.Server, error) {
		address := env.Must(env.ParseDefault("HTTP_ADDRESS", pkghttp.DefaultServerAddress))
		return pkghttp.NewServer(
			address,
			pkghttp.WithHealthCheck(nil),
			pkghttp.WithCORSHandler(),
			pkghttp.WithRawHandler(http.MethodGet, metricsPath, metrics.MustLoad().HTTPHandler()),
			pkghttp.WithErrorMapping(map[int][]error{
				http.StatusNotFound: {api.ErrKeyNotFound},
			}),
			pkghttp.WithMetrics(metrics.MustLoad()),
			pkghttp.WithLogging(logger.MustLoad(), log.LevelInfo, log.LevelError, metricsPath),
		), nil
	})
}

func httpClientFactoryProvider(
	metrics lazy.Loader[metric.Metrics],
	logger lazy.Loader[log.Logger],
) lazy.Loader[HTTPClientFactory] {
	return lazy.New(func() (HTTPClientFactory, error) {
		return NewHTTPClientFactory(
			pkghttp.WithRequestMetrics(metrics.MustLoad()),
			pkghttp.WithRequestLogging(logger.MustLoad(), log.LevelDebug, log.LevelWarn),
		), nil
	})
}

func messageBrokerProvider(logger lazy.Loader[log.Logger]) lazy.Loader[message.Broker] {
	return lazy.New(func() (message.Broker, error) {
		brokerType := BrokerType(env.Must(env.ParseDefault("BROKER_TYPE", string(BrokerTypePulsar))))
		switch brokerType {
		case BrokerTypePulsar:
			return mustInitPulsarMessageBroker(logger.MustLoad()), nil
		case BrokerTypeNATS:
			return mustInitNATSMessageBroker(logger.MustLoad()), nil
		case BrokerTypeKafka:
			return mustInitKafkaMessageBroker(logger.MustLoad()), nil
		case BrokerTypeMemory:
			return message.NewMemoryBroker(0), nil
		default:
			return nil, fmt.Errorf("unknown broker type %q", brokerType)
		}
	})
}

func listenerOptionsProvider(
	metrics lazy.Loader[metric.Metrics],
	logger lazy.Loader[log.Logger],
) lazy.Loader[[]message.ListenerOption] {
	return lazy.New(func() ([]message.ListenerOption, error) {
		opts := []message.ListenerOption{
			message.WithHandlerMetrics(metrics.MustLoad()),
			message.WithHandlerLogging(logger.MustLoad(), log.LevelInfo, log.LevelWarn),
		}
		if env.Must(env.ParseDefault("NACK_ON_ERROR", false)) {
			opts = append(opts, message.WithNegativeAckOnError())
		}

		return opts, nil
	})
}

func mustInitPulsarMessageBroker(logger log.Logger) *pulsar.MessageBroker {
	config := &pulsar.Config{
		Address:   env.Must(env.Parse[string]("PULSAR_ADDRESS")),
		Namespace: env.Must(env.ParseDefault("PULSAR_NAMESPACE", "")),
	}
	connTimeout := env.Must(env.ParseOptional[time.Duration]("PULSAR_CONNECTION_TIMEOUT"))
	if connTimeout != nil {
		config.ConnectionTimeout = *connTimeout
	}

	messageBroker, err := pulsar.NewMessageBroker(config, logger)
	if err != nil {
		panic(fmt.Errorf("open pulsar connection: %w", err))
	}

	return messageBroker
}

func mustInitNATSMessageBroker(logger log.Logger) *nats.MessageBroker {
	config := &nats.Config{
		URL:        env.Must(env.Parse[string]("NATS_URL")),
		Stream:     env.Must(env.ParseDefault("NATS_STREAM", "")),
		ClientName: env.Must(env.ParseDefault("NATS_CLIENT_NAME", "")),
	}
	connTimeout := env.Must(env.ParseOptional[time.Duration]("NATS_CONNECTION_TIMEOUT"))
	if connTimeout != nil {
		config.ConnectionTimeout = *connTimeout
	}

	messageBroker, err := nats.NewMessageBroker(config, logger)
	if err != nil {
		panic(fmt.Errorf("open nats connection: %w", err))
	}

	return messageBroker
}

func mustInitKafkaMessageBroker(logger log.Logger) *kafka.MessageBroker {
	config := &kafka.Config{
		Brokers:  env.Must(env.Parse[[]string]("KAFKA_BROKERS")),
		ClientID: env.Must(env.ParseDefault("KAFKA_CLIENT_ID", "")),
	}
	connTimeout := env.Must(env.ParseOptional[time.Duration]("KAFKA_CONNECTION_TIMEOUT"))
	if connTimeout != nil {
		config.ConnectionTimeout = *connTimeout
	}

	messageBroker, err := kafka.NewMessageBroker(config, logger)
	if err != nil {
		panic(fmt.Errorf("open kafka connection: %w", err))
	}

	return messageBroker
}
