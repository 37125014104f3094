package main

import (
	"context"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/klwxsrx/state-aggregator/internal/aggregator"
	"github.com/klwxsrx/state-aggregator/internal/aggregator/domain"
	"github.com/klwxsrx/state-aggregator/internal/pkg/cmd"
	pkgcmd "github.com/klwxsrx/state-aggregator/pkg/cmd"
	"github.com/klwxsrx/state-aggregator/pkg/env"
	"github.com/klwxsrx/state-aggregator/pkg/message"
	"github.com/klwxsrx/state-aggregator/pkg/worker"
)

func main() {
	ctx := context.Background()
	infra := cmd.NewInfrastructureContainer()
	defer infra.Close(ctx)

	variant := env.Must(domain.ParseVariant(env.Must(env.ParseDefault("AGGREGATE_VARIANT", string(domain.VariantCounter)))))
	container := aggregator.NewDependencyContainer(variant, infra.Metrics, infra.Logger)

	httpServer := infra.HTTPServer.MustLoad()
	container.MustRegisterHTTPHandlers(httpServer)

	listener := container.MustInitMessageListener(
		infra.MessageBroker.MustLoad(),
		message.TopicFilter(env.Must(env.ParseDefault("TOPIC_FILTER", string(message.MatchAllTopics)))),
		message.SubscriberName(env.Must(env.ParseDefault("SUBSCRIBER_NAME", ""))),
		infra.ListenerOptions.MustLoad()...,
	)

	processes := []worker.ErrorJob{
		httpServer.Listener,
		listener,
	}
	reportInterval := env.Must(env.ParseOptional[time.Duration]("STATE_REPORT_INTERVAL"))
	if reportInterval != nil {
		processes = append(processes, container.StateReporter(*reportInterval))
	}

	logger := infra.Logger.MustLoad()
	logger.WithField("variant", variant).Info(ctx, "app is ready")
	worker.MustRunHub(ctx, logger, pkgcmd.TermSignalAwaiter, processes...)
}
