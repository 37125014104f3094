package aggregator

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/app/service"
	"github.com/klwxsrx/state-aggregator/internal/aggregator/app/state"
	"github.com/klwxsrx/state-aggregator/internal/aggregator/domain"
	"github.com/klwxsrx/state-aggregator/internal/aggregator/infra/http"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
	pkglazy "github.com/klwxsrx/state-aggregator/pkg/lazy"
	pkglog "github.com/klwxsrx/state-aggregator/pkg/log"
	pkgmessage "github.com/klwxsrx/state-aggregator/pkg/message"
	pkgmetric "github.com/klwxsrx/state-aggregator/pkg/metric"
	pkgworker "github.com/klwxsrx/state-aggregator/pkg/worker"
)

const serviceName = "state-aggregator"

type DependencyContainer struct {
	Store        pkglazy.Loader[*state.Store]
	FoldService  pkglazy.Loader[*service.FoldService]
	HTTPHandlers pkglazy.Loader[[]pkghttp.Handler]

	listenerInitialized atomic.Bool
}

func NewDependencyContainer(
	variant domain.Variant,
	metrics pkglazy.Loader[pkgmetric.Metrics],
	logger pkglazy.Loader[pkglog.Logger],
) *DependencyContainer {
	store := storeProvider(variant)
	foldService := foldServiceProvider(store, metrics, logger)

	return &DependencyContainer{
		Store:        store,
		FoldService:  foldService,
		HTTPHandlers: httpHandlersProvider(store),
	}
}

func (c *DependencyContainer) MustRegisterHTTPHandlers(registry pkghttp.HandlerRegistry) {
	for _, handler := range c.HTTPHandlers.MustLoad() {
		registry.Register(handler)
	}
}

// MustInitMessageListener subscribes the fold service to the topics matching filter.
// An empty subscriber name falls back to the service name.
// The store has the only writer, so the listener is initialized once per container.
func (c *DependencyContainer) MustInitMessageListener(
	consumers pkgmessage.ConsumerProvider,
	filter pkgmessage.TopicFilter,
	subscriber pkgmessage.SubscriberName,
	opts ...pkgmessage.ListenerOption,
) pkgworker.ErrorJob {
	if !c.listenerInitialized.CompareAndSwap(false, true) {
		panic(fmt.Errorf("init message listener: %w", state.ErrWriterAcquired))
	}

	if subscriber == "" {
		subscriber = pkgmessage.NewSubscriberServiceName(serviceName)
	}

	consumer, err := consumers.Consumer(filter, subscriber, pkgmessage.ConsumptionTypeSingle)
	if err != nil {
		panic(fmt.Errorf("subscribe %s to %s: %w", subscriber, filter, err))
	}

	return pkgmessage.NewListener(consumer, c.FoldService.MustLoad().HandleMessage, opts...)
}

func (c *DependencyContainer) StateReporter(every time.Duration) pkgworker.ErrorJob {
	return pkgworker.PeriodicalJob(c.FoldService.MustLoad().ReportState, every)
}

func storeProvider(variant domain.Variant) pkglazy.Loader[*state.Store] {
	return pkglazy.New(func() (*state.Store, error) {
		return state.NewStore(variant)
	})
}

func foldServiceProvider(
	store pkglazy.Loader[*state.Store],
	metrics pkglazy.Loader[pkgmetric.Metrics],
	logger pkglazy.Loader[pkglog.Logger],
) pkglazy.Loader[*service.FoldService] {
	return pkglazy.New(func() (*service.FoldService, error) {
		return service.NewFoldService(
			store.MustLoad(),
			metrics.MustLoad(),
			logger.MustLoad(),
		)
	})
}

func httpHandlersProvider(store pkglazy.Loader[*state.Store]) pkglazy.Loader[[]pkghttp.Handler] {
	return pkglazy.New(func() ([]pkghttp.Handler, error) {
		stateReader := store.MustLoad()
		return []pkghttp.Handler{
			http.NewGreetingHandler(),
			http.NewHealthcheckHandler(),
			http.NewCountHandler(stateReader),
			http.NewStateHandler(stateReader),
			http.NewStateValueHandler(stateReader),
		}, nil
	})
}
