package cmd_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/state-aggregator/internal/pkg/cmd"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
	"github.com/klwxsrx/state-aggregator/pkg/message"
)

func TestInfrastructureContainer_MemoryBroker(t *testing.T) {
	t.Setenv("BROKER_TYPE", string(cmd.BrokerTypeMemory))
	t.Setenv("LOG_LEVEL", "disabled")

	infra := cmd.NewInfrastructureContainer()
	defer infra.Close(context.Background())

	broker := infra.MessageBroker.MustLoad()
	assert.IsType(t, &message.MemoryBroker{}, broker)
	assert.NotEmpty(t, infra.ListenerOptions.MustLoad())
}

func TestInfrastructureContainer_UnknownBroker(t *testing.T) {
	t.Setenv("BROKER_TYPE", "carrier-pigeon")

	infra := cmd.NewInfrastructureContainer()
	_, err := infra.MessageBroker.Load()
	assert.Error(t, err)
}

func TestInfrastructureContainer_HTTPServerExposesMetrics(t *testing.T) {
	t.Setenv("LOG_LEVEL", "disabled")

	infra := cmd.NewInfrastructureContainer()
	infra.Metrics.MustLoad().Increment("test_events_total")

	ts := httptest.NewServer(infra.HTTPServer.MustLoad())
	defer ts.Close()

	for _, path := range []string{pkghttp.HealthPath, "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestHTTPClientFactory_MustInitClient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()
	t.Setenv("STATE_SERVICE_URL", ts.URL)

	client := cmd.NewHTTPClientFactory().MustInitClient("state")
	resp, err := client.NewRequest(context.Background()).Get("/")
	require.NoError(t, pkghttp.CheckResponse(resp, err))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())

	assert.Panics(t, func() {
		cmd.NewHTTPClientFactory().MustInitClient("missing")
	})
}
