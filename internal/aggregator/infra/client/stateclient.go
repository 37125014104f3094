package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/api"
	"github.com/klwxsrx/state-aggregator/internal/aggregator/domain"
	pkghttp "github.com/klwxsrx/state-aggregator/pkg/http"
)

const DestinationStateService pkghttp.Destination = "state"

type StateClient struct {
	client pkghttp.Client
}

func NewStateClient(client pkghttp.Client) *StateClient {
	return &StateClient{client: client}
}

func (c *StateClient) Snapshot(ctx context.Context) (domain.StateView, error) {
	var result domain.StateView
	resp, err := c.client.NewRequest(ctx).
		SetResult(&result).
		Get("/state")
	if err = pkghttp.CheckResponse(resp, err); err != nil {
		return domain.StateView{}, fmt.Errorf("get state: %w", err)
	}

	return result, nil
}

func (c *StateClient) Value(ctx context.Context, key string) (string, error) {
	var result stateValueOut
	resp, err := c.client.NewRequest(ctx).
		SetPathParam("key", key).
		SetResult(&result).
		Get("/state/{key}")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("get state value: %w: %s", api.ErrKeyNotFound, key)
	}
	if err = pkghttp.CheckResponse(resp, err); err != nil {
		return "", fmt.Errorf("get state value: %w", err)
	}

	return result.Value, nil
}

func (c *StateClient) Count(ctx context.Context) (uint64, error) {
	snapshot, err := c.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	return snapshot.Count, nil
}

// IsNotFound reports whether the aggregator has no value for the requested key
func IsNotFound(err error) bool {
	return errors.Is(err, api.ErrKeyNotFound)
}

type stateValueOut struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
