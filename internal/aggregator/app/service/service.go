package service

import (
	"context"
	"fmt"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/app/state"
	"github.com/klwxsrx/state-aggregator/pkg/log"
	"github.com/klwxsrx/state-aggregator/pkg/message"
	"github.com/klwxsrx/state-aggregator/pkg/metric"
)

const maxReportedKeys = 20

type FoldService struct {
	store   *state.Store
	writer  *state.Writer
	metrics metric.Metrics
	logger  log.Logger
}

func NewFoldService(
	store *state.Store,
	metrics metric.Metrics,
	logger log.Logger,
) (*FoldService, error) {
	writer, err := store.Writer()
	if err != nil {
		return nil, err
	}

	return &FoldService{
		store:   store,
		writer:  writer,
		metrics: metrics.WithLabel("variant", string(store.Variant())),
		logger:  logger,
	}, nil
}

// HandleMessage folds the message keyed by its key, or by its topic when the key is not set
func (s *FoldService) HandleMessage(_ context.Context, msg *message.Message) error {
	key := msg.Key
	if key == "" {
		key = msg.Topic
	}

	err := s.writer.Apply(msg.Payload, key)
	if err != nil {
		return fmt.Errorf("fold message %v from %s: %w", msg.ID, msg.Topic, err)
	}

	s.metrics.Gauge("aggregate_state_size", s.store.Size())
	return nil
}

func (s *FoldService) ReportState(ctx context.Context) {
	snapshot := s.store.Snapshot()
	fields := log.Fields{
		"variant": snapshot.Variant,
		"count":   snapshot.Count,
		"size":    snapshot.Size(),
	}

	keys := snapshot.Keys()
	if len(keys) > 0 {
		if len(keys) > maxReportedKeys {
			keys = keys[:maxReportedKeys]
		}
		fields["keys"] = keys
	}

	s.logger.With(log.Fields{"state": fields}).Info(ctx, "aggregate state report")
}
