//go:generate ${TOOLS_PATH}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "StateReader=StateReader"
package api

import (
	"errors"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/domain"
)

var ErrKeyNotFound = errors.New("state key not found")

// StateReader is safe for use from any number of goroutines and never blocks on message consumption
type StateReader interface {
	Snapshot() domain.StateView
}
