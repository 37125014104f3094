package state

import (
	"errors"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/domain"
)

var ErrWriterAcquired = errors.New("state writer already acquired")

// Store is the single authoritative aggregate.
// Reads may run concurrently with each other, every fold is applied under the exclusive lock.
type Store struct {
	variant        domain.Variant
	writerAcquired atomic.Bool

	mutex  sync.RWMutex
	count  uint64
	values map[string]string
}

func NewStore(variant domain.Variant) (*Store, error) {
	if err := variant.Validate(); err != nil {
		return nil, err
	}

	s := &Store{variant: variant}
	if variant == domain.VariantKeyValue {
		s.values = make(map[string]string)
	}

	return s, nil
}

// Writer hands out the only mutator of the store, a repeated call fails
func (s *Store) Writer() (*Writer, error) {
	if !s.writerAcquired.CompareAndSwap(false, true) {
		return nil, ErrWriterAcquired
	}

	return &Writer{store: s}, nil
}

func (s *Store) Variant() domain.Variant {
	return s.variant
}

func (s *Store) Snapshot() domain.StateView {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return domain.StateView{
		Variant: s.variant,
		Count:   s.count,
		Values:  maps.Clone(s.values),
	}
}

func (s *Store) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.variant == domain.VariantCounter {
		return int(s.count) //nolint:gosec
	}

	return len(s.values)
}

type Writer struct {
	store *Store
}

// Apply folds a single message, the store is left untouched when the message cannot be decoded
func (w *Writer) Apply(payload []byte, key string) error {
	entry, err := domain.DecodeEntry(payload, key)
	if err != nil {
		return err
	}

	s := w.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch s.variant {
	case domain.VariantCounter:
		s.count++
	case domain.VariantKeyValue:
		s.values[entry.Key] = entry.Value
		s.count++
	}

	return nil
}
