package lazy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klwxsrx/state-aggregator/pkg/lazy"
)

func TestLoader_Load_CallsProviderOnce(t *testing.T) {
	calls := 0
	loader := lazy.New(func() (int, error) {
		calls++
		return 7, nil
	})

	loader.IfLoaded(func(int) { t.Fatal("must not be loaded yet") })
	assert.Equal(t, 7, loader.MustLoad())
	assert.Equal(t, 7, loader.MustLoad())
	assert.Equal(t, 1, calls)

	var got int
	loader.IfLoaded(func(v int) { got = v })
	assert.Equal(t, 7, got)
}

func TestLoader_Load_ProviderError(t *testing.T) {
	loader := lazy.New(func() (string, error) {
		return "", errors.New("unavailable")
	})

	_, err := loader.Load()
	assert.ErrorContains(t, err, "unavailable")
	assert.Panics(t, func() { loader.MustLoad() })
	loader.IfLoaded(func(string) { t.Fatal("failed value must not be passed") })
}
