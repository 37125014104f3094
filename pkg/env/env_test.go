package env_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/state-aggregator/pkg/env"
)

func TestParse_Returns(t *testing.T) {
	t.Setenv("TEST_ENV_INT", "42")
	t.Setenv("TEST_ENV_BROKEN", "forty-two")

	v, err := env.Parse[int]("TEST_ENV_INT")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = env.Parse[int]("TEST_ENV_BROKEN")
	assert.ErrorContains(t, err, "TEST_ENV_BROKEN")

	_, err = env.Parse[string]("TEST_ENV_MISSING")
	assert.ErrorContains(t, err, "not found")
}

func TestParseOptional_MissingOrEmpty_ReturnsNil(t *testing.T) {
	t.Setenv("TEST_ENV_EMPTY", "")

	v, err := env.ParseOptional[time.Duration]("TEST_ENV_EMPTY")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = env.ParseOptional[time.Duration]("TEST_ENV_ABSENT")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseDefault_Returns(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL", "true")

	b, err := env.ParseDefault("TEST_ENV_BOOL", false)
	require.NoError(t, err)
	assert.True(t, b)

	s, err := env.ParseDefault("TEST_ENV_ABSENT", "#")
	require.NoError(t, err)
	assert.Equal(t, "#", s)
}

func TestMust_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		env.Must(env.Parse[int]("TEST_ENV_ABSENT"))
	})
}
