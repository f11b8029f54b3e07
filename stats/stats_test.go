package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterInc(t *testing.T) {
	scope := MakeScope()
	c := scope.Counter("redis.splitter.invalid_request")
	assert.Equal(t, int64(0), c.Value())
	c.Inc()
	c.Inc()
	assert.Equal(t, int64(2), c.Value())
}

func TestScopeReturnsSameCounter(t *testing.T) {
	scope := MakeScope()
	a := scope.Counter("redis.splitter.command.get.total")
	b := scope.Counter("redis.splitter.command.get.total")
	assert.Same(t, a, b)
	a.Inc()
	assert.Equal(t, int64(1), b.Value())
}

func TestPromScope(t *testing.T) {
	registry := prometheus.NewRegistry()
	scope := MakePromScope(registry)

	c := scope.Counter("redis.splitter.unsupported_command")
	c.Inc()
	assert.Equal(t, int64(1), c.Value())

	// 点号换成下划线后注册到registry
	families, err := registry.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "redis_splitter_unsupported_command", families[0].GetName())
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, float64(1), families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestPromScopeDuplicateName(t *testing.T) {
	registry := prometheus.NewRegistry()
	scope := MakePromScope(registry)
	a := scope.Counter("redis.splitter.command.mget.total")
	b := scope.Counter("redis.splitter.command.mget.total")
	assert.Same(t, a, b)
}
