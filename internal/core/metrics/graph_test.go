package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGraphMetrics_Counters 测试计数器
func TestGraphMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewGraphMetrics(reg, "test")
	require.NoError(t, err)

	m.ObserveLocalUpdate("create_node")
	m.ObserveLocalUpdate("create_node")
	m.ObserveLocalUpdate("destroy_node")
	m.ObservePublish(10*time.Millisecond, "")
	m.ObservePublish(20*time.Millisecond, "transport_unavailable")
	m.ObserveMerge("applied")
	m.ObserveMerge("rejected")
	m.ObserveDecodeError()
	m.ObservePeerEvent("leave")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.localUpdates.WithLabelValues("create_node")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.localUpdates.WithLabelValues("destroy_node")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishFailures.WithLabelValues("transport_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteMerges.WithLabelValues("applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteMerges.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.peerEvents.WithLabelValues("leave")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.publishDuration))
}

// TestGraphMetrics_Gauges 测试图规模
func TestGraphMetrics_Gauges(t *testing.T) {
	m, err := NewGraphMetrics(nil, "test")
	require.NoError(t, err)

	m.SetGraphSize(3, 7)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.participants))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.nodes))

	m.SetGraphSize(1, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.participants))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.nodes))
}

// TestGraphMetrics_DuplicateRegistration 测试重复注册
func TestGraphMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewGraphMetrics(reg, "test")
	require.NoError(t, err)

	_, err = NewGraphMetrics(reg, "test")
	assert.Error(t, err)

	first.Unregister(reg)
	_, err = NewGraphMetrics(reg, "test")
	assert.NoError(t, err)
}

// TestGraphMetrics_NilSafe 测试 nil 接收者
func TestGraphMetrics_NilSafe(t *testing.T) {
	var m *GraphMetrics
	assert.NotPanics(t, func() {
		m.ObserveLocalUpdate("create_node")
		m.ObservePublish(time.Millisecond, "publish_rejected")
		m.ObserveMerge("applied")
		m.ObserveDecodeError()
		m.ObservePeerEvent("join")
		m.SetGraphSize(1, 1)
		m.Unregister(prometheus.NewRegistry())
	})
}
