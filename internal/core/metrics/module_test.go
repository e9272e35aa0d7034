package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-graphdir/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

// TestModule_Load 测试模块加载
func TestModule_Load(t *testing.T) {
	var m *GraphMetrics

	app := fxtest.New(t,
		Module,
		fx.Populate(&m),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, m)
	m.ObserveLocalUpdate("create_node")
}

// TestModule_Disabled 测试禁用指标
func TestModule_Disabled(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Diagnostics.EnableMetrics = false

	var m *GraphMetrics
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&m),
	)
	defer app.RequireStart().RequireStop()

	assert.Nil(t, m)
}

// TestModule_Registerer 测试注册与停止时注销
func TestModule_Registerer(t *testing.T) {
	reg := prometheus.NewRegistry()

	var m *GraphMetrics
	app := fxtest.New(t,
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module,
		fx.Populate(&m),
	)
	app.RequireStart()
	require.NotNil(t, m)

	m.ObserveDecodeError()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	app.RequireStop()

	// 停止后可重新注册同名指标
	_, err = NewGraphMetrics(reg, "graphdir")
	assert.NoError(t, err)
}

// TestConfigFromUnified 测试配置转换
func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Diagnostics.MetricsNamespace = "custom"
	assert.Equal(t, "custom", ConfigFromUnified(cfg).Namespace)
}
