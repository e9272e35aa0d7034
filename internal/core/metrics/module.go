package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-graphdir/config"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// Namespace 指标命名空间
	Namespace string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultDiagnosticsConfig()
	return Config{
		Enabled:   d.EnableMetrics,
		Namespace: d.MetricsNamespace,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:   cfg.Diagnostics.EnableMetrics,
		Namespace: cfg.Diagnostics.MetricsNamespace,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	LC         fx.Lifecycle
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewGraphMetricsFromParams),
)

// NewGraphMetricsFromParams 从参数创建 GraphMetrics
//
// 未启用指标时返回 nil，GraphMetrics 的方法在 nil 上是空操作。
func NewGraphMetricsFromParams(p Params) (*GraphMetrics, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return nil, nil
	}

	m, err := NewGraphMetrics(p.Registerer, cfg.Namespace)
	if err != nil {
		return nil, err
	}

	if p.Registerer != nil {
		p.LC.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				m.Unregister(p.Registerer)
				return nil
			},
		})
	}
	return m, nil
}
