package config

import (
	"errors"
	"regexp"
)

var metricNamespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DiagnosticsConfig 诊断配置
type DiagnosticsConfig struct {
	// EnableMetrics 启用 Prometheus 指标
	EnableMetrics bool `json:"enable_metrics"`

	// MetricsNamespace 指标命名空间前缀
	// 默认 "graphdir"
	MetricsNamespace string `json:"metrics_namespace"`
}

// DefaultDiagnosticsConfig 返回默认诊断配置
func DefaultDiagnosticsConfig() DiagnosticsConfig {
	return DiagnosticsConfig{
		EnableMetrics:    true,
		MetricsNamespace: "graphdir",
	}
}

// Validate 验证诊断配置
func (c DiagnosticsConfig) Validate() error {
	if c.EnableMetrics && !metricNamespacePattern.MatchString(c.MetricsNamespace) {
		return errors.New("metrics namespace must match [a-zA-Z_][a-zA-Z0-9_]*")
	}
	return nil
}
