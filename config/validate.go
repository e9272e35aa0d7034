package config

import (
	"fmt"
	"strings"
)

// ValidateAll 验证整个配置的有效性
//
// 这是 Config.Validate() 的别名，nil 配置返回 ErrNilConfig。
func ValidateAll(c *Config) error {
	if c == nil {
		return ErrNilConfig
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 主题名为空 -> 使用默认主题
//   - 发布超时为负 -> 使用默认值
//   - 指标命名空间为空 -> 使用默认值
//   - 日志级别或格式为空 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if strings.TrimSpace(c.Graph.TopicName) == "" {
		c.Graph.TopicName = DefaultTopicName
	}
	if c.Graph.PublishTimeout < 0 {
		c.Graph.PublishTimeout = DefaultGraphConfig().PublishTimeout
	}
	if c.Diagnostics.MetricsNamespace == "" {
		c.Diagnostics.MetricsNamespace = DefaultDiagnosticsConfig().MetricsNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig().Level
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig().Format
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}
