// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载和保存。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Graph.PublishTimeout = config.Duration(2 * time.Second)
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import "errors"

// ErrNilConfig 配置为 nil
var ErrNilConfig = errors.New("config: config is nil")

// Config 是 graphdir 的完整配置结构
//
// 配置按功能模块组织：
//   - Graph: 目录同步（主题、发布超时、成员事件处理）
//   - Diagnostics: 指标
//   - Log: 日志级别与格式
type Config struct {
	// Graph 目录同步配置
	Graph GraphConfig `json:"graph"`

	// Diagnostics 诊断配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`

	// Log 日志配置
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Graph:       DefaultGraphConfig(),
		Diagnostics: DefaultDiagnosticsConfig(),
		Log:         DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	if err := c.Diagnostics.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return nil
}
