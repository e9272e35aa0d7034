package config

import (
	"fmt"
	"io"

	"github.com/dep2p/go-graphdir/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug / info / warn / error
	Level string `json:"level"`

	// Format 输出格式：text / json
	Format string `json:"format"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: string(log.FormatText),
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, err := log.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if _, err := log.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

// Apply 按配置重建默认 logger，w 为 nil 时输出到 stderr
func (c LogConfig) Apply(w io.Writer) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return err
	}
	format, err := log.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	log.Configure(w, level, format)
	return nil
}
