package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDurationFormat 时长既不是字符串也不是整数
	ErrDurationFormat = errors.New("config: duration must be a string such as \"5s\" or integer nanoseconds")

	// ErrNegativeDuration 时长为负数
	ErrNegativeDuration = errors.New("config: duration must not be negative")
)

// Duration 配置文件与命令行共用的超时时长
//
// JSON 中写作 "5s"、"250ms"，或纳秒整数；null 保留原值。
// 同时实现 flag.Value，可直接通过 flag.Var 绑定到命令行参数。
type Duration time.Duration

// ParseDuration 解析时长字符串，拒绝负值
func ParseDuration(s string) (Duration, error) {
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: parse duration %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeDuration, s)
	}
	return Duration(v), nil
}

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("config: decode duration: %w", err)
		}
		v, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*d = v
		return nil
	}

	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return ErrDurationFormat
	}
	if ns < 0 {
		return fmt.Errorf("%w: %dns", ErrNegativeDuration, ns)
	}
	*d = Duration(ns)
	return nil
}

// MarshalJSON 输出字符串形式，便于人工编辑
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Set 实现 flag.Value
func (d *Duration) Set(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 实现 flag.Value 与 fmt.Stringer
func (d Duration) String() string {
	return time.Duration(d).String()
}
