package graphdir

import "errors"

// 公共错误定义
var (
	// ErrClosed 目录已关闭
	ErrClosed = errors.New("graphdir: directory closed")

	// ErrNoPubSub 未提供传输
	ErrNoPubSub = errors.New("graphdir: no pubsub configured, use WithPubSub or WithMemoryNetwork")

	// ErrNilOption 选项参数为 nil
	ErrNilOption = errors.New("graphdir: option value is nil")
)
