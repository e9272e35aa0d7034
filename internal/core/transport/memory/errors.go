package memory

import "errors"

// 错误定义
//
// 对外返回时包装为 *types.TransportError 并携带返回码。
var (
	// ErrPubSubClosed PubSub 已关闭
	ErrPubSubClosed = errors.New("memory: pubsub closed")

	// ErrTopicClosed 主题已关闭
	ErrTopicClosed = errors.New("memory: topic closed")

	// ErrAlreadyJoined 主题已加入
	ErrAlreadyJoined = errors.New("memory: topic already joined")

	// ErrSubscriptionCancelled 订阅已取消
	ErrSubscriptionCancelled = errors.New("memory: subscription cancelled")

	// ErrEmptyTopic 主题名为空
	ErrEmptyTopic = errors.New("memory: empty topic name")

	// ErrNotReady 发布前就绪检查失败
	ErrNotReady = errors.New("memory: publish readiness check failed")
)
