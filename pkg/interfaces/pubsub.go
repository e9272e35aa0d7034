// Package interfaces 定义 graphdir 公共接口
//
// 本文件定义 PubSub 传输边界。目录同步只依赖这里声明的能力：
// 加入主题、发布、订阅投递回调以及节点加入/离开事件。
package interfaces

import (
	"context"
)

// PubSub 定义发布订阅服务接口
type PubSub interface {
	// Join 加入主题
	Join(topic string, opts ...TopicOption) (Topic, error)

	// GetTopics 获取所有已加入的主题
	GetTopics() []string

	// Close 关闭服务
	Close() error
}

// Topic 定义主题接口
type Topic interface {
	// String 返回主题名称
	String() string

	// Publish 发布消息
	//
	// 返回的错误可能携带 *types.TransportError 返回码。
	Publish(ctx context.Context, data []byte, opts ...PublishOption) error

	// Subscribe 订阅主题
	Subscribe(opts ...SubscribeOption) (TopicSubscription, error)

	// EventHandler 注册节点事件处理器
	EventHandler(opts ...TopicEventHandlerOption) (TopicEventHandler, error)

	// ListPeers 列出此主题的所有节点
	ListPeers() []string

	// Close 关闭主题
	Close() error
}

// TopicSubscription 定义主题订阅接口
type TopicSubscription interface {
	// Next 获取下一条消息
	Next(ctx context.Context) (*Message, error)

	// Cancel 取消订阅
	Cancel()
}

// TopicEventHandler 定义主题事件处理器
type TopicEventHandler interface {
	// NextPeerEvent 获取下一个节点事件
	NextPeerEvent(ctx context.Context) (PeerEvent, error)

	// Cancel 取消事件处理
	Cancel()
}

// Message 定义消息结构
type Message struct {
	// From 发送方节点 ID
	From string

	// Data 消息数据
	Data []byte

	// Topic 消息所属主题
	Topic string

	// Seqno 发送方序列号
	Seqno uint64
}

// PeerEvent 节点事件
type PeerEvent struct {
	// Type 事件类型
	Type PeerEventType

	// Peer 相关节点 ID
	Peer string
}

// PeerEventType 节点事件类型
type PeerEventType int

const (
	// PeerJoin 节点加入
	PeerJoin PeerEventType = iota
	// PeerLeave 节点离开
	PeerLeave
)

// String 返回事件类型名称
func (t PeerEventType) String() string {
	switch t {
	case PeerJoin:
		return "join"
	case PeerLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// TopicOption 主题选项
type TopicOption func(*TopicOptions)

// TopicOptions 主题选项集合
type TopicOptions struct{}

// PublishOption 发布选项
type PublishOption func(*PublishOptions)

// PublishOptions 发布选项集合
type PublishOptions struct {
	// Ready 发布前的就绪检查
	Ready func() error
}

// WithReadiness 设置发布前的就绪检查
func WithReadiness(ready func() error) PublishOption {
	return func(o *PublishOptions) {
		o.Ready = ready
	}
}

// SubscribeOption 订阅选项
type SubscribeOption func(*SubscribeOptions)

// SubscribeOptions 订阅选项集合
type SubscribeOptions struct{}

// TopicEventHandlerOption 事件处理器选项
type TopicEventHandlerOption func(*TopicEventHandlerOptions)

// TopicEventHandlerOptions 事件处理器选项集合
type TopicEventHandlerOptions struct{}
