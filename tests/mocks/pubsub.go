package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
)

// ErrMockCancelled 订阅或事件处理器已取消
var ErrMockCancelled = errors.New("mock: cancelled")

// ============================================================================
// MockPubSub
// ============================================================================

// MockPubSub 模拟发布订阅服务
type MockPubSub struct {
	mu     sync.Mutex
	Topics map[string]*MockTopic
	Closed bool

	// JoinCalls 记录 Join 的主题名
	JoinCalls []string

	// 可覆盖的方法
	JoinFunc  func(topic string) (interfaces.Topic, error)
	CloseFunc func() error
}

// 确保实现接口
var _ interfaces.PubSub = (*MockPubSub)(nil)

// NewMockPubSub 创建带有默认值的 MockPubSub
func NewMockPubSub() *MockPubSub {
	return &MockPubSub{
		Topics: make(map[string]*MockTopic),
	}
}

// Join 加入主题
func (m *MockPubSub) Join(topic string, _ ...interfaces.TopicOption) (interfaces.Topic, error) {
	m.mu.Lock()
	m.JoinCalls = append(m.JoinCalls, topic)
	fn := m.JoinFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(topic)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	t := NewMockTopic(topic)
	m.Topics[topic] = t
	return t, nil
}

// Topic 返回已加入的主题
func (m *MockPubSub) Topic(name string) *MockTopic {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Topics[name]
}

// GetTopics 获取所有主题
func (m *MockPubSub) GetTopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	topics := make([]string, 0, len(m.Topics))
	for t := range m.Topics {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// Close 关闭服务
func (m *MockPubSub) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// ============================================================================
// MockTopic
// ============================================================================

// MockTopic 模拟主题
type MockTopic struct {
	TopicName string

	mu          sync.Mutex
	closed      bool
	published   [][]byte
	subscribers []*MockPubSubSubscription
	handlers    []*MockEventHandler
	peers       []string

	// 可覆盖的方法
	PublishFunc      func(ctx context.Context, data []byte) error
	SubscribeFunc    func() (interfaces.TopicSubscription, error)
	EventHandlerFunc func() (interfaces.TopicEventHandler, error)
	CloseFunc        func() error
}

// 确保实现接口
var _ interfaces.Topic = (*MockTopic)(nil)

// NewMockTopic 创建带有默认值的 MockTopic
func NewMockTopic(name string) *MockTopic {
	return &MockTopic{TopicName: name}
}

// Publish 发布消息
func (m *MockTopic) Publish(ctx context.Context, data []byte, _ ...interfaces.PublishOption) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, append([]byte(nil), data...))
	return nil
}

// Published 返回已成功发布的数据
func (m *MockTopic) Published() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.published))
	copy(out, m.published)
	return out
}

// Subscribe 订阅主题
func (m *MockTopic) Subscribe(_ ...interfaces.SubscribeOption) (interfaces.TopicSubscription, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc()
	}
	sub := NewMockPubSubSubscription(m.TopicName)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, sub)
	m.mu.Unlock()
	return sub, nil
}

// EventHandler 注册节点事件处理器
func (m *MockTopic) EventHandler(_ ...interfaces.TopicEventHandlerOption) (interfaces.TopicEventHandler, error) {
	if m.EventHandlerFunc != nil {
		return m.EventHandlerFunc()
	}
	h := NewMockEventHandler()
	m.mu.Lock()
	m.handlers = append(m.handlers, h)
	m.mu.Unlock()
	return h, nil
}

// Deliver 向所有订阅投递一条消息
func (m *MockTopic) Deliver(msg *interfaces.Message) {
	m.mu.Lock()
	subs := append([]*MockPubSubSubscription(nil), m.subscribers...)
	m.mu.Unlock()
	for _, s := range subs {
		s.Push(msg)
	}
}

// EmitPeerEvent 向所有事件处理器推送成员事件
func (m *MockTopic) EmitPeerEvent(ev interfaces.PeerEvent) {
	m.mu.Lock()
	switch ev.Type {
	case interfaces.PeerJoin:
		m.peers = append(m.peers, ev.Peer)
	case interfaces.PeerLeave:
		for i, p := range m.peers {
			if p == ev.Peer {
				m.peers = append(m.peers[:i], m.peers[i+1:]...)
				break
			}
		}
	}
	handlers := append([]*MockEventHandler(nil), m.handlers...)
	m.mu.Unlock()
	for _, h := range handlers {
		h.Push(ev)
	}
}

// Close 关闭主题
func (m *MockTopic) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed 主题是否已关闭
func (m *MockTopic) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ListPeers 返回通过 EmitPeerEvent 记录的成员
func (m *MockTopic) ListPeers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.peers...)
}

// String 返回主题名
func (m *MockTopic) String() string {
	return m.TopicName
}

// ============================================================================
// MockPubSubSubscription
// ============================================================================

// MockPubSubSubscription 模拟 PubSub 订阅
type MockPubSubSubscription struct {
	TopicName string
	Messages  chan *interfaces.Message

	once sync.Once
	done chan struct{}
}

// 确保实现接口
var _ interfaces.TopicSubscription = (*MockPubSubSubscription)(nil)

// NewMockPubSubSubscription 创建订阅
func NewMockPubSubSubscription(topic string) *MockPubSubSubscription {
	return &MockPubSubSubscription{
		TopicName: topic,
		Messages:  make(chan *interfaces.Message, 100),
		done:      make(chan struct{}),
	}
}

// Push 推送一条消息，已取消时丢弃
func (m *MockPubSubSubscription) Push(msg *interfaces.Message) {
	select {
	case <-m.done:
	case m.Messages <- msg:
	}
}

// Next 获取下一条消息
func (m *MockPubSubSubscription) Next(ctx context.Context) (*interfaces.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrMockCancelled
	case msg := <-m.Messages:
		return msg, nil
	}
}

// Cancel 取消订阅
func (m *MockPubSubSubscription) Cancel() {
	m.once.Do(func() { close(m.done) })
}

// ============================================================================
// MockEventHandler
// ============================================================================

// MockEventHandler 模拟主题事件处理器
type MockEventHandler struct {
	Events chan interfaces.PeerEvent

	once sync.Once
	done chan struct{}
}

// 确保实现接口
var _ interfaces.TopicEventHandler = (*MockEventHandler)(nil)

// NewMockEventHandler 创建事件处理器
func NewMockEventHandler() *MockEventHandler {
	return &MockEventHandler{
		Events: make(chan interfaces.PeerEvent, 100),
		done:   make(chan struct{}),
	}
}

// Push 推送一个事件，已取消时丢弃
func (m *MockEventHandler) Push(ev interfaces.PeerEvent) {
	select {
	case <-m.done:
	case m.Events <- ev:
	}
}

// NextPeerEvent 获取下一个节点事件
func (m *MockEventHandler) NextPeerEvent(ctx context.Context) (interfaces.PeerEvent, error) {
	select {
	case <-ctx.Done():
		return interfaces.PeerEvent{}, ctx.Err()
	case <-m.done:
		return interfaces.PeerEvent{}, ErrMockCancelled
	case ev := <-m.Events:
		return ev, nil
	}
}

// Cancel 取消事件处理
func (m *MockEventHandler) Cancel() {
	m.once.Do(func() { close(m.done) })
}
