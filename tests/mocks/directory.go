package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// MockDirectoryPublisher 模拟目录消息发布者
//
// 记录每次发布的消息，并统计是否出现过并发重叠的 Publish 调用。
type MockDirectoryPublisher struct {
	mu       sync.Mutex
	messages []*types.DirectoryMessage

	inFlight atomic.Int32
	overlaps atomic.Int32

	// 可覆盖的方法
	PublishFunc func(ctx context.Context, msg *types.DirectoryMessage) error
}

// 确保实现接口
var _ interfaces.DirectoryPublisher = (*MockDirectoryPublisher)(nil)

// NewMockDirectoryPublisher 创建 MockDirectoryPublisher
func NewMockDirectoryPublisher() *MockDirectoryPublisher {
	return &MockDirectoryPublisher{}
}

// Publish 记录消息；PublishFunc 返回错误时消息不记录
func (m *MockDirectoryPublisher) Publish(ctx context.Context, msg *types.DirectoryMessage) error {
	if m.inFlight.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	defer m.inFlight.Add(-1)

	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, msg); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, &types.DirectoryMessage{
		Participant: msg.Participant,
		Nodes:       msg.View().Nodes,
	})
	return nil
}

// Messages 返回已记录的消息
func (m *MockDirectoryPublisher) Messages() []*types.DirectoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.DirectoryMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Last 返回最后一条消息，没有时返回 nil
func (m *MockDirectoryPublisher) Last() *types.DirectoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// Overlaps 返回观察到的并发重叠次数
func (m *MockDirectoryPublisher) Overlaps() int {
	return int(m.overlaps.Load())
}
