package memory

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// PubSub 内存网络中的一个节点
type PubSub struct {
	net    *Network
	peerID string

	mu     sync.Mutex
	topics map[string]*topic
	closed bool
}

// 确保实现接口
var _ interfaces.PubSub = (*PubSub)(nil)

// ID 返回节点 ID
func (ps *PubSub) ID() string {
	return ps.peerID
}

// Join 加入主题
//
// 加入后只能发布；首次 Subscribe 时才成为主题成员。
func (ps *PubSub) Join(name string, _ ...interfaces.TopicOption) (interfaces.Topic, error) {
	if strings.TrimSpace(name) == "" {
		return nil, types.NewTransportError("join", types.CodeBadParameter, ErrEmptyTopic)
	}

	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		return nil, types.NewTransportError("join", types.CodeAlreadyDeleted, ErrPubSubClosed)
	}
	if _, ok := ps.topics[name]; ok {
		ps.mu.Unlock()
		return nil, types.NewTransportError("join", types.CodePreconditionNotMet, ErrAlreadyJoined)
	}
	t := newTopic(ps, name)
	ps.topics[name] = t
	ps.mu.Unlock()
	return t, nil
}

// GetTopics 获取所有已加入的主题
func (ps *PubSub) GetTopics() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	out := make([]string, 0, len(ps.topics))
	for name := range ps.topics {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Close 关闭节点及其所有主题，可重复调用
func (ps *PubSub) Close() error {
	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		return nil
	}
	ps.closed = true
	topics := make([]*topic, 0, len(ps.topics))
	for _, t := range ps.topics {
		topics = append(topics, t)
	}
	ps.mu.Unlock()

	var err error
	for _, t := range topics {
		err = multierr.Append(err, t.Close())
	}
	ps.net.removePeer(ps)
	return err
}

// forget 主题关闭后从节点移除
func (ps *PubSub) forget(t *topic) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.topics[t.name] == t {
		delete(ps.topics, t.name)
	}
}
