package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// topic 实现 Topic 接口
type topic struct {
	ps   *PubSub
	name string

	// pubMu 串行化同一句柄的发布，保证单发送方有序
	pubMu sync.Mutex
	seqno uint64

	mu       sync.Mutex
	subs     []*subscription
	handlers []*eventHandler
	closed   bool
	member   bool
}

// 确保实现接口
var _ interfaces.Topic = (*topic)(nil)

func newTopic(ps *PubSub, name string) *topic {
	return &topic{ps: ps, name: name}
}

func (t *topic) peer() string {
	return t.ps.peerID
}

// String 返回主题名称
func (t *topic) String() string {
	return t.name
}

// Publish 发布消息
func (t *topic) Publish(ctx context.Context, data []byte, opts ...interfaces.PublishOption) error {
	var po interfaces.PublishOptions
	for _, opt := range opts {
		opt(&po)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if t.isClosed() {
		return types.NewTransportError("publish", types.CodeAlreadyDeleted, ErrTopicClosed)
	}
	if po.Ready != nil {
		if err := po.Ready(); err != nil {
			return types.NewTransportError("publish", types.CodePreconditionNotMet, fmt.Errorf("%w: %v", ErrNotReady, err))
		}
	}
	if hook := t.ps.net.publishHook(); hook != nil {
		if err := hook(t.peer(), t.name); err != nil {
			if _, ok := types.TransportCodeOf(err); ok {
				return err
			}
			return types.NewTransportError("publish", types.CodeError, err)
		}
	}

	t.pubMu.Lock()
	defer t.pubMu.Unlock()

	t.seqno++
	t.ps.net.deliver(t, data, t.seqno)
	return nil
}

// Subscribe 订阅主题
//
// 首次订阅时加入成员表并向其他成员发出 PeerJoin，
// 因此其他成员看到 PeerJoin 时新成员已能收到消息。
func (t *topic) Subscribe(_ ...interfaces.SubscribeOption) (interfaces.TopicSubscription, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, types.NewTransportError("subscribe", types.CodeAlreadyDeleted, ErrTopicClosed)
	}
	sub := &subscription{topic: t, q: newQueue[*interfaces.Message]()}
	t.subs = append(t.subs, sub)
	announce := !t.member
	t.member = true
	t.mu.Unlock()

	// join 先取 n.mu 再取成员的 topic.mu，不能持有 t.mu 调用
	if announce {
		t.ps.net.join(t)
	}
	return sub, nil
}

// EventHandler 注册节点事件处理器
//
// 处理器先收到当前所有成员的 PeerJoin。
func (t *topic) EventHandler(_ ...interfaces.TopicEventHandlerOption) (interfaces.TopicEventHandler, error) {
	n := t.ps.net
	n.mu.RLock()
	defer n.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, types.NewTransportError("event_handler", types.CodeAlreadyDeleted, ErrTopicClosed)
	}
	h := &eventHandler{topic: t, q: newQueue[interfaces.PeerEvent]()}
	for _, id := range n.peersOfLocked(t.name, t.peer()) {
		h.q.push(interfaces.PeerEvent{Type: interfaces.PeerJoin, Peer: id})
	}
	t.handlers = append(t.handlers, h)
	return h, nil
}

// ListPeers 列出此主题的其他成员
func (t *topic) ListPeers() []string {
	return t.ps.net.peersOf(t.name, t.peer())
}

// Close 离开主题，可重复调用
func (t *topic) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	subs, handlers := t.subs, t.handlers
	t.subs, t.handlers = nil, nil
	t.mu.Unlock()

	t.ps.net.leave(t)
	t.ps.forget(t)

	for _, s := range subs {
		s.q.close()
	}
	for _, h := range handlers {
		h.q.close()
	}
	return nil
}

func (t *topic) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// receive 推送消息到所有订阅
func (t *topic) receive(msg *interfaces.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		s.q.push(msg)
	}
}

// emit 推送成员事件到所有处理器
func (t *topic) emit(ev interfaces.PeerEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, h := range t.handlers {
		h.q.push(ev)
	}
}

func (t *topic) removeSubscription(s *subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cur := range t.subs {
		if cur == s {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

func (t *topic) removeHandler(h *eventHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cur := range t.handlers {
		if cur == h {
			t.handlers = append(t.handlers[:i], t.handlers[i+1:]...)
			return
		}
	}
}

// ============================================================================
//                              订阅与事件处理器
// ============================================================================

// subscription 实现 TopicSubscription 接口
type subscription struct {
	topic *topic
	q     *queue[*interfaces.Message]
}

// 确保实现接口
var _ interfaces.TopicSubscription = (*subscription)(nil)

// Next 获取下一条消息
func (s *subscription) Next(ctx context.Context) (*interfaces.Message, error) {
	msg, err := s.q.pop(ctx, ErrSubscriptionCancelled)
	if err == ErrSubscriptionCancelled {
		return nil, types.NewTransportError("next", types.CodeAlreadyDeleted, err)
	}
	return msg, err
}

// Cancel 取消订阅
func (s *subscription) Cancel() {
	s.topic.removeSubscription(s)
	s.q.close()
}

// Pending 返回尚未读取的消息数
func (s *subscription) Pending() int {
	return s.q.size()
}

// eventHandler 实现 TopicEventHandler 接口
type eventHandler struct {
	topic *topic
	q     *queue[interfaces.PeerEvent]
}

// 确保实现接口
var _ interfaces.TopicEventHandler = (*eventHandler)(nil)

// NextPeerEvent 获取下一个节点事件
func (h *eventHandler) NextPeerEvent(ctx context.Context) (interfaces.PeerEvent, error) {
	ev, err := h.q.pop(ctx, ErrSubscriptionCancelled)
	if err == ErrSubscriptionCancelled {
		return interfaces.PeerEvent{}, types.NewTransportError("next_peer_event", types.CodeAlreadyDeleted, err)
	}
	return ev, err
}

// Cancel 取消事件处理
func (h *eventHandler) Cancel() {
	h.topic.removeHandler(h)
	h.q.close()
}
