package memory

import (
	"sort"
	"sync"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
)

var logger = log.Logger("core/transport/memory")

// PublishHook 发布前调用的故障注入钩子，返回非 nil 时消息不投递
type PublishHook func(peer, topic string) error

// Network 进程内通信域
type Network struct {
	mu sync.RWMutex

	// peers 节点 ID → PubSub
	peers map[string]*PubSub

	// members 主题 → 节点 ID → 主题句柄
	members map[string]map[string]*topic

	hook PublishHook
}

// NewNetwork 创建空的通信域
func NewNetwork() *Network {
	return &Network{
		peers:   make(map[string]*PubSub),
		members: make(map[string]map[string]*topic),
	}
}

// NewPubSub 在域内创建一个节点
//
// 同一 peerID 重复创建时，旧节点先被关闭。
func (n *Network) NewPubSub(peerID string) *PubSub {
	n.mu.Lock()
	old := n.peers[peerID]
	n.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	ps := &PubSub{
		net:    n,
		peerID: peerID,
		topics: make(map[string]*topic),
	}

	n.mu.Lock()
	n.peers[peerID] = ps
	n.mu.Unlock()

	logger.Debug("节点加入内存网络", "peer", log.TruncateID(peerID, 8))
	return ps
}

// SetPublishHook 设置故障注入钩子，传入 nil 清除
func (n *Network) SetPublishHook(hook PublishHook) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hook = hook
}

// Peers 返回域内所有节点 ID（排序）
func (n *Network) Peers() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]string, 0, len(n.peers))
	for id := range n.peers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (n *Network) publishHook() PublishHook {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.hook
}

// join 将主题句柄加入成员表，并通知已有成员
func (n *Network) join(t *topic) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if t.isClosed() {
		return
	}
	members := n.members[t.name]
	if members == nil {
		members = make(map[string]*topic)
		n.members[t.name] = members
	}
	members[t.peer()] = t

	ev := interfaces.PeerEvent{Type: interfaces.PeerJoin, Peer: t.peer()}
	for id, m := range members {
		if id != t.peer() {
			m.emit(ev)
		}
	}
}

// leave 将主题句柄移出成员表，并通知剩余成员
func (n *Network) leave(t *topic) {
	n.mu.Lock()
	defer n.mu.Unlock()

	members := n.members[t.name]
	if members[t.peer()] != t {
		return
	}
	delete(members, t.peer())
	if len(members) == 0 {
		delete(n.members, t.name)
	}

	ev := interfaces.PeerEvent{Type: interfaces.PeerLeave, Peer: t.peer()}
	for _, m := range members {
		m.emit(ev)
	}
}

// removePeer 节点关闭后从域中移除
func (n *Network) removePeer(ps *PubSub) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.peers[ps.peerID] == ps {
		delete(n.peers, ps.peerID)
	}
}

// deliver 将消息投递给主题内除发送方外的所有成员
func (n *Network) deliver(from *topic, data []byte, seqno uint64) int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	delivered := 0
	for id, m := range n.members[from.name] {
		if id == from.peer() {
			continue
		}
		payload := make([]byte, len(data))
		copy(payload, data)
		m.receive(&interfaces.Message{
			From:  from.peer(),
			Data:  payload,
			Topic: from.name,
			Seqno: seqno,
		})
		delivered++
	}
	return delivered
}

// peersOf 返回主题内除 self 外的成员（排序）
func (n *Network) peersOf(name, self string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.peersOfLocked(name, self)
}

func (n *Network) peersOfLocked(name, self string) []string {
	out := make([]string, 0, len(n.members[name]))
	for id := range n.members[name] {
		if id != self {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
