package graphcache

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
	"github.com/dep2p/go-graphdir/pkg/types"
)

var logger = log.Logger("core/graphcache")

// ============================================================================
//                              合并结果
// ============================================================================

// MergeResult 远端合并结果
type MergeResult int

const (
	// MergeApplied 视图已替换
	MergeApplied MergeResult = iota
	// MergeUnchanged 与已存视图相同（重复投递）
	MergeUnchanged
	// MergeRejected 消息被拒绝（本地 ID、空 ID 或空消息）
	MergeRejected
	// MergeStale 发送方已离开，消息在离开之前发出
	MergeStale
)

// String 返回结果名称
func (r MergeResult) String() string {
	switch r {
	case MergeApplied:
		return "applied"
	case MergeUnchanged:
		return "unchanged"
	case MergeRejected:
		return "rejected"
	case MergeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Stats 缓存统计
type Stats struct {
	Participants int
	Nodes        int

	Merged    uint64
	Unchanged uint64
	Rejected  uint64
	Departed  uint64
	Stale     uint64
}

// ============================================================================
//                              Cache
// ============================================================================

// NodeRef 节点记录在缓存内的标识
//
// 同名节点各自拥有不同的 NodeRef，本地句柄据此定位自己的记录。
// NodeRef 只在本进程内有效，不出现在线格式中。
type NodeRef uint64

// entry 参与者条目，写入映射后不再修改
//
// refs 与 view.Nodes 一一对应。
type entry struct {
	view   types.ParticipantView
	refs   []NodeRef
	digest uint64
}

func newEntry(view types.ParticipantView, refs []NodeRef) *entry {
	return &entry{view: view, refs: refs, digest: viewDigest(view)}
}

// Cache 图目录缓存
type Cache struct {
	mu           sync.RWMutex
	local        types.ParticipantID
	participants map[types.ParticipantID]*entry

	merged    uint64
	unchanged uint64
	rejected  uint64
	departed  uint64
	stale     uint64

	// gone 已离开且尚未重新加入的参与者，其目录消息一律丢弃
	gone map[types.ParticipantID]struct{}

	// lastRef 最近分配的 NodeRef，受 mu 保护
	lastRef NodeRef

	rejectLog rate.Sometimes
}

// New 创建缓存，并为本地参与者建立空条目
func New(local types.ParticipantID) (*Cache, error) {
	if local.IsEmpty() {
		return nil, ErrInvalidParticipant
	}
	c := &Cache{
		local:        local,
		participants: make(map[types.ParticipantID]*entry),
		gone:         make(map[types.ParticipantID]struct{}),
		rejectLog:    rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	c.participants[local] = newEntry(types.ParticipantView{}, nil)
	return c, nil
}

// LocalParticipant 返回本地参与者 ID
func (c *Cache) LocalParticipant() types.ParticipantID {
	return c.local
}

// ============================================================================
//                              本地变更
// ============================================================================

// AddNode 在 pid 的视图末尾追加节点，返回变更后的完整视图
//
// 同名节点重复添加会产生两条记录。
func (c *Cache) AddNode(pid types.ParticipantID, name, namespace string) (*types.DirectoryMessage, error) {
	_, msg, err := c.AddNodeRecord(pid, name, namespace)
	return msg, err
}

// AddNodeRecord 与 AddNode 相同，同时返回新记录的 NodeRef
func (c *Cache) AddNodeRecord(pid types.ParticipantID, name, namespace string) (NodeRef, *types.DirectoryMessage, error) {
	var ref NodeRef
	msg, err := c.mutate(pid, func(cur records) (records, bool) {
		ref = c.allocRef()
		return cur.insert(types.NodeEntities{
			NodeInfo: types.NodeInfo{Name: name, Namespace: namespace},
		}, ref), true
	})
	if err != nil {
		return 0, nil, err
	}
	return ref, msg, nil
}

// RemoveNode 删除第一个匹配的节点及其全部实体
//
// 不存在时返回原视图，不报错。
func (c *Cache) RemoveNode(pid types.ParticipantID, name, namespace string) (*types.DirectoryMessage, error) {
	info := types.NodeInfo{Name: name, Namespace: namespace}
	return c.mutate(pid, func(cur records) (records, bool) {
		idx := cur.findInfo(info)
		if idx < 0 {
			logger.Debug("删除的节点不存在", "participant", pid.ShortString(), "node", info.FullyQualifiedName())
			return cur, false
		}
		return cur.remove(idx), true
	})
}

// RemoveNodeRecord 删除 ref 指向的节点记录及其实体
//
// 同名的其他记录不受影响；记录不存在时返回原视图，不报错。
func (c *Cache) RemoveNodeRecord(pid types.ParticipantID, ref NodeRef) (*types.DirectoryMessage, error) {
	return c.mutate(pid, func(cur records) (records, bool) {
		idx := cur.findRef(ref)
		if idx < 0 {
			logger.Debug("删除的节点记录不存在", "participant", pid.ShortString(), "ref", uint64(ref))
			return cur, false
		}
		return cur.remove(idx), true
	})
}

// AddEntity 向第一个匹配节点追加实体
//
// 节点不存在时返回原视图，不报错。
func (c *Cache) AddEntity(pid types.ParticipantID, node types.NodeInfo, id types.EntityID) (*types.DirectoryMessage, error) {
	if id.IsEmpty() {
		return nil, ErrInvalidEntity
	}
	return c.mutate(pid, func(cur records) (records, bool) {
		return cur.addEntity(pid, cur.findInfo(node), id)
	})
}

// AddEntityTo 向 ref 指向的节点记录追加实体
func (c *Cache) AddEntityTo(pid types.ParticipantID, ref NodeRef, id types.EntityID) (*types.DirectoryMessage, error) {
	if id.IsEmpty() {
		return nil, ErrInvalidEntity
	}
	return c.mutate(pid, func(cur records) (records, bool) {
		return cur.addEntity(pid, cur.findRef(ref), id)
	})
}

// RemoveEntity 从第一个匹配节点删除实体
//
// 节点或实体不存在时返回原视图，不报错。
func (c *Cache) RemoveEntity(pid types.ParticipantID, node types.NodeInfo, id types.EntityID) (*types.DirectoryMessage, error) {
	if id.IsEmpty() {
		return nil, ErrInvalidEntity
	}
	return c.mutate(pid, func(cur records) (records, bool) {
		return cur.removeEntity(cur.findInfo(node), id)
	})
}

// RemoveEntityFrom 从 ref 指向的节点记录删除实体
func (c *Cache) RemoveEntityFrom(pid types.ParticipantID, ref NodeRef, id types.EntityID) (*types.DirectoryMessage, error) {
	if id.IsEmpty() {
		return nil, ErrInvalidEntity
	}
	return c.mutate(pid, func(cur records) (records, bool) {
		return cur.removeEntity(cur.findRef(ref), id)
	})
}

// mutate 在写锁内执行 "读旧记录 → 构造新记录 → 替换"
//
// fn 不得修改传入记录，需要变更时返回新记录。
func (c *Cache) mutate(pid types.ParticipantID, fn func(records) (records, bool)) (*types.DirectoryMessage, error) {
	if pid.IsEmpty() {
		return nil, ErrInvalidParticipant
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var current records
	cur, exists := c.participants[pid]
	if exists {
		current = records{nodes: cur.view.Nodes, refs: cur.refs}
	}

	next, changed := fn(current)
	if changed || !exists {
		c.participants[pid] = newEntry(types.ParticipantView{Nodes: next.nodes}, next.refs)
	}
	return types.NewDirectoryMessage(pid, types.ParticipantView{Nodes: next.nodes}), nil
}

// allocRef 分配 NodeRef，调用方持有 mu
func (c *Cache) allocRef() NodeRef {
	c.lastRef++
	return c.lastRef
}

// freshRefs 为整体替换的视图分配新的记录标识，调用方持有 mu
func (c *Cache) freshRefs(n int) []NodeRef {
	if n == 0 {
		return nil
	}
	refs := make([]NodeRef, n)
	for i := range refs {
		refs[i] = c.allocRef()
	}
	return refs
}

// records 一个参与者的节点记录，nodes 与 refs 一一对应
//
// 所有方法返回新切片，不修改接收者。
type records struct {
	nodes []types.NodeEntities
	refs  []NodeRef
}

func (r records) findInfo(info types.NodeInfo) int {
	for i, n := range r.nodes {
		if n.NodeInfo == info {
			return i
		}
	}
	return -1
}

func (r records) findRef(ref NodeRef) int {
	for i, cur := range r.refs {
		if cur == ref {
			return i
		}
	}
	return -1
}

func (r records) insert(node types.NodeEntities, ref NodeRef) records {
	nodes := make([]types.NodeEntities, len(r.nodes), len(r.nodes)+1)
	copy(nodes, r.nodes)
	refs := make([]NodeRef, len(r.refs), len(r.refs)+1)
	copy(refs, r.refs)
	return records{nodes: append(nodes, node), refs: append(refs, ref)}
}

func (r records) remove(idx int) records {
	nodes := make([]types.NodeEntities, 0, len(r.nodes)-1)
	nodes = append(nodes, r.nodes[:idx]...)
	nodes = append(nodes, r.nodes[idx+1:]...)
	refs := make([]NodeRef, 0, len(r.refs)-1)
	refs = append(refs, r.refs[:idx]...)
	refs = append(refs, r.refs[idx+1:]...)
	return records{nodes: nodes, refs: refs}
}

func (r records) replace(idx int, node types.NodeEntities) records {
	nodes := make([]types.NodeEntities, len(r.nodes))
	copy(nodes, r.nodes)
	nodes[idx] = node
	return records{nodes: nodes, refs: r.refs}
}

func (r records) addEntity(pid types.ParticipantID, idx int, id types.EntityID) (records, bool) {
	if idx < 0 {
		logger.Debug("实体所属节点不存在", "participant", pid.ShortString(), "entity", id.ShortString())
		return r, false
	}
	target := r.nodes[idx]
	entities := make([]types.EntityID, len(target.Entities), len(target.Entities)+1)
	copy(entities, target.Entities)
	entities = append(entities, id)
	return r.replace(idx, types.NodeEntities{NodeInfo: target.NodeInfo, Entities: entities}), true
}

func (r records) removeEntity(idx int, id types.EntityID) (records, bool) {
	if idx < 0 {
		return r, false
	}
	target := r.nodes[idx]
	pos := -1
	for i, e := range target.Entities {
		if e == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return r, false
	}
	entities := make([]types.EntityID, 0, len(target.Entities)-1)
	entities = append(entities, target.Entities[:pos]...)
	entities = append(entities, target.Entities[pos+1:]...)
	return r.replace(idx, types.NodeEntities{NodeInfo: target.NodeInfo, Entities: entities}), true
}

// ============================================================================
//                              远端合并
// ============================================================================

// Merge 用远端消息整体替换对应参与者的视图
//
// 声称本地参与者 ID 的消息被拒绝，仅记录诊断信息。
// 整体替换后各节点记录获得新的 NodeRef。
func (c *Cache) Merge(msg *types.DirectoryMessage) MergeResult {
	if msg == nil || msg.Participant.IsEmpty() {
		c.reject(types.EmptyParticipantID, "missing participant id")
		return MergeRejected
	}
	if msg.Participant == c.local {
		c.reject(msg.Participant, "message claims local participant")
		return MergeRejected
	}

	view := msg.View()
	digest := viewDigest(view)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.gone[msg.Participant]; ok {
		c.stale++
		logger.Debug("丢弃已离开参与者的目录消息", "participant", msg.Participant.ShortString())
		return MergeStale
	}
	if cur, ok := c.participants[msg.Participant]; ok && cur.digest == digest && cur.view.Equal(view) {
		c.unchanged++
		return MergeUnchanged
	}
	c.participants[msg.Participant] = &entry{
		view:   view,
		refs:   c.freshRefs(len(view.Nodes)),
		digest: digest,
	}
	c.merged++
	return MergeApplied
}

func (c *Cache) reject(pid types.ParticipantID, reason string) {
	c.mu.Lock()
	c.rejected++
	c.mu.Unlock()

	c.rejectLog.Do(func() {
		logger.Warn("拒绝远端目录更新", "participant", pid.ShortString(), "reason", reason)
	})
}

// RemoveParticipant 参与者离开域时删除其条目
//
// 本地参与者不会被删除。该参与者随后进入离开状态，
// 在 Readmit 之前到达的目录消息返回 MergeStale。返回是否删除了条目。
func (c *Cache) RemoveParticipant(pid types.ParticipantID) bool {
	if pid.IsEmpty() || pid == c.local {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.gone[pid] = struct{}{}
	if _, ok := c.participants[pid]; !ok {
		return false
	}
	delete(c.participants, pid)
	c.departed++
	return true
}

// Readmit 参与者重新加入后恢复接收其目录消息
//
// 返回该参与者此前是否处于离开状态。
func (c *Cache) Readmit(pid types.ParticipantID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.gone[pid]; !ok {
		return false
	}
	delete(c.gone, pid)
	return true
}

// Departed 参与者是否处于离开状态
func (c *Cache) Departed(pid types.ParticipantID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.gone[pid]
	return ok
}

// ============================================================================
//                              读取
// ============================================================================

// Snapshot 返回某一时刻的完整快照
//
// 条目不可变，持读锁复制映射即得到一致的时间点，
// 深拷贝在锁外完成。
func (c *Cache) Snapshot() types.Snapshot {
	c.mu.RLock()
	entries := make(map[types.ParticipantID]*entry, len(c.participants))
	for pid, e := range c.participants {
		entries[pid] = e
	}
	c.mu.RUnlock()

	snap := make(types.Snapshot, len(entries))
	for pid, e := range entries {
		snap[pid] = e.view.Clone()
	}
	return snap
}

// View 返回单个参与者的视图
func (c *Cache) View(pid types.ParticipantID) (types.ParticipantView, bool) {
	c.mu.RLock()
	e, ok := c.participants[pid]
	c.mu.RUnlock()
	if !ok {
		return types.ParticipantView{}, false
	}
	return e.view.Clone(), true
}

// LocalMessage 将本地视图构造为目录消息
func (c *Cache) LocalMessage() *types.DirectoryMessage {
	view, _ := c.View(c.local)
	return &types.DirectoryMessage{Participant: c.local, Nodes: view.Nodes}
}

// Participants 返回已知参与者数量
func (c *Cache) Participants() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.participants)
}

// Stats 返回缓存统计
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nodes := 0
	for _, e := range c.participants {
		nodes += len(e.view.Nodes)
	}
	return Stats{
		Participants: len(c.participants),
		Nodes:        nodes,
		Merged:       c.merged,
		Unchanged:    c.unchanged,
		Rejected:     c.rejected,
		Departed:     c.departed,
		Stale:        c.stale,
	}
}

// 确保实现接口
var _ interfaces.GraphReader = (*Cache)(nil)
