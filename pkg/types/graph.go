package types

import "sort"

// ============================================================================
//                              节点与实体
// ============================================================================

// NodeInfo 节点身份（名称 + 命名空间）
//
// 同一参与者下允许出现重名节点，目录按多重集合记录。
type NodeInfo struct {
	Name      string
	Namespace string
}

// FullyQualifiedName 返回完整节点名，例如 "/ns/talker"
func (n NodeInfo) FullyQualifiedName() string {
	if n.Namespace == "/" || n.Namespace == "" {
		return "/" + n.Name
	}
	return n.Namespace + "/" + n.Name
}

// String 实现 fmt.Stringer
func (n NodeInfo) String() string {
	return n.FullyQualifiedName()
}

// NodeEntities 节点及其拥有的发布者/订阅者
type NodeEntities struct {
	NodeInfo

	// Entities 按创建顺序排列的实体 GID
	Entities []EntityID
}

// Clone 深拷贝
func (n NodeEntities) Clone() NodeEntities {
	out := NodeEntities{NodeInfo: n.NodeInfo}
	if len(n.Entities) > 0 {
		out.Entities = make([]EntityID, len(n.Entities))
		copy(out.Entities, n.Entities)
	}
	return out
}

// Publishers 返回发布者实体
func (n NodeEntities) Publishers() []EntityID {
	return n.filter(KindPublisher)
}

// Subscribers 返回订阅者实体
func (n NodeEntities) Subscribers() []EntityID {
	return n.filter(KindSubscriber)
}

func (n NodeEntities) filter(kind EntityKind) []EntityID {
	var out []EntityID
	for _, e := range n.Entities {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// Equal 比较节点与实体（实体顺序敏感）
func (n NodeEntities) Equal(other NodeEntities) bool {
	if n.NodeInfo != other.NodeInfo || len(n.Entities) != len(other.Entities) {
		return false
	}
	for i := range n.Entities {
		if n.Entities[i] != other.Entities[i] {
			return false
		}
	}
	return true
}

// ============================================================================
//                              参与者视图
// ============================================================================

// ParticipantView 单个参与者的完整目录视图
type ParticipantView struct {
	// Nodes 按插入顺序排列的节点
	Nodes []NodeEntities
}

// Clone 深拷贝
func (v ParticipantView) Clone() ParticipantView {
	if len(v.Nodes) == 0 {
		return ParticipantView{}
	}
	out := ParticipantView{Nodes: make([]NodeEntities, len(v.Nodes))}
	for i, n := range v.Nodes {
		out.Nodes[i] = n.Clone()
	}
	return out
}

// Equal 按顺序比较两个视图
func (v ParticipantView) Equal(other ParticipantView) bool {
	if len(v.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range v.Nodes {
		if !v.Nodes[i].Equal(other.Nodes[i]) {
			return false
		}
	}
	return true
}

// EquivalentTo 节点集合层面顺序无关、节点内实体顺序敏感的比较
func (v ParticipantView) EquivalentTo(other ParticipantView) bool {
	if len(v.Nodes) != len(other.Nodes) {
		return false
	}
	a, b := v.sortedNodes(), other.sortedNodes()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (v ParticipantView) sortedNodes() []NodeEntities {
	out := make([]NodeEntities, len(v.Nodes))
	copy(out, v.Nodes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CountKind 统计视图中指定类型的实体数量
func (v ParticipantView) CountKind(kind EntityKind) int {
	count := 0
	for _, n := range v.Nodes {
		for _, e := range n.Entities {
			if e.Kind() == kind {
				count++
			}
		}
	}
	return count
}

// ============================================================================
//                              目录消息
// ============================================================================

// DirectoryMessage 目录更新消息
//
// 携带一个参与者当前的完整视图。接收方整体替换而非打补丁，
// 因此丢失或乱序的消息会在下一次成功投递时自愈。
type DirectoryMessage struct {
	Participant ParticipantID
	Nodes       []NodeEntities
}

// NewDirectoryMessage 由视图构造消息（深拷贝）
func NewDirectoryMessage(pid ParticipantID, view ParticipantView) *DirectoryMessage {
	return &DirectoryMessage{
		Participant: pid,
		Nodes:       view.Clone().Nodes,
	}
}

// View 返回消息携带的视图（深拷贝）
func (m *DirectoryMessage) View() ParticipantView {
	if m == nil {
		return ParticipantView{}
	}
	return ParticipantView{Nodes: m.Nodes}.Clone()
}

// ============================================================================
//                              快照
// ============================================================================

// Snapshot 全域目录快照：参与者 → 视图
type Snapshot map[ParticipantID]ParticipantView

// Participants 返回快照中的参与者（按字节序排序）
func (s Snapshot) Participants() []ParticipantID {
	out := make([]ParticipantID, 0, len(s))
	for pid := range s {
		out = append(out, pid)
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i][:]) < string(out[j][:])
	})
	return out
}

// NodeCount 统计快照中的节点总数
func (s Snapshot) NodeCount() int {
	count := 0
	for _, v := range s {
		count += len(v.Nodes)
	}
	return count
}

// HasNode 快照中是否存在指定名称的节点
func (s Snapshot) HasNode(name, namespace string) bool {
	for _, v := range s {
		for _, n := range v.Nodes {
			if n.Name == name && n.Namespace == namespace {
				return true
			}
		}
	}
	return false
}
