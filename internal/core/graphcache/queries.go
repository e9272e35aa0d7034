package graphcache

import (
	"sort"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// ============================================================================
//                              全域查询
// ============================================================================

// NodeNames 列出全域节点
//
// 结果按参与者 ID 排序，同一参与者内保持插入顺序。重名节点会出现多次。
func (c *Cache) NodeNames() []types.NodeInfo {
	entries := c.entries()
	out := make([]types.NodeInfo, 0)
	for _, pe := range entries {
		for _, n := range pe.e.view.Nodes {
			out = append(out, n.NodeInfo)
		}
	}
	return out
}

// CountNodes 统计全域节点数
func (c *Cache) CountNodes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, e := range c.participants {
		count += len(e.view.Nodes)
	}
	return count
}

// CountEntities 统计全域指定类型的实体数
func (c *Cache) CountEntities(kind types.EntityKind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, e := range c.participants {
		count += e.view.CountKind(kind)
	}
	return count
}

// NodeEntities 返回全域所有同名节点的实体
//
// 同一参与者或不同参与者下的重名节点，其实体按参与者排序依次拼接。
func (c *Cache) NodeEntities(name, namespace string) []types.EntityID {
	info := types.NodeInfo{Name: name, Namespace: namespace}
	var out []types.EntityID
	for _, pe := range c.entries() {
		for _, n := range pe.e.view.Nodes {
			if n.NodeInfo == info {
				out = append(out, n.Entities...)
			}
		}
	}
	return out
}

type participantEntry struct {
	pid types.ParticipantID
	e   *entry
}

// entries 返回按参与者 ID 排序的条目
//
// 条目不可变，调用方可在锁外直接读取，但不得修改。
func (c *Cache) entries() []participantEntry {
	c.mu.RLock()
	out := make([]participantEntry, 0, len(c.participants))
	for pid, e := range c.participants {
		out = append(out, participantEntry{pid: pid, e: e})
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return string(out[i].pid[:]) < string(out[j].pid[:])
	})
	return out
}
