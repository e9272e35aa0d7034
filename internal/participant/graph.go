package participant

import (
	"context"
	"time"

	"github.com/dep2p/go-graphdir/internal/core/graphcache"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// GraphGuardCondition 返回图变化信号
//
// 本地变更、远端视图变化、参与者离开时置位。
func (c *Context) GraphGuardCondition() interfaces.ChangeSignal {
	return c.signal
}

// Snapshot 返回全域快照
func (c *Context) Snapshot() types.Snapshot {
	return c.cache.Snapshot()
}

// NodeNames 列出全域节点
func (c *Context) NodeNames() []types.NodeInfo {
	return c.cache.NodeNames()
}

// CountEntities 统计全域指定类型的实体数量
func (c *Context) CountEntities(kind types.EntityKind) int {
	return c.cache.CountEntities(kind)
}

// CountPublishers 统计全域发布者数量
func (c *Context) CountPublishers() int {
	return c.cache.CountEntities(types.KindPublisher)
}

// CountSubscribers 统计全域订阅者数量
func (c *Context) CountSubscribers() int {
	return c.cache.CountEntities(types.KindSubscriber)
}

// NodeEntities 返回全域同名节点下的实体
func (c *Context) NodeEntities(name, namespace string) []types.EntityID {
	return c.cache.NodeEntities(name, namespace)
}

// Stats 返回缓存统计
func (c *Context) Stats() graphcache.Stats {
	return c.cache.Stats()
}

// WaitForGraph 等待全域快照满足 predicate
//
// 每次图变化后重新读取快照。timeout < 0 表示无限等待。
// 超时返回 (false, nil)；ctx 结束返回 ctx 的错误；上下文关闭返回 ErrClosed。
func (c *Context) WaitForGraph(ctx context.Context, predicate func(types.Snapshot) bool, timeout time.Duration) (bool, error) {
	if predicate == nil {
		return false, invalidArgument("wait_for_graph", errNilPredicate)
	}

	var expired <-chan time.Time
	if timeout >= 0 {
		timer := c.clock.Timer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		// 先取通道再读快照，避免漏掉两者之间的变化
		changed := c.signal.Changed()
		if predicate(c.cache.Snapshot()) {
			return true, nil
		}
		if c.closed.Load() {
			return false, ErrClosed
		}

		select {
		case <-changed:
		case <-expired:
			return false, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
