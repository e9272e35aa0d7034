package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-graphdir/pkg/types"
)

// DirectoryPublisher 目录消息发布者
//
// 由传输适配层实现，UpdateCoordinator 在更新锁内调用。
type DirectoryPublisher interface {
	Publish(ctx context.Context, msg *types.DirectoryMessage) error
}

// DirectoryPublisherFunc 函数适配器
type DirectoryPublisherFunc func(ctx context.Context, msg *types.DirectoryMessage) error

// Publish 实现 DirectoryPublisher
func (f DirectoryPublisherFunc) Publish(ctx context.Context, msg *types.DirectoryMessage) error {
	return f(ctx, msg)
}

// ChangeSignal 图变化信号（guard condition）
//
// 电平触发：多次 Notify 在一次 Wait 返回前只计一次。
type ChangeSignal interface {
	// Notify 置位信号，已置位时无操作
	Notify()

	// Wait 阻塞直到信号置位或超时，返回是否置位；置位时同时复位
	Wait(timeout time.Duration) bool

	// Changed 返回在下一次 Notify 时关闭的通道
	Changed() <-chan struct{}
}

// GraphReader 图缓存只读视图
type GraphReader interface {
	// LocalParticipant 返回本地参与者 ID
	LocalParticipant() types.ParticipantID

	// Snapshot 返回某一时刻的完整快照（深拷贝）
	Snapshot() types.Snapshot

	// NodeNames 列出全域节点
	NodeNames() []types.NodeInfo

	// CountEntities 统计全域指定类型的实体数量
	CountEntities(kind types.EntityKind) int
}
