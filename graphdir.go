package graphdir

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-graphdir/internal/core/graphcache"
	"github.com/dep2p/go-graphdir/internal/participant"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "graphdir " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

var logger = log.Logger("graphdir")

// ════════════════════════════════════════════════════════════════════════════
//                              Directory
// ════════════════════════════════════════════════════════════════════════════

// Directory 一个参与者的图目录
type Directory struct {
	app         *fx.App
	participant *participant.Context

	// ownedPubSub 由 WithMemoryNetwork 创建，关闭时一并关闭
	ownedPubSub interfaces.PubSub

	closeOnce sync.Once
	closeErr  error
}

// New 创建目录并加入通信域
//
// 返回时初始视图已广播；使用完毕后调用 Close。
func New(ctx context.Context, opts ...Option) (*Directory, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if o.logOutput != nil {
		if err := o.config.Log.Apply(o.logOutput); err != nil {
			return nil, fmt.Errorf("configure log: %w", err)
		}
	}

	d := &Directory{}
	if o.pubsub == nil {
		if o.network == nil {
			return nil, ErrNoPubSub
		}
		pid, err := localParticipantID(o)
		if err != nil {
			return nil, err
		}
		o.participantID = pid
		o.pubsub = o.network.NewPubSub(pid.String())
		d.ownedPubSub = o.pubsub
	}

	app, err := buildFxApp(o, &d.participant)
	if err != nil {
		d.closeOwned()
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		err = multierr.Append(err, app.Stop(context.Background()))
		d.closeOwned()
		return nil, fmt.Errorf("start: %w", err)
	}
	d.app = app

	logger.Info("图目录已启动", "participant", d.participant.LocalParticipant().ShortString(), "version", Version)
	return d, nil
}

// localParticipantID 为进程内通信域确定参与者 ID
func localParticipantID(o *options) (types.ParticipantID, error) {
	if !o.participantID.IsEmpty() {
		return o.participantID, nil
	}
	if o.config.Graph.ParticipantID != "" {
		return types.ParseParticipantID(o.config.Graph.ParticipantID)
	}
	return types.NewParticipantID(), nil
}

func (d *Directory) closeOwned() error {
	if d.ownedPubSub == nil {
		return nil
	}
	return d.ownedPubSub.Close()
}

// Close 离开通信域并释放资源，可重复调用
func (d *Directory) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.closeErr = multierr.Combine(d.app.Stop(ctx), d.closeOwned())
		logger.Info("图目录已关闭", "participant", d.participant.LocalParticipant().ShortString())
	})
	return d.closeErr
}

// ════════════════════════════════════════════════════════════════════════════
//                              实体生命周期
// ════════════════════════════════════════════════════════════════════════════

// LocalParticipant 返回本地参与者 ID
func (d *Directory) LocalParticipant() ParticipantID {
	return d.participant.LocalParticipant()
}

// CreateNode 创建本地节点
func (d *Directory) CreateNode(ctx context.Context, name, namespace string) (*Node, error) {
	if d.participant.Closed() {
		return nil, ErrClosed
	}
	return d.participant.CreateNode(ctx, name, namespace)
}

// DestroyNode 销毁本地节点及其实体
func (d *Directory) DestroyNode(ctx context.Context, n *Node) error {
	if d.participant.Closed() {
		return ErrClosed
	}
	return d.participant.DestroyNode(ctx, n)
}

// ════════════════════════════════════════════════════════════════════════════
//                              图查询
// ════════════════════════════════════════════════════════════════════════════

// Snapshot 返回全域快照
func (d *Directory) Snapshot() Snapshot {
	return d.participant.Snapshot()
}

// NodeNames 列出全域节点
func (d *Directory) NodeNames() []NodeInfo {
	return d.participant.NodeNames()
}

// CountPublishers 统计全域发布者数量
func (d *Directory) CountPublishers() int {
	return d.participant.CountPublishers()
}

// CountSubscribers 统计全域订阅者数量
func (d *Directory) CountSubscribers() int {
	return d.participant.CountSubscribers()
}

// Stats 返回缓存统计
func (d *Directory) Stats() graphcache.Stats {
	return d.participant.Stats()
}

// GraphGuardCondition 返回图变化信号
func (d *Directory) GraphGuardCondition() interfaces.ChangeSignal {
	return d.participant.GraphGuardCondition()
}

// WaitForGraph 等待全域快照满足 predicate，超时返回 false
func (d *Directory) WaitForGraph(ctx context.Context, predicate func(Snapshot) bool, timeout time.Duration) (bool, error) {
	return d.participant.WaitForGraph(ctx, predicate, timeout)
}
