package participant

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"github.com/dep2p/go-graphdir/config"
	"github.com/dep2p/go-graphdir/internal/core/graphcache"
	"github.com/dep2p/go-graphdir/internal/core/guardcond"
	"github.com/dep2p/go-graphdir/internal/core/metrics"
	"github.com/dep2p/go-graphdir/internal/protocol/graphsync"
	"github.com/dep2p/go-graphdir/internal/util/scope"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
	"github.com/dep2p/go-graphdir/pkg/types"
)

var logger = log.Logger("participant")

// ============================================================================
//                              选项
// ============================================================================

type options struct {
	participantID types.ParticipantID
	metrics       *metrics.GraphMetrics
	clock         clock.Clock
}

// Option 上下文选项
type Option func(*options)

// WithParticipantID 指定本地参与者 ID，优先于配置
func WithParticipantID(id types.ParticipantID) Option {
	return func(o *options) {
		o.participantID = id
	}
}

// WithMetrics 指定指标收集器
func WithMetrics(m *metrics.GraphMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClock 指定时钟，用于图变化信号与 WaitForGraph 的超时
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// ============================================================================
//                              Context
// ============================================================================

// Context 参与者上下文
type Context struct {
	local  types.ParticipantID
	cache  *graphcache.Cache
	signal *guardcond.GuardCondition
	svc    *graphsync.Service
	clock  clock.Clock

	// seq 实体序号分配器，从 1 开始
	seq atomic.Uint64

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// 确保实现接口
var _ interfaces.GraphReader = (*Context)(nil)

// New 创建参与者上下文并加入通信域
//
// cfg 为 nil 时使用默认配置。参与者 ID 的来源依次为：
// WithParticipantID、cfg.Graph.ParticipantID、pubsub 的节点 ID（可解析时）、随机生成。
func New(ctx context.Context, cfg *config.Config, pubsub interfaces.PubSub, opts ...Option) (_ *Context, err error) {
	if pubsub == nil {
		return nil, ErrNilPubSub
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("participant: invalid config: %w", err)
	}

	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	local, err := resolveParticipantID(o.participantID, cfg, pubsub)
	if err != nil {
		return nil, err
	}

	guard := scope.New()
	defer func() {
		if err != nil {
			err = multierr.Append(err, guard.Release(context.Background()))
		}
	}()

	signal := guardcond.New(guardcond.WithClock(o.clock))

	cache, err := graphcache.New(local)
	if err != nil {
		return nil, err
	}

	svc, err := graphsync.NewService(graphsync.ConfigFromUnified(cfg), cache, signal, pubsub, o.metrics)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("participant: start sync service: %w", err)
	}
	guard.Defer("sync service", svc.Stop)

	// 初始广播让已有成员尽早得知本参与者
	if err := svc.Announce(ctx); err != nil {
		return nil, fmt.Errorf("participant: initial announce: %w", err)
	}

	c := &Context{
		local:  local,
		cache:  cache,
		signal: signal,
		svc:    svc,
		clock:  o.clock,
	}
	guard.Dismiss()

	logger.Info("参与者已加入通信域", "participant", local.ShortString())
	return c, nil
}

func resolveParticipantID(explicit types.ParticipantID, cfg *config.Config, pubsub interfaces.PubSub) (types.ParticipantID, error) {
	if !explicit.IsEmpty() {
		return explicit, nil
	}
	if cfg.Graph.ParticipantID != "" {
		return types.ParseParticipantID(cfg.Graph.ParticipantID)
	}
	if ider, ok := pubsub.(interface{ ID() string }); ok {
		if pid, err := types.ParseParticipantID(ider.ID()); err == nil && !pid.IsEmpty() {
			return pid, nil
		}
	}
	return types.NewParticipantID(), nil
}

// LocalParticipant 返回本地参与者 ID
func (c *Context) LocalParticipant() types.ParticipantID {
	return c.local
}

// Close 停止同步服务，可重复调用
//
// 关闭后所有变更操作返回 ErrClosed；已有的读取操作仍然可用。
func (c *Context) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.svc.Stop(ctx)
		// 唤醒阻塞在 WaitForGraph 上的等待者
		c.signal.Notify()
		logger.Info("参与者已离开通信域", "participant", c.local.ShortString())
	})
	return c.closeErr
}

// Closed 上下文是否已关闭
func (c *Context) Closed() bool {
	return c.closed.Load()
}

// apply 执行一次本地变更
func (c *Context) apply(ctx context.Context, op string, mutation graphsync.Mutation) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.svc.ApplyLocal(ctx, op, mutation)
}

// nextEntityID 分配一个本地实体 ID
func (c *Context) nextEntityID(kind types.EntityKind) (types.EntityID, error) {
	return c.local.Entity(c.seq.Add(1), kind)
}
