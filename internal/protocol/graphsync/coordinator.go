package graphsync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dep2p/go-graphdir/internal/core/metrics"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
	"github.com/dep2p/go-graphdir/pkg/types"
)

var logger = log.Logger("protocol/graphsync")

// errNilMutation 变更函数为 nil
var errNilMutation = errors.New("graphsync: nil mutation")

// Mutation 修改缓存并返回变更后参与者的完整视图
//
// 返回 (nil, nil) 表示无需发布。
type Mutation func() (*types.DirectoryMessage, error)

// Coordinator 本地更新协调器
type Coordinator struct {
	// mu 更新锁，持有期间完成修改与发布
	mu sync.Mutex

	publisher interfaces.DirectoryPublisher
	signal    interfaces.ChangeSignal
	metrics   *metrics.GraphMetrics
}

// NewCoordinator 创建协调器
//
// signal 与 m 可以为 nil。
func NewCoordinator(publisher interfaces.DirectoryPublisher, signal interfaces.ChangeSignal, m *metrics.GraphMetrics) *Coordinator {
	return &Coordinator{
		publisher: publisher,
		signal:    signal,
		metrics:   m,
	}
}

// ApplyLocal 在更新锁内执行变更并发布
//
// 变更失败时不发布、不通知，返回 KindInvalidArgument。
// 变更成功后无论发布是否成功都会通知 ChangeSignal；
// 发布失败返回 KindPublishRejected 或 KindTransportUnavailable，缓存不回滚。
func (c *Coordinator) ApplyLocal(ctx context.Context, op string, mutation Mutation) error {
	if mutation == nil {
		return invalidArgument(op, errNilMutation)
	}

	c.mu.Lock()
	msg, err := mutation()
	if err != nil {
		c.mu.Unlock()
		var e *Error
		if errors.As(err, &e) {
			return err
		}
		return invalidArgument(op, err)
	}
	c.metrics.ObserveLocalUpdate(op)

	var publishErr error
	start := time.Now()
	if msg != nil {
		publishErr = c.publish(ctx, op, msg)
	}
	c.mu.Unlock()

	c.observePublish(msg, start, publishErr)
	c.notify()
	return publishErr
}

// Republish 在更新锁内重新发布当前视图，不修改缓存
//
// 用于新成员加入时补发本地视图。
func (c *Coordinator) Republish(ctx context.Context, op string, build func() *types.DirectoryMessage) error {
	if build == nil {
		return invalidArgument(op, errNilMutation)
	}

	c.mu.Lock()
	msg := build()
	var publishErr error
	start := time.Now()
	if msg != nil {
		publishErr = c.publish(ctx, op, msg)
	}
	c.mu.Unlock()

	c.observePublish(msg, start, publishErr)
	return publishErr
}

func (c *Coordinator) publish(ctx context.Context, op string, msg *types.DirectoryMessage) error {
	if c.publisher == nil {
		return &Error{Kind: KindTransportUnavailable, Op: op, Err: errors.New("no publisher")}
	}
	if err := c.publisher.Publish(ctx, msg); err != nil {
		wrapped := wrapPublishError(op, err)
		logger.Warn("目录消息发布失败",
			"op", op,
			"participant", msg.Participant.ShortString(),
			"kind", KindOf(wrapped).String(),
			"err", err)
		return wrapped
	}
	logger.Debug("目录消息已发布", "op", op, "participant", msg.Participant.ShortString(), "nodes", len(msg.Nodes))
	return nil
}

func (c *Coordinator) observePublish(msg *types.DirectoryMessage, start time.Time, err error) {
	if msg == nil {
		return
	}
	kind := ""
	if err != nil {
		kind = KindOf(err).String()
	}
	c.metrics.ObservePublish(time.Since(start), kind)
}

func (c *Coordinator) notify() {
	if c.signal != nil {
		c.signal.Notify()
	}
}
