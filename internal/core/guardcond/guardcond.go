package guardcond

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// GuardCondition 电平触发的等待信号
type GuardCondition struct {
	mu        sync.Mutex
	triggered bool

	// level 在置位时关闭，复位时替换
	level chan struct{}
	// changed 在每次 Notify 时关闭并替换
	changed chan struct{}

	clock    clock.Clock
	notifies uint64
}

// Option 配置选项
type Option func(*GuardCondition)

// WithClock 指定时钟（测试中使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(g *GuardCondition) {
		if c != nil {
			g.clock = c
		}
	}
}

// New 创建未置位的 GuardCondition
func New(opts ...Option) *GuardCondition {
	g := &GuardCondition{
		level:   make(chan struct{}),
		changed: make(chan struct{}),
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Notify 置位信号
func (g *GuardCondition) Notify() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.notifies++
	close(g.changed)
	g.changed = make(chan struct{})

	if g.triggered {
		return
	}
	g.triggered = true
	close(g.level)
}

// Triggered 返回当前是否置位（不复位）
func (g *GuardCondition) Triggered() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.triggered
}

// Changed 返回在下一次 Notify 时关闭的通道
func (g *GuardCondition) Changed() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

// NotifyCount 返回累计 Notify 次数
func (g *GuardCondition) NotifyCount() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.notifies
}

// Wait 等待信号置位
//
// timeout < 0 表示无限等待，timeout == 0 仅检查当前状态。
// 返回 true 时信号已被本次调用复位。
func (g *GuardCondition) Wait(timeout time.Duration) bool {
	level, ok := g.take()
	if ok {
		return true
	}
	if timeout == 0 {
		return false
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := g.clock.Timer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-level:
		g.reset(level)
		return true
	case <-expired:
		return false
	}
}

// WaitContext 等待信号置位或 ctx 结束
func (g *GuardCondition) WaitContext(ctx context.Context) error {
	level, ok := g.take()
	if ok {
		return nil
	}
	select {
	case <-level:
		g.reset(level)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// take 已置位时复位并返回 true；否则返回当前电平通道
func (g *GuardCondition) take() (chan struct{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.triggered {
		g.triggered = false
		g.level = make(chan struct{})
		return nil, true
	}
	return g.level, false
}

// reset 仅当电平通道仍是被唤醒的那一个时复位
func (g *GuardCondition) reset(level chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.triggered && g.level == level {
		g.triggered = false
		g.level = make(chan struct{})
	}
}
