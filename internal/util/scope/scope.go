// Package scope 提供作用域资源守卫
//
// 多步构造过程中，每获得一个资源就登记其释放动作；
// 构造失败时按获得的逆序释放，构造成功后调用 Dismiss 转移所有权。
//
//	g := scope.New()
//	defer g.Release(ctx)
//
//	svc, err := start()
//	if err != nil {
//	    return nil, err
//	}
//	g.Defer("service", svc.Stop)
//	...
//	g.Dismiss()
//	return obj, nil
package scope

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-graphdir/pkg/lib/log"
)

var logger = log.Logger("util/scope")

// releaseHook 一个已登记的释放动作
type releaseHook struct {
	name string
	fn   func(context.Context) error
}

// Guard 作用域资源守卫
type Guard struct {
	mu        sync.Mutex
	hooks     []releaseHook
	dismissed bool
}

// New 创建守卫
func New() *Guard {
	return &Guard{}
}

// Defer 登记一个释放动作
func (g *Guard) Defer(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, releaseHook{name: name, fn: fn})
}

// DeferFunc 登记一个不返回错误的释放动作
func (g *Guard) DeferFunc(name string, fn func()) {
	if fn == nil {
		return
	}
	g.Defer(name, func(context.Context) error {
		fn()
		return nil
	})
}

// Dismiss 放弃释放，资源所有权转移给调用方
func (g *Guard) Dismiss() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dismissed = true
	g.hooks = nil
}

// Len 返回尚未释放的动作数
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.hooks)
}

// Release 按登记的逆序执行释放动作
//
// 已 Dismiss 时为空操作；每个动作只执行一次。
// 单个动作失败不影响后续动作，错误合并返回。
func (g *Guard) Release(ctx context.Context) error {
	g.mu.Lock()
	if g.dismissed {
		g.mu.Unlock()
		return nil
	}
	hooks := g.hooks
	g.hooks = nil
	g.mu.Unlock()

	var err error
	for i := len(hooks) - 1; i >= 0; i-- {
		if hookErr := hooks[i].fn(ctx); hookErr != nil {
			logger.Debug("释放资源失败", "resource", hooks[i].name, "err", hookErr)
			err = multierr.Append(err, fmt.Errorf("release %s: %w", hooks[i].name, hookErr))
		}
	}
	return err
}
