package participant

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-graphdir/config"
	"github.com/dep2p/go-graphdir/internal/core/metrics"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// ============================================================================
//
//	Fx 模块定义
//
// ============================================================================

// Module 参与者 Fx 模块
var Module = fx.Module("participant",
	fx.Provide(NewFromParams),
)

// ============================================================================
//
//	Fx 参数和结果
//
// ============================================================================

// Params 参与者依赖参数
type Params struct {
	fx.In

	UnifiedCfg    *config.Config        `optional:"true"`
	PubSub        interfaces.PubSub
	Metrics       *metrics.GraphMetrics `optional:"true"`
	ParticipantID types.ParticipantID   `optional:"true"`
	Clock         clock.Clock           `optional:"true"`
	LC            fx.Lifecycle
}

// Result 参与者导出结果
type Result struct {
	fx.Out

	Context *Context
	Reader  interfaces.GraphReader
	Signal  interfaces.ChangeSignal
}

// ============================================================================
//
//	构造函数
//
// ============================================================================

// NewFromParams 从 Fx 参数创建参与者上下文
//
// 上下文在构造时即加入通信域，随 Fx 应用停止而关闭。
func NewFromParams(p Params) (Result, error) {
	opts := []Option{
		WithMetrics(p.Metrics),
		WithParticipantID(p.ParticipantID),
	}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	c, err := New(context.Background(), p.UnifiedCfg, p.PubSub, opts...)
	if err != nil {
		return Result{}, err
	}

	p.LC.Append(fx.Hook{
		OnStop: c.Close,
	})

	return Result{
		Context: c,
		Reader:  c,
		Signal:  c.GraphGuardCondition(),
	}, nil
}
