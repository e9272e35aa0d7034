package graphdir

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-graphdir/internal/core/metrics"
	"github.com/dep2p/go-graphdir/internal/participant"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与外部依赖：Config、PubSub、Registerer、ParticipantID
//  2. metrics：图目录指标（Diagnostics.EnableMetrics 关闭时为 nil）
//  3. participant：参与者上下文，构造时加入通信域
//  4. 用户自定义 Fx 选项
func buildFxApp(o *options, pctx **participant.Context) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Provide(func() interfaces.PubSub { return o.pubsub }),
	}
	if o.registerer != nil {
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return o.registerer }))
	}
	if !o.participantID.IsEmpty() {
		modules = append(modules, fx.Supply(o.participantID))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		metrics.Module,
		participant.Module,
		fx.Populate(pctx),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.fxOptions...)

	// ════════════════════════════════════════════════════════════════════════
	// 4. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		// 后续 Invoke 失败时参与者可能已加入通信域
		if *pctx != nil {
			_ = (*pctx).Close(context.Background())
		}
		return nil, err
	}
	return app, nil
}
