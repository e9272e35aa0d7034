package graphdir

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-graphdir/config"
	"github.com/dep2p/go-graphdir/internal/core/transport/memory"
	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	// 传输：pubsub 优先，其次在 network 上创建节点
	pubsub  interfaces.PubSub
	network *memory.Network

	participantID types.ParticipantID
	registerer    prometheus.Registerer

	// 日志输出，nil 表示不重建默认 logger
	logOutput io.Writer

	fxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// ============================================================================
//                              配置选项
// ============================================================================

// WithConfig 使用完整配置
//
// 配置会被复制，之后修改 cfg 不影响目录。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("WithConfig: %w", ErrNilOption)
		}
		o.config = config.CloneConfig(cfg)
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
//
// 示例:
//
//	graphdir.New(ctx, graphdir.WithConfigFile("graphdir.json"))
func WithConfigFile(path string) Option {
	return func(o *options) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		cfg, err := config.FromJSON(data)
		if err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		o.config = cfg
		return nil
	}
}

// WithParticipantID 固定本地参与者 ID
func WithParticipantID(id types.ParticipantID) Option {
	return func(o *options) error {
		if id.IsEmpty() {
			return fmt.Errorf("WithParticipantID: %w", types.ErrInvalidGID)
		}
		o.participantID = id
		return nil
	}
}

// ============================================================================
//                              传输选项
// ============================================================================

// WithPubSub 使用外部发布订阅传输
//
// 节点 ID 应为参与者 ID 的 Base58 表示，成员离开事件据此删除对应参与者。
func WithPubSub(ps interfaces.PubSub) Option {
	return func(o *options) error {
		if ps == nil {
			return fmt.Errorf("WithPubSub: %w", ErrNilOption)
		}
		o.pubsub = ps
		return nil
	}
}

// WithMemoryNetwork 加入进程内通信域
//
// 以参与者 ID 为节点 ID 在 net 上创建 PubSub，目录关闭时一并关闭。
func WithMemoryNetwork(net *memory.Network) Option {
	return func(o *options) error {
		if net == nil {
			return fmt.Errorf("WithMemoryNetwork: %w", ErrNilOption)
		}
		o.network = net
		return nil
	}
}

// ============================================================================
//                              诊断选项
// ============================================================================

// WithRegisterer 将指标注册到 reg
//
// 未指定时指标照常收集但不注册。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		if reg == nil {
			return fmt.Errorf("WithRegisterer: %w", ErrNilOption)
		}
		o.registerer = reg
		return nil
	}
}

// WithLogOutput 按配置中的日志级别与格式重建默认 logger，输出到 w
func WithLogOutput(w io.Writer) Option {
	return func(o *options) error {
		if w == nil {
			return fmt.Errorf("WithLogOutput: %w", ErrNilOption)
		}
		o.logOutput = w
		return nil
	}
}

// ============================================================================
//                              扩展选项
// ============================================================================

// WithFxOptions 追加自定义 Fx 选项
//
// 可用于从容器中取出内部组件：
//
//	var reader interfaces.GraphReader
//	graphdir.New(ctx, graphdir.WithFxOptions(fx.Populate(&reader)))
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
