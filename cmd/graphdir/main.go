// Package main 提供 graphdir 命令行入口
//
// 在进程内通信域中启动若干参与者，各自创建节点与实体，
// 等待全部参与者看到一致的全域图后打印结果。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	graphdir "github.com/dep2p/go-graphdir"
	"github.com/dep2p/go-graphdir/config"
	"github.com/dep2p/go-graphdir/internal/core/transport/memory"
	"github.com/dep2p/go-graphdir/pkg/lib/log"
	"github.com/dep2p/go-graphdir/pkg/types"
)

var logger = log.Logger("graphdir/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：本次演示的规模与行为
//   JSON 配置文件：目录同步、指标与日志配置
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 演示规模
	// ─────────────────────────────────────────────────────────────────────
	participants = flag.Int("participants", 3, "参与者数量")
	nodesPer     = flag.Int("nodes", 2, "每个参与者创建的节点数")
	publishers   = flag.Int("publishers", 1, "每个节点的发布者数")
	subscribers  = flag.Int("subscribers", 1, "每个节点的订阅者数")
	namespace    = flag.String("namespace", "/demo", "节点命名空间")
	timeout      = flag.Duration("timeout", 10*time.Second, "等待收敛的超时")

	// ─────────────────────────────────────────────────────────────────────
	// 运行参数
	// ─────────────────────────────────────────────────────────────────────
	configFile  = flag.String("config", "", "配置文件路径")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标监听地址（空 = 不启用）")
	hold        = flag.Bool("hold", false, "收敛后保持运行，直到收到退出信号")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")

	// publishTimeout 非零时覆盖配置文件中的发布超时
	publishTimeout config.Duration
)

func init() {
	flag.Var(&publishTimeout, "publish-timeout", "单次发布超时，如 2s（0 = 使用配置文件）")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(graphdir.VersionInfo())
		return nil
	}
	if *participants < 1 {
		return errors.New("participants 必须大于 0")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	if err := cfg.Log.Apply(os.Stderr); err != nil {
		return fmt.Errorf("配置日志失败: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📦 %s\n", graphdir.VersionInfo())

	reg := prometheus.NewRegistry()
	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, reg)
		defer func() { _ = srv.Close() }()
	}

	// ═══════════════════════════════════════════════════════════════════
	// 1. 启动参与者
	// ═══════════════════════════════════════════════════════════════════
	net := memory.NewNetwork()
	dirs := make([]*graphdir.Directory, 0, *participants)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var errs error
		for _, d := range dirs {
			errs = multierr.Append(errs, d.Close(closeCtx))
		}
		if errs != nil {
			logger.Warn("关闭参与者失败", "error", errs)
		}
	}()

	for i := 0; i < *participants; i++ {
		pid := types.NewParticipantID()
		d, err := graphdir.New(ctx,
			graphdir.WithConfig(cfg),
			graphdir.WithParticipantID(pid),
			graphdir.WithMemoryNetwork(net),
			// 同一注册表内按参与者区分指标
			graphdir.WithRegisterer(prometheus.WrapRegistererWith(
				prometheus.Labels{"participant": pid.ShortString()}, reg)),
		)
		if err != nil {
			return fmt.Errorf("启动参与者 %d 失败: %w", i, err)
		}
		dirs = append(dirs, d)
	}

	// ═══════════════════════════════════════════════════════════════════
	// 2. 并发创建节点与实体
	// ═══════════════════════════════════════════════════════════════════
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dirs {
		g.Go(func() error {
			return populate(gctx, i, d)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// ═══════════════════════════════════════════════════════════════════
	// 3. 等待收敛
	// ═══════════════════════════════════════════════════════════════════
	wantNodes := *participants * *nodesPer
	wantPubs := wantNodes * *publishers
	wantSubs := wantNodes * *subscribers
	converged := func(s graphdir.Snapshot) bool {
		return len(s.Participants()) == *participants &&
			s.NodeCount() == wantNodes &&
			countKind(s, types.KindPublisher) == wantPubs &&
			countKind(s, types.KindSubscriber) == wantSubs
	}

	start := time.Now()
	for _, d := range dirs {
		ok, err := d.WaitForGraph(ctx, converged, *timeout)
		if err != nil {
			return fmt.Errorf("等待收敛失败: %w", err)
		}
		if !ok {
			return fmt.Errorf("参与者 %s 在 %s 内未收敛", d.LocalParticipant().ShortString(), *timeout)
		}
	}
	logger.Info("全部参与者已收敛", "participants", len(dirs), "elapsed", time.Since(start))

	printGraph(dirs[0])

	if *hold {
		fmt.Println("按 Ctrl+C 退出")
		<-ctx.Done()
	}
	return nil
}

// loadConfig 加载配置文件并处理多参与者冲突
func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		data, err := os.ReadFile(*configFile) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
		if err != nil {
			return nil, err
		}
		if cfg, err = config.FromJSON(data); err != nil {
			return nil, err
		}
	}

	// 每个参与者使用独立 ID
	if cfg.Graph.ParticipantID != "" {
		logger.Warn("演示模式忽略配置中的 participant_id", "participant_id", cfg.Graph.ParticipantID)
		cfg.Graph.ParticipantID = ""
	}
	if publishTimeout > 0 {
		cfg.Graph.PublishTimeout = publishTimeout
	}
	return cfg, cfg.Validate()
}

// populate 为一个参与者创建节点与实体
func populate(ctx context.Context, index int, d *graphdir.Directory) error {
	for n := 0; n < *nodesPer; n++ {
		node, err := d.CreateNode(ctx, fmt.Sprintf("node_%d_%d", index, n), *namespace)
		if err != nil {
			return fmt.Errorf("创建节点失败: %w", err)
		}
		for p := 0; p < *publishers; p++ {
			if _, err := node.CreatePublisher(ctx); err != nil {
				return fmt.Errorf("创建发布者失败: %w", err)
			}
		}
		for s := 0; s < *subscribers; s++ {
			if _, err := node.CreateSubscriber(ctx); err != nil {
				return fmt.Errorf("创建订阅者失败: %w", err)
			}
		}
	}
	return nil
}

// serveMetrics 在后台暴露 /metrics
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务退出", "addr", addr, "error", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", addr)
	return srv
}

// countKind 统计快照中指定类型的实体数量
func countKind(s graphdir.Snapshot, kind types.EntityKind) int {
	count := 0
	for _, v := range s {
		count += v.CountKind(kind)
	}
	return count
}

// printGraph 打印全域图
func printGraph(d *graphdir.Directory) {
	snap := d.Snapshot()
	stats := d.Stats()

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Printf("  参与者: %d  节点: %d  发布者: %d  订阅者: %d\n",
		stats.Participants, stats.Nodes, d.CountPublishers(), d.CountSubscribers())
	fmt.Println("═══════════════════════════════════════════════════════")
	for _, pid := range snap.Participants() {
		fmt.Printf("● %s\n", pid.ShortString())
		for _, ne := range snap[pid].Nodes {
			fmt.Printf("    %-24s pub=%d sub=%d\n",
				ne.FullyQualifiedName(), len(ne.Publishers()), len(ne.Subscribers()))
		}
	}
	fmt.Println()
}
