// Package graphdir 提供分布式图目录同步
//
// 通信域中的每个进程持有一份最终一致的全域视图：存在哪些节点，
// 每个节点下有哪些发布者与订阅者。进程只直接观察本地实体，
// 远端实体通过发布订阅传输上的目录消息异步获知。
//
// # 快速开始
//
//	net := memory.NewNetwork()
//
//	dir, err := graphdir.New(ctx, graphdir.WithMemoryNetwork(net))
//	if err != nil {
//	    return err
//	}
//	defer dir.Close(ctx)
//
//	node, _ := dir.CreateNode(ctx, "talker", "/demo")
//	_, _ = node.CreatePublisher(ctx)
//
//	ok, _ := dir.WaitForGraph(ctx, func(s graphdir.Snapshot) bool {
//	    return s.HasNode("listener", "/demo")
//	}, 5*time.Second)
//
// # 组织结构
//
//	graphdir/
//	├── graphdir.go   # Directory、New、Close、版本信息
//	├── options.go    # WithXxx 配置选项
//	├── fx.go         # Fx 应用装配
//	├── types.go      # 公共类型别名
//	└── errors.go     # 错误定义
//
// 内部分层：
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  participant    上下文、节点与实体的生命周期                  │
//	├─────────────────────────────────────────────────────────────┤
//	│  graphsync      更新协调器、目录同步服务                      │
//	├─────────────────────────────────────────────────────────────┤
//	│  graphcache     全域视图缓存      guardcond   图变化信号      │
//	├─────────────────────────────────────────────────────────────┤
//	│  PubSub         外部传输（memory 为进程内实现）               │
//	└─────────────────────────────────────────────────────────────┘
//
// # 一致性
//
// 本地变更在一把更新锁内完成"修改缓存 + 发布完整视图"，
// 同一参与者的消息按变更顺序发出；远端消息整体替换对应参与者的视图。
// 发布失败不回滚缓存，下一次成功的发布会携带完整视图。
package graphdir
