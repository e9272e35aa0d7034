// Package participant 实现参与者上下文与实体生命周期适配
//
// Context 持有一个参与者的全部目录状态：图缓存、图变化信号与同步服务。
// 节点、发布者、订阅者的创建与销毁都经由更新协调器完成，
// 保证"修改缓存 + 发布完整视图"在本地是原子的。
//
// # 构造
//
// New 按顺序获得信号、缓存、同步服务并发布初始视图，
// 任一步失败时已获得的资源按逆序释放：
//
//	pctx, err := participant.New(ctx, cfg, pubsub)
//	if err != nil {
//	    return err
//	}
//	defer pctx.Close(ctx)
//
// # 实体
//
//	node, _ := pctx.CreateNode(ctx, "talker", "/demo")
//	pub, _ := node.CreatePublisher(ctx)
//	_ = node.DestroyEntity(ctx, pub)
//	_ = pctx.DestroyNode(ctx, node)
//
// 发布失败时调用返回错误，但缓存中的变更保留，下一次成功的发布会携带它。
//
// # 等待图变化
//
//	ok, err := pctx.WaitForGraph(ctx, func(s types.Snapshot) bool {
//	    return s.HasNode("listener", "/demo")
//	}, 5*time.Second)
//
// 多个等待者各自使用 Changed 通道，不会互相抢走信号。
package participant
