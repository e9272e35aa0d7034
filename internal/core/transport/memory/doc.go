// Package memory 实现进程内的发布订阅传输
//
// Network 模拟一个通信域，每个 PubSub 代表域内的一个节点。
// 同一主题内的消息投递给除发送方以外的所有成员。
//
// # 投递语义
//
//   - 同一发送方的消息按发布顺序到达每个接收方
//   - 不同发送方之间没有顺序保证
//   - 发布永不阻塞：每个订阅持有无界队列
//   - 接收方拿到的是数据副本
//
// # 成员事件
//
// 节点首次订阅主题时成为成员，其他成员的事件处理器收到 PeerJoin；
// 关闭主题或 PubSub 时收到 PeerLeave。
// 新建的事件处理器会先收到当前所有成员的 PeerJoin。
//
// # 故障注入
//
//	net.SetPublishHook(func(peer, topic string) error {
//	    return types.NewTransportError("publish", types.CodeOutOfResources, nil)
//	})
//
// 钩子返回的错误原样返回给发布方，消息不投递。
//
// # 使用示例
//
//	net := memory.NewNetwork()
//	a := net.NewPubSub("peer-a")
//	b := net.NewPubSub("peer-b")
//
//	ta, _ := a.Join("graph")
//	tb, _ := b.Join("graph")
//	sub, _ := tb.Subscribe()
//
//	_ = ta.Publish(ctx, []byte("hello"))
//	msg, _ := sub.Next(ctx)
package memory
