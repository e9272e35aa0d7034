// Package graphsync 实现图目录的本地更新协调与远端同步
//
// # 组件
//
//   - Coordinator：更新锁，保证 "修改缓存 → 构造消息 → 发布" 对本地变更原子，
//     同一参与者的两次变更按获得锁的顺序发布
//   - Service：加入目录主题，投递循环把远端消息合并进缓存，
//     成员事件循环处理参与者离开与新成员加入
//   - topicPublisher：把目录消息编码后发布到主题
//
// # 锁顺序
//
// 更新锁 → 缓存映射锁。远端合并只取缓存映射锁，
// 因此投递循环不会因本地发布阻塞。
//
// # 错误
//
// 本地更新失败统一返回 *Error，按 ErrorKind 分类：
//
//	err := coord.ApplyLocal(ctx, "create_node", mutation)
//	if errors.Is(err, graphsync.ErrTransportUnavailable) {
//	    // 缓存已修改，但消息未发出
//	}
//
// 发布失败时缓存变更不回滚，也不重试；下一次成功的发布携带完整视图，
// 远端据此整体替换。
package graphsync
