// Package mocks 提供统一的测试 Mock 实现
//
// # 传输 Mock
//
//   - MockPubSub: 模拟 interfaces.PubSub，记录 Join 调用
//   - MockTopic: 模拟 interfaces.Topic，记录已发布数据，支持注入投递与成员事件
//   - MockPubSubSubscription: 模拟 interfaces.TopicSubscription
//   - MockEventHandler: 模拟 interfaces.TopicEventHandler
//
// # 目录 Mock
//
//   - MockDirectoryPublisher: 模拟 interfaces.DirectoryPublisher，记录消息，
//     检测并发调用重叠
//
// # 设计原则
//
// 1. 函数式注入: 每个 Mock 都支持通过 XxxFunc 字段注入自定义行为
// 2. 调用记录: 关键 Mock 记录调用历史，便于验证测试行为
// 3. 并发安全: 被后台循环调用的 Mock 内部加锁
//
// # 使用示例
//
//	ps := mocks.NewMockPubSub()
//	ps.JoinFunc = func(topic string) (interfaces.Topic, error) {
//	    return nil, errors.New("join refused")
//	}
//
//	pub := mocks.NewMockDirectoryPublisher()
//	pub.PublishFunc = func(ctx context.Context, msg *types.DirectoryMessage) error {
//	    return types.NewTransportError("publish", types.CodeTimeout, nil)
//	}
package mocks
