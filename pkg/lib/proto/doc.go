// Package proto 定义 graphdir 的网络协议消息（wire format）
//
// # 子包
//
//   - directory: 参与者目录消息（ParticipantEntitiesInfo 等价物）
//
// # 职能
//
// pkg/lib/proto 的职能是定义 **跨网络传输** 的协议消息：
//   - 与 Protobuf 线格式兼容，支持跨语言解析
//   - 需要版本兼容（未知字段跳过）
//   - 变更成本高（影响网络协议）
//
// # 与 pkg/types 的区别
//
// pkg/lib/proto 定义网络协议消息（wire format），
// pkg/types 定义 Go 内部数据结构（内存结构）。
package proto
