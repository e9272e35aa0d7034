// Package types 定义 graphdir 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 graphdir 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 与 pkg/lib/proto 的区别
//
// pkg/types 定义 Go 内部数据结构（内存结构），
// pkg/lib/proto/directory 定义目录消息的网络格式（wire format）。
//
// # 文件组织
//
//   - ids.go       - ParticipantID, EntityID, EntityKind（24 字节 GID）
//   - graph.go     - NodeInfo, NodeEntities, ParticipantView, DirectoryMessage, Snapshot
//   - names.go     - 节点名与命名空间校验
//   - transport.go - TransportCode, TransportError
package types
