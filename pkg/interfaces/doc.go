// Package interfaces 定义 graphdir 的公共接口
//
// 接口按职责扁平组织：
//
// # 传输边界
//
//   - pubsub.go - 发布订阅传输（外部协作者，目录消息经由它广播）
//
// # 图目录
//
//   - graph.go  - 目录发布者、图变化信号、图缓存只读视图
//
// 实现位于 internal/ 下，本包不依赖任何实现。
package interfaces
