// Package graphcache 实现进程内的图目录缓存
//
// # 模块概述
//
// Cache 维护 参与者 GID → 参与者视图 的映射，是进程对全域图
// 认知的唯一权威来源：
//   - 本地变更（AddNodeRecord/RemoveNodeRecord/AddEntityTo/RemoveEntityFrom
//     及按名称定位的 AddNode/RemoveNode/AddEntity/RemoveEntity）返回
//     变更后该参与者的完整视图，供调用方整体广播
//   - 远端合并（Merge）用消息内容整体替换对应参与者的视图
//   - 快照（Snapshot）返回某一时刻的深拷贝
//
// # 不变量
//
//   - 本地参与者的条目始终存在，远端消息不能覆盖它
//   - 参与者离开后条目被删除，Readmit 之前同 ID 的消息被丢弃，
//     之后的消息开启新纪元
//   - 同名节点按多重集合记录，不去重；每条记录有独立的 NodeRef
//
// # 并发
//
// 条目不可变（写时复制），内部读写锁只保护映射本身，
// 持锁区间仅为"读旧条目、构造新条目、替换"。
// 本包不调用任何传输原语，发布顺序由上层的更新锁保证。
package graphcache
