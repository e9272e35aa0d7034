// Package metrics 提供图目录同步的 Prometheus 指标
//
// GraphMetrics 记录：
//   - 本地更新次数（按操作）与发布耗时
//   - 发布失败次数（按错误分类）
//   - 远端合并次数（按结果）与解码失败次数
//   - 成员事件次数（按类型）
//   - 当前已知参与者数与节点数
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.NewGraphMetrics(reg, "graphdir")
//
//	m.ObserveLocalUpdate("create_node")
//	m.ObserveMerge("applied")
//	m.SetGraphSize(3, 12)
//
// 所有方法在 nil 接收者上是空操作，未启用指标时调用方无需判空。
//
// # Fx 模块
//
//	app := fx.New(metrics.Module)
//
// 未提供 prometheus.Registerer 时指标仍会创建，但不注册到任何 registry。
package metrics
