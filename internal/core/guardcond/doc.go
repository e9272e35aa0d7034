// Package guardcond 实现图变化信号（guard condition）
//
// GuardCondition 是一个电平触发的二值标志：
//   - Notify 置位，已置位时为空操作
//   - Wait 阻塞直到置位或超时，返回 true 时同时复位
//
// 信号不携带数据，等待方被唤醒后必须重新读取图缓存。
//
// 多个等待方各自判断条件时应使用 Changed()：它返回在下一次 Notify
// 时关闭的通道，不消费电平，等待方之间互不抢占。
package guardcond
