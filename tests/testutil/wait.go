// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
)

// DefaultTestTopic 默认测试主题
const DefaultTestTopic = "test/graph"

// WaitForCondition 等待条件满足或超时
//
// 参数：
//   - t: 测试对象
//   - timeout: 超时时间
//   - interval: 检查间隔
//   - condition: 条件函数，返回 true 表示条件满足
//
// 返回：条件是否满足（超时返回 false）
func WaitForCondition(t *testing.T, timeout time.Duration, interval time.Duration, condition func() bool) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 立即检查一次
	if condition() {
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if condition() {
				return true
			}
		}
	}
}

// Eventually 在指定时间内重试条件检查，超时则 fail 测试
//
// 使用默认间隔 10ms。
func Eventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	if !WaitForCondition(t, timeout, 10*time.Millisecond, condition) {
		t.Fatalf("等待超时: %s", msg)
	}
}

// WaitForSnapshot 等待 reader 的快照满足 predicate
//
// 示例:
//
//	testutil.WaitForSnapshot(t, reader, 5*time.Second, func(s types.Snapshot) bool {
//	    return s.HasNode("talker", "/demo")
//	})
func WaitForSnapshot(t *testing.T, reader interfaces.GraphReader, timeout time.Duration, predicate func(types.Snapshot) bool) types.Snapshot {
	t.Helper()

	var last types.Snapshot
	ok := WaitForCondition(t, timeout, 10*time.Millisecond, func() bool {
		last = reader.Snapshot()
		return predicate(last)
	})
	if !ok {
		t.Fatalf("等待快照超时: 参与者 %d, 节点 %d", len(last.Participants()), last.NodeCount())
	}
	return last
}

// WaitForParticipants 等待 reader 看到的参与者数达到 count
func WaitForParticipants(t *testing.T, reader interfaces.GraphReader, count int, timeout time.Duration) {
	t.Helper()
	WaitForSnapshot(t, reader, timeout, func(s types.Snapshot) bool {
		return len(s.Participants()) >= count
	})
}

// WaitForMessage 等待主题消息
//
// 从订阅中读取下一条消息，超时则失败。
func WaitForMessage(t *testing.T, sub interfaces.TopicSubscription, timeout time.Duration) *interfaces.Message {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msg, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("等待消息超时: %v", err)
	}
	return msg
}

// WaitForPeerEvent 等待下一个成员事件
func WaitForPeerEvent(t *testing.T, h interfaces.TopicEventHandler, timeout time.Duration) interfaces.PeerEvent {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ev, err := h.NextPeerEvent(ctx)
	if err != nil {
		t.Fatalf("等待成员事件超时: %v", err)
	}
	return ev
}

// RequireNoMessage 断言在 window 内没有收到消息
func RequireNoMessage(t *testing.T, sub interfaces.TopicSubscription, window time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()

	if msg, err := sub.Next(ctx); err == nil {
		t.Fatalf("不应收到消息: from=%s len=%d", msg.From, len(msg.Data))
	}
}
