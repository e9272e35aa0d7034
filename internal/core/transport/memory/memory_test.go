package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-graphdir/pkg/interfaces"
	"github.com/dep2p/go-graphdir/pkg/types"
	"github.com/dep2p/go-graphdir/tests/testutil"
)

const testTopic = "graph"

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustJoin(t *testing.T, ps *PubSub) interfaces.Topic {
	t.Helper()
	topic, err := ps.Join(testTopic)
	require.NoError(t, err)
	return topic
}

func mustSubscribe(t *testing.T, topic interfaces.Topic) interfaces.TopicSubscription {
	t.Helper()
	sub, err := topic.Subscribe()
	require.NoError(t, err)
	return sub
}

// ============================================================================
//                              投递
// ============================================================================

// TestPublish_DeliversToOthers 测试消息投递给其他成员而不回送发送方
func TestPublish_DeliversToOthers(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()

	ta := mustJoin(t, net.NewPubSub("a"))
	tb := mustJoin(t, net.NewPubSub("b"))
	tc := mustJoin(t, net.NewPubSub("c"))

	subA, err := ta.Subscribe()
	require.NoError(t, err)
	subB, err := tb.Subscribe()
	require.NoError(t, err)
	subC, err := tc.Subscribe()
	require.NoError(t, err)

	require.NoError(t, ta.Publish(ctx, []byte("hello")))

	for _, sub := range []interfaces.TopicSubscription{subB, subC} {
		msg := testutil.WaitForMessage(t, sub, time.Second)
		assert.Equal(t, "a", msg.From)
		assert.Equal(t, []byte("hello"), msg.Data)
		assert.Equal(t, testTopic, msg.Topic)
		assert.Equal(t, uint64(1), msg.Seqno)
	}

	assert.Equal(t, 0, subA.(*subscription).Pending())
	testutil.RequireNoMessage(t, subA, 20*time.Millisecond)
}

// TestPublish_PerSenderOrder 测试单发送方有序
func TestPublish_PerSenderOrder(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()

	ta := mustJoin(t, net.NewPubSub("a"))
	tb := mustJoin(t, net.NewPubSub("b"))
	sub, err := tb.Subscribe()
	require.NoError(t, err)

	const count = 500
	for i := 0; i < count; i++ {
		require.NoError(t, ta.Publish(ctx, []byte(fmt.Sprintf("%d", i))))
	}

	for i := 0; i < count; i++ {
		msg, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d", i), string(msg.Data))
		assert.Equal(t, uint64(i+1), msg.Seqno)
	}
}

// TestPublish_ConcurrentSenders 测试并发发送方各自有序
func TestPublish_ConcurrentSenders(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()

	senders := []interfaces.Topic{
		mustJoin(t, net.NewPubSub("s1")),
		mustJoin(t, net.NewPubSub("s2")),
		mustJoin(t, net.NewPubSub("s3")),
	}
	sub, err := mustJoin(t, net.NewPubSub("recv")).Subscribe()
	require.NoError(t, err)

	const perSender = 100
	var g errgroup.Group
	for _, s := range senders {
		s := s
		g.Go(func() error {
			for i := 0; i < perSender; i++ {
				if err := s.Publish(ctx, []byte{byte(i)}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	last := map[string]uint64{}
	for i := 0; i < perSender*len(senders); i++ {
		msg, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, msg.Seqno, last[msg.From])
		last[msg.From] = msg.Seqno
	}
}

// TestPublish_DataIsCopied 测试接收方拿到副本
func TestPublish_DataIsCopied(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()

	ta := mustJoin(t, net.NewPubSub("a"))
	sub, err := mustJoin(t, net.NewPubSub("b")).Subscribe()
	require.NoError(t, err)

	data := []byte("abc")
	require.NoError(t, ta.Publish(ctx, data))
	data[0] = 'x'

	msg, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(msg.Data))
}

// ============================================================================
//                              错误与故障注入
// ============================================================================

// TestPublish_Hook 测试故障注入
func TestPublish_Hook(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()

	ta := mustJoin(t, net.NewPubSub("a"))
	sub, err := mustJoin(t, net.NewPubSub("b")).Subscribe()
	require.NoError(t, err)

	net.SetPublishHook(func(peer, topic string) error {
		return types.NewTransportError("publish", types.CodeOutOfResources, nil)
	})
	err = ta.Publish(ctx, []byte("dropped"))
	code, ok := types.TransportCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeOutOfResources, code)

	// 无返回码的错误包装为 CodeError
	plain := errors.New("boom")
	net.SetPublishHook(func(string, string) error { return plain })
	err = ta.Publish(ctx, []byte("dropped"))
	code, ok = types.TransportCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, types.CodeError, code)
	assert.ErrorIs(t, err, plain)

	net.SetPublishHook(nil)
	require.NoError(t, ta.Publish(ctx, []byte("delivered")))

	msg, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "delivered", string(msg.Data))
}

// TestPublish_Readiness 测试就绪检查
func TestPublish_Readiness(t *testing.T) {
	ctx := testContext(t)
	ta := mustJoin(t, NewNetwork().NewPubSub("a"))

	err := ta.Publish(ctx, []byte("x"), interfaces.WithReadiness(func() error {
		return errors.New("no peers")
	}))
	assert.ErrorIs(t, err, ErrNotReady)
	code, _ := types.TransportCodeOf(err)
	assert.Equal(t, types.CodePreconditionNotMet, code)
}

// TestPublish_CancelledContext 测试已取消的 ctx
func TestPublish_CancelledContext(t *testing.T) {
	ta := mustJoin(t, NewNetwork().NewPubSub("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ta.Publish(ctx, []byte("x")), context.Canceled)
}

// TestClosed 测试关闭后的操作
func TestClosed(t *testing.T) {
	ctx := testContext(t)
	ps := NewNetwork().NewPubSub("a")
	topic := mustJoin(t, ps)
	sub, err := topic.Subscribe()
	require.NoError(t, err)

	require.NoError(t, ps.Close())
	require.NoError(t, ps.Close())

	err = topic.Publish(ctx, []byte("x"))
	assert.ErrorIs(t, err, ErrTopicClosed)
	code, _ := types.TransportCodeOf(err)
	assert.Equal(t, types.CodeAlreadyDeleted, code)

	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, ErrSubscriptionCancelled)

	_, err = ps.Join("other")
	assert.ErrorIs(t, err, ErrPubSubClosed)
	assert.Empty(t, ps.GetTopics())
}

// TestJoin_Errors 测试加入主题的错误
func TestJoin_Errors(t *testing.T) {
	ps := NewNetwork().NewPubSub("a")

	_, err := ps.Join("")
	assert.ErrorIs(t, err, ErrEmptyTopic)

	mustJoin(t, ps)
	_, err = ps.Join(testTopic)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, []string{testTopic}, ps.GetTopics())
}

// TestSubscription_Cancel 测试取消订阅
func TestSubscription_Cancel(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()
	ta := mustJoin(t, net.NewPubSub("a"))
	sub, err := mustJoin(t, net.NewPubSub("b")).Subscribe()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := sub.Next(ctx)
		done <- err
	}()

	sub.Cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSubscriptionCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after Cancel")
	}

	// 取消后发布不受影响
	assert.NoError(t, ta.Publish(ctx, []byte("x")))
}

// ============================================================================
//                              成员事件
// ============================================================================

// TestPeerEvents 测试加入与离开事件
func TestPeerEvents(t *testing.T) {
	ctx := testContext(t)
	net := NewNetwork()

	ta := mustJoin(t, net.NewPubSub("a"))
	mustSubscribe(t, ta)
	mustSubscribe(t, mustJoin(t, net.NewPubSub("b")))

	h, err := ta.EventHandler()
	require.NoError(t, err)

	// 已有成员先以 PeerJoin 出现
	ev := testutil.WaitForPeerEvent(t, h, time.Second)
	assert.Equal(t, interfaces.PeerEvent{Type: interfaces.PeerJoin, Peer: "b"}, ev)

	psC := net.NewPubSub("c")
	tc := mustJoin(t, psC)
	assert.Equal(t, []string{"b"}, ta.ListPeers(), "joined but not subscribed")
	mustSubscribe(t, tc)
	mustSubscribe(t, tc)
	ev = testutil.WaitForPeerEvent(t, h, time.Second)
	assert.Equal(t, interfaces.PeerEvent{Type: interfaces.PeerJoin, Peer: "c"}, ev)
	assert.Equal(t, []string{"b", "c"}, ta.ListPeers())

	require.NoError(t, psC.Close())
	ev = testutil.WaitForPeerEvent(t, h, time.Second)
	assert.Equal(t, interfaces.PeerEvent{Type: interfaces.PeerLeave, Peer: "c"}, ev)
	assert.Equal(t, []string{"b"}, ta.ListPeers())
	assert.Equal(t, []string{"a", "b"}, net.Peers())

	h.Cancel()
	_, err = h.NextPeerEvent(ctx)
	assert.ErrorIs(t, err, ErrSubscriptionCancelled)
}

// TestNewPubSub_ReplacesExisting 测试同 ID 重建节点
func TestNewPubSub_ReplacesExisting(t *testing.T) {
	net := NewNetwork()
	old := net.NewPubSub("a")
	mustJoin(t, old)

	fresh := net.NewPubSub("a")
	_, err := old.Join("other")
	assert.ErrorIs(t, err, ErrPubSubClosed)

	mustJoin(t, fresh)
	assert.Equal(t, []string{"a"}, net.Peers())
}

// TestQueue 测试无界队列
func TestQueue(t *testing.T) {
	ctx := testContext(t)
	q := newQueue[int]()
	for i := 0; i < 10; i++ {
		assert.True(t, q.push(i))
	}
	assert.Equal(t, 10, q.size())

	for i := 0; i < 10; i++ {
		v, err := q.pop(ctx, ErrSubscriptionCancelled)
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := q.pop(short, ErrSubscriptionCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	q.close()
	q.close()
	assert.False(t, q.push(1))
	_, err = q.pop(ctx, ErrSubscriptionCancelled)
	assert.ErrorIs(t, err, ErrSubscriptionCancelled)
}
