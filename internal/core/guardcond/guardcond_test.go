package guardcond

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGuardCondition_Coalescing 测试多次 Notify 只需一次 Wait
func TestGuardCondition_Coalescing(t *testing.T) {
	g := New()

	g.Notify()
	g.Notify()
	g.Notify()

	assert.True(t, g.Triggered())
	assert.True(t, g.Wait(0))
	assert.False(t, g.Triggered())
	assert.False(t, g.Wait(0), "电平已被上一次 Wait 消费")
	assert.Equal(t, uint64(3), g.NotifyCount())
}

func TestGuardCondition_WaitWakesOnNotify(t *testing.T) {
	g := New()

	done := make(chan bool, 1)
	go func() {
		done <- g.Wait(-1)
	}()

	time.Sleep(10 * time.Millisecond)
	g.Notify()

	select {
	case got := <-done:
		assert.True(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait 未被唤醒")
	}
	assert.False(t, g.Triggered())
}

// TestGuardCondition_Timeout 测试超时返回 false（模拟时钟）
func TestGuardCondition_Timeout(t *testing.T) {
	mock := clock.NewMock()
	g := New(WithClock(mock))

	done := make(chan bool, 1)
	go func() {
		done <- g.Wait(5 * time.Second)
	}()

	var got bool
	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		select {
		case got = <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
	assert.False(t, got)

	// 超时后的 Notify 仍保持电平
	g.Notify()
	assert.True(t, g.Wait(0))
}

func TestGuardCondition_WaitRealTimeout(t *testing.T) {
	g := New()
	start := time.Now()
	assert.False(t, g.Wait(20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestGuardCondition_WaitContext(t *testing.T) {
	g := New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.WaitContext(ctx), context.Canceled)

	g.Notify()
	assert.NoError(t, g.WaitContext(context.Background()))
	assert.False(t, g.Triggered())
}

// TestGuardCondition_ChangedBroadcast 测试 Changed 通道广播给所有观察者且不消费电平
func TestGuardCondition_ChangedBroadcast(t *testing.T) {
	g := New()

	const observers = 4
	var wg sync.WaitGroup
	ready := make(chan struct{}, observers)
	for i := 0; i < observers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := g.Changed()
			ready <- struct{}{}
			<-ch
		}()
	}
	for i := 0; i < observers; i++ {
		<-ready
	}

	g.Notify()

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("观察者未全部被唤醒")
	}

	assert.True(t, g.Triggered(), "Changed 不消费电平")
}

func TestGuardCondition_ChangedFiresEvenWhenAlreadyTriggered(t *testing.T) {
	g := New()
	g.Notify()

	ch := g.Changed()
	g.Notify()

	select {
	case <-ch:
	default:
		t.Fatal("已置位时 Notify 仍应广播变化")
	}
}
