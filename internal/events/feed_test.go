package events

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeed(t *testing.T) {
	feed := NewFeed[string](false)
	require.NotNil(t, feed)
	assert.Equal(t, 0, feed.SubscriberCount())

	_, ok := feed.Last()
	assert.False(t, ok)
}

func TestFeed_Subscribe_Publish(t *testing.T) {
	feed := NewFeed[string](false)

	ch := make(chan string, 10)
	unsubscribe := feed.Subscribe(ch)
	assert.Equal(t, 1, feed.SubscriberCount())

	feed.Publish("a")
	feed.Publish("b")

	require.Len(t, ch, 2)
	assert.Equal(t, "a", <-ch)
	assert.Equal(t, "b", <-ch)

	unsubscribe()
	assert.Equal(t, 0, feed.SubscriberCount())

	feed.Publish("c")
	select {
	case v := <-ch:
		t.Errorf("unexpected value after unsubscribe: %s", v)
	default:
	}
}

func TestFeed_FullChannelIsSkipped(t *testing.T) {
	feed := NewFeed[int](false)
	ch := make(chan int, 1)
	feed.Subscribe(ch)

	done := make(chan struct{})
	go func() {
		feed.Publish(1)
		feed.Publish(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full channel")
	}
	assert.Equal(t, 1, <-ch)
}

func TestFeed_SubscribeFunc(t *testing.T) {
	feed := NewFeed[int](false)

	var got []int
	unsubscribe := feed.SubscribeFunc(func(v int) { got = append(got, v) })

	feed.Publish(1)
	feed.Publish(2)
	assert.Equal(t, []int{1, 2}, got)

	unsubscribe()
	feed.Publish(3)
	assert.Equal(t, []int{1, 2}, got)
}

func TestFeed_ReplayLastValue(t *testing.T) {
	feed := NewFeed[string](true)

	early := make(chan string, 1)
	feed.Subscribe(early)
	assert.Empty(t, early, "nothing to replay before the first publish")

	feed.Publish("first")
	feed.Publish("second")
	<-early

	late := make(chan string, 1)
	feed.Subscribe(late)
	require.Len(t, late, 1)
	assert.Equal(t, "second", <-late)

	var replayed string
	feed.SubscribeFunc(func(v string) { replayed = v })
	assert.Equal(t, "second", replayed)

	last, ok := feed.Last()
	assert.True(t, ok)
	assert.Equal(t, "second", last)
}

func TestFeed_NoReplayWhenDisabled(t *testing.T) {
	feed := NewFeed[string](false)
	feed.Publish("x")

	ch := make(chan string, 1)
	feed.Subscribe(ch)
	assert.Empty(t, ch)

	_, ok := feed.Last()
	assert.False(t, ok)
}

func TestFeed_NilSubscriberPanics(t *testing.T) {
	feed := NewFeed[int](false)
	assert.Panics(t, func() { feed.Subscribe(nil) })
	assert.Panics(t, func() { feed.SubscribeFunc(nil) })
}

func TestFeed_CallbackMayPublish(t *testing.T) {
	feed := NewFeed[int](true)
	var calls atomic.Int32
	feed.SubscribeFunc(func(v int) {
		calls.Add(1)
		if v == 1 {
			feed.Publish(2)
		}
	})
	feed.Publish(1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFeed_ConcurrentUse(t *testing.T) {
	feed := NewFeed[int](true)
	var received atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsubscribe := feed.SubscribeFunc(func(int) { received.Add(1) })
			for j := 0; j < 100; j++ {
				feed.Publish(j)
			}
			unsubscribe()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, feed.SubscriberCount())
	assert.Greater(t, received.Load(), int64(0))
}
