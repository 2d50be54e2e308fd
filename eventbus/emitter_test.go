package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New[string](1)
	defer bus.Shutdown()

	ch := bus.Subscribe(1)
	bus.Publish(1, "hello")

	select {
	case got := <-ch:
		assert.Equal(t, "hello", got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published event")
	}
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := New[int](1)
	defer bus.Shutdown()

	ch := bus.Subscribe(5)
	bus.Unsubscribe(ch, 5)

	_, ok := <-ch
	require.False(t, ok)
}

func TestBusDoesNotDeliverToOtherTopics(t *testing.T) {
	bus := New[int](1)
	defer bus.Shutdown()

	ch := bus.Subscribe(1)
	bus.Publish(2, 99)

	select {
	case v := <-ch:
		t.Fatalf("unexpected delivery on unrelated topic: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}
