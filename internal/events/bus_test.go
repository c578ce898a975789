package events

import "testing"

func TestBus_FanOut(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Publish("evt-1")

	got, ok := (<-a).(string)
	if !ok || got != "evt-1" {
		t.Fatalf("subscriber a got %v, want evt-1", got)
	}
	got, ok = (<-b).(string)
	if !ok || got != "evt-1" {
		t.Fatalf("subscriber b got %v, want evt-1", got)
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	slow := bus.Subscribe()
	for i := 0; i < busBacklog+10; i++ {
		bus.Publish(i)
	}

	// 积压满之后多发的事件被丢弃，通道里只剩前 busBacklog 条。
	count := 0
	for {
		select {
		case <-slow:
			count++
		default:
			if count != busBacklog {
				t.Fatalf("buffered events = %d, want %d", count, busBacklog)
			}
			return
		}
	}
}

func TestBus_SubscribeAfterClose(t *testing.T) {
	bus := NewBus()
	bus.Close()
	bus.Publish("dropped")

	sub := bus.Subscribe()
	if _, open := <-sub; open {
		t.Fatal("subscription after Close should yield a closed channel")
	}
}

func TestBus_CloseClosesSubscribers(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	bus.Close()
	bus.Close() // 重复关闭应当无害

	if _, open := <-sub; open {
		t.Fatal("subscriber channel should be closed after Close")
	}
}
