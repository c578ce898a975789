package events

import "sync"

// busBacklog 限制每个订阅通道的积压；消费不过来时丢新事件而不是阻塞发布方。
const busBacklog = 32

// Bus 是工具派发用的进程内广播通道：引擎向上面发 DispatchRequest，
// dispatcher 和 EQ 转发器各自订阅 ToolEvent。和 SQ/EQ 不同，
// 这里不落日志也不保证送达，只做尽力而为的扇出。
type Bus struct {
	mu          sync.Mutex
	subscribers []chan any
	closed      bool
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe 注册一个订阅者。Bus 已关闭时返回一个已关闭的通道，
// 让调用方的接收循环直接退出。
func (b *Bus) Subscribe() <-chan any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		dead := make(chan any)
		close(dead)
		return dead
	}
	sub := make(chan any, busBacklog)
	b.subscribers = append(b.subscribers, sub)
	return sub
}

// Publish 把事件广播给所有订阅者。某个订阅者积压满时跳过它，
// 不会因为一个慢消费者拖住整条派发链路。
func (b *Bus) Publish(event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}

// Close 关闭所有订阅通道；之后的 Publish 会被静默丢弃。
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
	b.subscribers = nil
}
