package network

import (
	"sync"

	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

// 每个订阅者最多缓存的画面数
const subscriberBuffer = 4

// Broadcaster 只负责把画面分发给订阅者
type Broadcaster struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]chan structs.Frame
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[int]chan structs.Frame),
	}
}

// Register 创建一个订阅通道
func (b *Broadcaster) Register() (int, <-chan structs.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan structs.Frame, subscriberBuffer)
	b.subscribers[b.nextID] = ch
	return b.nextID, ch
}

// Unregister 删除订阅者并关闭它的通道
func (b *Broadcaster) Unregister(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
}

// Broadcast 发送给所有订阅者，通道满时丢弃这一帧
func (b *Broadcaster) Broadcast(frame structs.Frame) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	dropped := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- frame:
		default:
			dropped++
		}
	}
	return dropped
}

// Close 关闭所有订阅通道
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}

// SubscriberCount 返回当前订阅者数量
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
