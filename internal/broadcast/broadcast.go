// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package broadcast 实现按频道名分组的多播队列
//
// 以频道名本身为键管理订阅队列，每个频道对应一组订阅者，发布时向该
// 频道下的全部订阅者投递消息。队列已满时丢弃最旧的一条而不是最新的
// 一条，并通过一个单调递增的计数器把被丢弃的条数暴露出来，供调用方
// 判断自己是否发生了滞后（lagged）。
package broadcast

import (
	"sync"
	"sync/atomic"
)

// queueSize 是每个订阅者队列的容量
const queueSize = 1024

// Subscription 代表对某个频道的一次订阅
type Subscription struct {
	channel string
	id      uint64
	ch      chan []byte
	lagged  atomic.Uint64
	topic   *topic
}

// C 返回该订阅的消息通道 可直接用于 select
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Lagged 返回该订阅因队列已满而被丢弃的消息累计数量
func (s *Subscription) Lagged() uint64 {
	return s.lagged.Load()
}

// Channel 返回订阅所属的频道名
func (s *Subscription) Channel() string {
	return s.channel
}

type topic struct {
	mu   sync.Mutex
	subs map[uint64]*Subscription
}

// Broadcast 管理全部频道的订阅者集合
type Broadcast struct {
	mu     sync.Mutex
	topics map[string]*topic
	nextID atomic.Uint64
}

// New 创建一个空的 Broadcast
func New() *Broadcast {
	return &Broadcast{topics: make(map[string]*topic)}
}

func (b *Broadcast) topicFor(channel string, create bool) *topic {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[channel]
	if !ok {
		if !create {
			return nil
		}
		t = &topic{subs: make(map[uint64]*Subscription)}
		b.topics[channel] = t
	}
	return t
}

// Subscribe 订阅一个频道 若频道此前不存在则隐式创建它
//
// 频道一旦被创建就会一直存在于注册表中 即使其订阅者数量随后降为零
// 这样后续的 Subscribe 调用仍能复用同一频道
func (b *Broadcast) Subscribe(channel string) *Subscription {
	t := b.topicFor(channel, true)

	sub := &Subscription{
		channel: channel,
		id:      b.nextID.Add(1),
		ch:      make(chan []byte, queueSize),
		topic:   t,
	}

	t.mu.Lock()
	t.subs[sub.id] = sub
	t.mu.Unlock()

	return sub
}

// Unsubscribe 取消一个订阅 之后该订阅不再收到任何消息
func (b *Broadcast) Unsubscribe(sub *Subscription) {
	sub.topic.mu.Lock()
	delete(sub.topic.subs, sub.id)
	sub.topic.mu.Unlock()
}

// Publish 向一个频道的全部订阅者投递消息 返回当时的订阅者数量
//
// 如果频道从未被订阅过 返回 0 且不创建该频道的注册表项 —— 没有
// 订阅者的频道直接就地丢弃消息 不做任何登记
func (b *Broadcast) Publish(channel string, payload []byte) int {
	t := b.topicFor(channel, false)
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, sub := range t.subs {
		pushDropOldest(sub.ch, payload, &sub.lagged)
	}
	return len(t.subs)
}

// NumSubscribers 返回某个频道当前的订阅者数量
func (b *Broadcast) NumSubscribers(channel string) int {
	t := b.topicFor(channel, false)
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// pushDropOldest 尝试把 payload 投递到 ch 若队列已满则丢弃最旧的一条后重试
func pushDropOldest(ch chan []byte, payload []byte, lagged *atomic.Uint64) {
	for {
		select {
		case ch <- payload:
			return
		default:
		}

		select {
		case <-ch:
			lagged.Add(1)
		default:
			// 被并发的消费者抢先腾出了空间 直接重试发送
		}
	}
}
