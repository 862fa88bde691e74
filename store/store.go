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

// Package store 实现进程内的键值存储 支持可选的 TTL 过期与按频道发布/订阅
//
// 全部可变状态由一把互斥锁保护 锁从不会在一次 I/O 或 channel 操作
// 进行期间被持有：后台清理协程只在计算下一次醒来时机时持锁 其余时间
// 通过 internal/notify 被动唤醒
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/packetd/redline/internal/broadcast"
	"github.com/packetd/redline/internal/notify"
)

// Entry 是存储中的一条记录
type Entry struct {
	Data     []byte
	ExpireAt time.Time // 零值表示没有过期时间
}

func (e Entry) hasExpiry() bool {
	return !e.ExpireAt.IsZero()
}

// expiryKey 是过期索引中的一项 按 (When, Key) 字典序排序
type expiryKey struct {
	When time.Time
	Key  string
}

func less(a, b expiryKey) bool {
	if !a.When.Equal(b.When) {
		return a.When.Before(b.When)
	}
	return a.Key < b.Key
}

// Store 是进程内键值存储的单个实例
type Store struct {
	mu          sync.Mutex
	entries     map[string]Entry
	expirations []expiryKey // 按时间后按键排序的有序集合
	shutdown    bool

	pubsub *broadcast.Broadcast
	wake   *notify.Notifier

	sweeperDone chan struct{}
}

// New 创建一个 Store 并启动其后台过期清理协程
func New() *Store {
	s := &Store{
		entries:     make(map[string]Entry),
		pubsub:      broadcast.New(),
		wake:        notify.New(),
		sweeperDone: make(chan struct{}),
	}
	go s.runSweeper()
	return s
}

// Get 返回 key 对应的值 如果不存在则返回 ok=false
//
// Get 不检查过期时间：已到期但尚未被后台清理协程移除的条目仍会被返回
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Set 写入一个键 expireIn 为零值表示永不过期
//
// 操作顺序固定为：先移除旧条目在过期索引中的登记 再写入新条目并在
// 需要时登记新的过期时间 最后释放锁后才唤醒清理协程 — 这样清理协程
// 绝不会在持有存储锁的同时等待被唤醒的那把锁
func (s *Store) Set(key string, value []byte, expireIn time.Duration) {
	s.mu.Lock()

	var expireAt time.Time
	if expireIn > 0 {
		expireAt = time.Now().Add(expireIn)
	}

	shouldNotify := s.shouldNotifyOnInsert(expireAt)

	prev, hadPrev := s.entries[key]
	if hadPrev && prev.hasExpiry() {
		s.removeExpiryLocked(expiryKey{When: prev.ExpireAt, Key: key})
	}

	s.entries[key] = Entry{Data: value, ExpireAt: expireAt}
	if !expireAt.IsZero() {
		s.insertExpiryLocked(expiryKey{When: expireAt, Key: key})
	}
	if !hadPrev {
		entriesGauge.Inc()
	}

	s.mu.Unlock()

	if shouldNotify {
		s.wake.Notify()
	}
}

// shouldNotifyOnInsert 报告清理协程是否需要被唤醒以便重新计算睡眠时间
//
// 调用方必须持有锁 仅当新条目的过期时间早于当前已知的最早过期时间
// （或当前没有任何过期条目在途）时才需要唤醒
func (s *Store) shouldNotifyOnInsert(expireAt time.Time) bool {
	if expireAt.IsZero() {
		return false
	}
	next, ok := s.nextExpirationLocked()
	if !ok {
		return true
	}
	return expireAt.Before(next)
}

func (s *Store) nextExpirationLocked() (time.Time, bool) {
	if len(s.expirations) == 0 {
		return time.Time{}, false
	}
	return s.expirations[0].When, true
}

func (s *Store) insertExpiryLocked(k expiryKey) {
	i := sort.Search(len(s.expirations), func(i int) bool {
		return !less(s.expirations[i], k)
	})
	s.expirations = append(s.expirations, expiryKey{})
	copy(s.expirations[i+1:], s.expirations[i:])
	s.expirations[i] = k
}

func (s *Store) removeExpiryLocked(k expiryKey) {
	i := sort.Search(len(s.expirations), func(i int) bool {
		return !less(s.expirations[i], k)
	})
	if i < len(s.expirations) && s.expirations[i] == k {
		s.expirations = append(s.expirations[:i], s.expirations[i+1:]...)
	}
}

// Publish 向某个频道的订阅者投递消息 返回投递到的订阅者数量
func (s *Store) Publish(channel string, message []byte) int {
	return s.pubsub.Publish(channel, message)
}

// Subscribe 订阅一个频道 返回的订阅句柄在不再需要时必须传给 Unsubscribe
func (s *Store) Subscribe(channel string) *broadcast.Subscription {
	sub := s.pubsub.Subscribe(channel)
	subscribersGauge.WithLabelValues(channel).Set(float64(s.pubsub.NumSubscribers(channel)))
	return sub
}

// Unsubscribe 取消一个订阅
func (s *Store) Unsubscribe(sub *broadcast.Subscription) {
	s.pubsub.Unsubscribe(sub)
	subscribersGauge.WithLabelValues(sub.Channel()).Set(float64(s.pubsub.NumSubscribers(sub.Channel())))
}

// ShutdownPurgeTask 通知后台清理协程停止运行 并等待其退出
func (s *Store) ShutdownPurgeTask() {
	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	s.wake.Notify()
	<-s.sweeperDone
}

// purgeExpired 移除全部已到期的条目 返回下一个尚未到期的条目的到期时间
//
// 调用方必须持有锁 如果已处于 shutdown 状态则不做任何事
func (s *Store) purgeExpired() (time.Time, bool) {
	if s.shutdown {
		return time.Time{}, false
	}

	now := time.Now()
	for len(s.expirations) > 0 {
		k := s.expirations[0]
		if k.When.After(now) {
			return k.When, true
		}
		delete(s.entries, k.Key)
		s.expirations = s.expirations[1:]
		entriesGauge.Dec()
		expiredCounter.Inc()
	}
	return time.Time{}, false
}

func (s *Store) runSweeper() {
	defer close(s.sweeperDone)

	for {
		s.mu.Lock()
		if s.shutdown {
			s.mu.Unlock()
			return
		}
		when, ok := s.purgeExpired()
		s.mu.Unlock()

		if ok {
			timer := time.NewTimer(time.Until(when))
			select {
			case <-timer.C:
			case <-s.wake.C():
				timer.Stop()
			}
		} else {
			<-s.wake.C()
		}
	}
}
