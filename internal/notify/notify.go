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

// Package notify 提供一个单槽位的合并唤醒原语
//
// 多次 Notify 调用如果没有被消费会被合并为一次 Wait 返回 与
// tokio::sync::Notify 的语义一致 用于后台清理任务在持锁状态之外
// 被动唤醒的场景
package notify

// Notifier 是一个至多缓存一个待处理通知的信号器
type Notifier struct {
	ch chan struct{}
}

// New 创建一个 Notifier
func New() *Notifier {
	return &Notifier{ch: make(chan struct{}, 1)}
}

// Notify 标记一次唤醒 如果已有未消费的唤醒则本次调用是无操作的
func (n *Notifier) Notify() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

// C 返回可用于 select 的唤醒通道
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}
