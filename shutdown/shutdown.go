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

// Package shutdown 提供一次性的广播通知与排空等待两件工具
//
// 一次优雅停机分两步：先向所有在途连接广播"停止"信号 再等待它们全部
// 退出。关闭一个 channel 是 Go 里"一次性广播给所有接收者"最自然的写
// 法；排空等待用 sync.WaitGroup 表达，每个连接处理协程在启动时 Add(1)
// 退出时 Done()。调用方必须先完成广播再调用 Wait —— 反过来会永久阻塞
// 因为 WaitGroup 不知道还有多少个 Add 尚未发生
package shutdown

import "sync"

// Notifier 是一次性的广播信号 可被任意数量的协程等待
type Notifier struct {
	ch   chan struct{}
	once sync.Once
}

// New 创建一个尚未触发的 Notifier
func New() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// C 返回一个在 Broadcast 被调用后关闭的 channel
//
// 在 select 中与其他 case 一起等待即可感知停机信号 多次读取同一个已
// 关闭的 channel 都会立即返回 不需要额外的状态判断
func (n *Notifier) C() <-chan struct{} {
	return n.ch
}

// Broadcast 触发一次性的停机信号 可安全地并发多次调用
func (n *Notifier) Broadcast() {
	n.once.Do(func() { close(n.ch) })
}

// IsShutdown 报告是否已经广播过停机信号
func (n *Notifier) IsShutdown() bool {
	select {
	case <-n.ch:
		return true
	default:
		return false
	}
}
