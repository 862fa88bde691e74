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

// Package sigs 把 redline-server 关心的 OS 信号暴露成 channel
//
// redline-server 只区分两类信号：让进程排空在途连接后退出的终止信号
// 以及让它不重启进程就重新读取配置文件的重载信号 没有自触发重载的
// 需求 因此这里不提供一个主动发送 SIGHUP 给自身的辅助函数
package sigs

import (
	"os"
	"os/signal"
	"syscall"
)

// Terminate 等待终止信号 收到后调用方应当广播停机并等待全部连接排空
func Terminate() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}

// Reload 等待配置重载信号（SIGHUP） 收到后调用方应当重新读取配置文件
// 并应用其中可以热更新的部分（目前只有日志级别/输出目标）
func Reload() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	return ch
}
