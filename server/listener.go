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

// Package server 实现 RESP 协议的连接接入与每条连接的命令分发
package server

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/redline/conn"
	"github.com/packetd/redline/internal/labels"
	"github.com/packetd/redline/internal/rescue"
	"github.com/packetd/redline/logger"
	"github.com/packetd/redline/shutdown"
	"github.com/packetd/redline/store"
)

// Listener 接受新连接 并为每条连接派生一个处理协程
//
// limit 是一个容量等于 MaxConnections 的带缓冲 channel 充当信号量：
// 每接受一条新连接先获取一个许可 处理协程退出时归还许可 这是 Go 里
// 表达计数信号量最直接的方式
type Listener struct {
	config   Config
	store    *store.Store
	listener net.Listener
	limit    chan struct{}
}

// NewListener 在 config.Address 上监听 TCP 连接
func NewListener(config Config, s *store.Store) (*Listener, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, errors.Wrap(err, "server: failed to bind listener")
	}
	return &Listener{
		config:   config,
		store:    s,
		listener: l,
		limit:    make(chan struct{}, config.MaxConnections),
	}, nil
}

// Addr 返回监听套接字的实际地址 便于在地址包含随机端口（:0）时获取真实端口
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Run 接受连接直到 notifier 广播停机信号
//
// 收到 notifier 的广播后关闭底层 net.Listener 解除 Accept 的阻塞
// 待接入循环退出后返回。Run 不等待 drain：派生的处理协程只在 drain
// 上登记 调用方负责触发 notifier.Broadcast()（通常由信号处理逻辑
// 完成）并在其后自行调用 drain.Wait() 等待全部处理协程退出
func (l *Listener) Run(notifier *shutdown.Notifier, drain *sync.WaitGroup) error {
	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- l.acceptLoop(notifier, drain)
	}()

	select {
	case err := <-acceptErr:
		return err
	case <-notifier.C():
		_ = l.listener.Close()
		return <-acceptErr
	}
}

func (l *Listener) acceptLoop(notifier *shutdown.Notifier, drain *sync.WaitGroup) error {
	backoff := time.Second
	for {
		select {
		case l.limit <- struct{}{}:
		case <-notifier.C():
			return nil
		}

		c, err := l.listener.Accept()
		if err != nil {
			<-l.limit
			if notifier.IsShutdown() {
				return nil
			}
			if backoff > l.config.AcceptBackoffMax {
				return errors.Wrap(err, "server: accept failed repeatedly, giving up")
			}
			logger.Warnf("accept error, retrying in %s: %v", backoff, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}
		backoff = time.Second

		drain.Add(1)
		go func() {
			defer drain.Done()
			defer func() { <-l.limit }()
			// 单条连接内的 panic 只终结这条连接 不能把整个进程带崩
			defer rescue.HandleCrash()
			l.handle(c, notifier)
		}()
	}
}

func (l *Listener) handle(netConn net.Conn, notifier *shutdown.Notifier) {
	c := conn.New(netConn)
	defer c.Close()

	fp := labels.Labels{
		{Name: "remote_addr", Value: c.RemoteAddr().String()},
		{Name: "conn_id", Value: c.ID},
	}.Hash()
	connLog := logger.WithConn(c.ID)
	connLog.Debugf("connection accepted remote=%s fingerprint=%x", c.RemoteAddr(), fp)

	if err := runHandler(c, l.store, notifier); err != nil {
		connLog.Warnf("connection terminated: %v", err)
	}
}
