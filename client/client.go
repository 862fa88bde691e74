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

// Package client 实现面向 redline 服务端的同步客户端
//
// Go 没有区分阻塞与非阻塞客户端的必要 —— 每个导出方法本身就是同步的
// 这里只有一种 Client 而没有教师仓库中常见的"阻塞包装器"那一层
package client

import (
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/redline/command"
	"github.com/packetd/redline/conn"
	"github.com/packetd/redline/resp"
)

// Client 是对一条 redline 连接的同步封装
type Client struct {
	conn *conn.Connection
}

// Connect 拨号到 addr 并返回一个 Client
func Connect(addr string) (*Client, error) {
	netConn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "client: failed to connect")
	}
	return &Client{conn: conn.New(netConn)}, nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readResponse() (resp.Frame, error) {
	f, ok, err := c.conn.ReadFrame()
	if err != nil {
		return resp.Frame{}, err
	}
	if !ok {
		return resp.Frame{}, errors.New("client: connection reset by server")
	}
	if f.Type == resp.Err {
		return resp.Frame{}, f.ToError()
	}
	return f, nil
}

// Ping 发送 PING 命令 msg 为 nil 时不携带消息
func (c *Client) Ping(msg []byte) ([]byte, error) {
	cmd := command.Ping{Message: msg}
	if err := c.conn.WriteFrame(cmd.ToFrame()); err != nil {
		return nil, err
	}

	f, err := c.readResponse()
	if err != nil {
		return nil, err
	}
	switch f.Type {
	case resp.Simple:
		return []byte(f.Str), nil
	case resp.Bulk:
		return f.Bulk, nil
	default:
		return nil, f.ToError()
	}
}

// Get 取回 key 对应的值 不存在时返回 (nil, false, nil)
func (c *Client) Get(key string) ([]byte, bool, error) {
	cmd := command.Get{Key: key}
	if err := c.conn.WriteFrame(cmd.ToFrame()); err != nil {
		return nil, false, err
	}

	f, err := c.readResponse()
	if err != nil {
		return nil, false, err
	}
	switch {
	case f.IsNull():
		return nil, false, nil
	case f.Type == resp.Simple:
		return []byte(f.Str), true, nil
	case f.Type == resp.Bulk:
		return f.Bulk, true, nil
	default:
		return nil, false, f.ToError()
	}
}

// Set 写入一个没有过期时间的键
func (c *Client) Set(key string, value []byte) error {
	return c.set(command.Set{Key: key, Value: value})
}

// SetExpires 写入一个带过期时间的键
func (c *Client) SetExpires(key string, value []byte, expire time.Duration) error {
	return c.set(command.Set{Key: key, Value: value, Expire: expire})
}

func (c *Client) set(cmd command.Set) error {
	if err := c.conn.WriteFrame(cmd.ToFrame()); err != nil {
		return err
	}

	f, err := c.readResponse()
	if err != nil {
		return err
	}
	if f.Type != resp.Simple || f.Str != "OK" {
		return errors.Errorf("client: unexpected response to SET: %v", f)
	}
	return nil
}

// Publish 发布一条消息 返回收到消息的订阅者数量
func (c *Client) Publish(channel string, message []byte) (uint64, error) {
	cmd := command.Publish{Channel: channel, Message: message}
	if err := c.conn.WriteFrame(cmd.ToFrame()); err != nil {
		return 0, err
	}

	f, err := c.readResponse()
	if err != nil {
		return 0, err
	}
	if f.Type != resp.Integer {
		return 0, f.ToError()
	}
	return f.Int, nil
}

// Subscribe 订阅给定频道并消费 Client 本身
//
// 一旦订阅 这条连接的用途就固定为接收消息和管理订阅集合 不再适合
// 继续发出 PING/GET/SET/PUBLISH
func (c *Client) Subscribe(channels []string) (*Subscriber, error) {
	if len(channels) == 0 {
		return nil, errors.New("client: at least one channel must be provided")
	}

	sub := &Subscriber{client: c}
	if err := sub.subscribeCmd(channels); err != nil {
		return nil, err
	}
	return sub, nil
}
