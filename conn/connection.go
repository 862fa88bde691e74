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

// Package conn 包装一条 TCP 连接 在其上提供帧粒度的读写
//
// 这一层是服务端连接处理器与客户端共用的底座：两边都只需要
// ReadFrame/WriteFrame 这一对方法 不关心底层究竟是服务端accept出来的
// 连接还是客户端主动拨出去的连接
package conn

import (
	"net"

	"github.com/google/uuid"

	"github.com/packetd/redline/resp"
)

// Connection 是对 net.Conn 的帧粒度封装
type Connection struct {
	ID    string
	conn  net.Conn
	codec *resp.Codec
}

// New 包装一条已建立的连接
//
// 连接被赋予一个 uuid 仅用于日志与指标关联 不会出现在线路协议中
func New(c net.Conn) *Connection {
	return &Connection{
		ID:    uuid.New().String(),
		conn:  c,
		codec: resp.NewCodec(c),
	}
}

// ReadFrame 读取下一帧 连接在帧边界处关闭时返回 (Frame{}, false, nil)
func (c *Connection) ReadFrame() (resp.Frame, bool, error) {
	return c.codec.ReadFrame()
}

// WriteFrame 编码并立即发送一帧
func (c *Connection) WriteFrame(f resp.Frame) error {
	return c.codec.WriteFrame(f)
}

// RemoteAddr 返回对端地址 用于日志
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close 关闭底层连接
func (c *Connection) Close() error {
	return c.conn.Close()
}
