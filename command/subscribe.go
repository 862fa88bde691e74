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

package command

import "github.com/packetd/redline/resp"

// Subscribe 对应 SUBSCRIBE channel [channel ...] 至少要求一个频道
type Subscribe struct {
	Channels []string
}

// Unsubscribe 对应 UNSUBSCRIBE [channel ...] 可以不携带任何频道
//
// 与 Subscribe 共享相同的字段形状 两者之间可以直接类型转换 —— 它们
// 在协议里是同一种"频道列表"载荷 只是被允许出现的频道数量下限不同
type Unsubscribe struct {
	Channels []string
}

func parseSubscribe(p *resp.Parser) (Subscribe, error) {
	first, err := p.NextString()
	if err != nil {
		return Subscribe{}, err
	}
	channels := []string{first}

	for {
		ch, err := p.NextString()
		if err == resp.ErrEndOfStream {
			break
		}
		if err != nil {
			return Subscribe{}, err
		}
		channels = append(channels, ch)
	}
	return Subscribe{Channels: channels}, nil
}

func parseUnsubscribe(p *resp.Parser) (Unsubscribe, error) {
	var channels []string
	for {
		ch, err := p.NextString()
		if err == resp.ErrEndOfStream {
			break
		}
		if err != nil {
			return Unsubscribe{}, err
		}
		channels = append(channels, ch)
	}
	return Unsubscribe{Channels: channels}, nil
}

// ToFrame 将 SUBSCRIBE 编码为请求帧
func (c Subscribe) ToFrame() resp.Frame {
	elems := make([]resp.Frame, 0, len(c.Channels)+1)
	elems = append(elems, resp.NewBulk([]byte("subscribe")))
	for _, ch := range c.Channels {
		elems = append(elems, resp.NewBulk([]byte(ch)))
	}
	return resp.NewArray(elems...)
}

// ToFrame 将 UNSUBSCRIBE 编码为请求帧
func (c Unsubscribe) ToFrame() resp.Frame {
	elems := make([]resp.Frame, 0, len(c.Channels)+1)
	elems = append(elems, resp.NewBulk([]byte("unsubscribe")))
	for _, ch := range c.Channels {
		elems = append(elems, resp.NewBulk([]byte(ch)))
	}
	return resp.NewArray(elems...)
}

// MakeSubscribeAck 构造一条 ["subscribe", channel, count] 确认帧
func MakeSubscribeAck(channel string, count int) resp.Frame {
	return resp.NewArray(resp.NewBulk([]byte("subscribe")), resp.NewBulk([]byte(channel)), resp.NewInteger(uint64(count)))
}

// MakeUnsubscribeAck 构造一条 ["unsubscribe", channel, count] 确认帧
func MakeUnsubscribeAck(channel string, count int) resp.Frame {
	return resp.NewArray(resp.NewBulk([]byte("unsubscribe")), resp.NewBulk([]byte(channel)), resp.NewInteger(uint64(count)))
}

// MakeMessageFrame 构造一条 ["message", channel, payload] 消息帧
func MakeMessageFrame(channel string, payload []byte) resp.Frame {
	return resp.NewArray(resp.NewBulk([]byte("message")), resp.NewBulk([]byte(channel)), resp.NewBulk(payload))
}
