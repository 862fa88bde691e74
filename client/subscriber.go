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

package client

import (
	"github.com/pkg/errors"

	"github.com/packetd/redline/command"
	"github.com/packetd/redline/resp"
)

// Message 是从某个已订阅频道收到的一条消息
type Message struct {
	Channel string
	Content []byte
}

// Subscriber 管理一条已经切换到订阅模式的连接
type Subscriber struct {
	client             *Client
	subscribedChannels []string
}

// Subscribed 返回当前已订阅的频道列表
func (s *Subscriber) Subscribed() []string {
	return append([]string(nil), s.subscribedChannels...)
}

func (s *Subscriber) subscribeCmd(channels []string) error {
	cmd := command.Subscribe{Channels: channels}
	if err := s.client.conn.WriteFrame(cmd.ToFrame()); err != nil {
		return err
	}

	for _, want := range channels {
		f, err := s.client.readResponse()
		if err != nil {
			return err
		}
		if err := validateAck("subscribe", want, f); err != nil {
			return err
		}
		s.subscribedChannels = append(s.subscribedChannels, want)
	}
	return nil
}

// validateAck 校验一条 [kind, channel, count] 形式的确认帧
//
// 频道名必须与请求时的顺序一一对应：本客户端按请求顺序逐个读取确认
// 帧 服务端不会对确认帧重新排序
func validateAck(kind, wantChannel string, f resp.Frame) error {
	if f.Type != resp.Array || len(f.Elems) != 3 {
		return errors.Errorf("client: unexpected response to %s: %v", kind, f)
	}
	if string(f.Elems[0].Bulk) != kind {
		return errors.Errorf("client: unexpected response to %s: %v", kind, f)
	}
	if string(f.Elems[1].Bulk) != wantChannel {
		return errors.Errorf("client: %s acknowledged unexpected channel %q, wanted %q", kind, f.Elems[1].Bulk, wantChannel)
	}
	return nil
}

// NextMessage 阻塞等待下一条消息 连接关闭时返回 (nil, false, nil)
func (s *Subscriber) NextMessage() (*Message, bool, error) {
	f, ok, err := s.client.conn.ReadFrame()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	if f.Type != resp.Array || len(f.Elems) != 3 || string(f.Elems[0].Bulk) != "message" {
		return nil, false, errors.Errorf("client: unexpected frame on subscribed connection: %v", f)
	}
	return &Message{
		Channel: string(f.Elems[1].Bulk),
		Content: f.Elems[2].Bulk,
	}, true, nil
}

// Subscribe 追加订阅更多频道
func (s *Subscriber) Subscribe(channels []string) error {
	return s.subscribeCmd(channels)
}

// Unsubscribe 取消订阅 channels 为空时取消当前全部订阅
func (s *Subscriber) Unsubscribe(channels []string) error {
	wantAcks := len(channels)
	if wantAcks == 0 {
		wantAcks = len(s.subscribedChannels)
	}

	cmd := command.Unsubscribe{Channels: channels}
	if err := s.client.conn.WriteFrame(cmd.ToFrame()); err != nil {
		return err
	}

	for i := 0; i < wantAcks; i++ {
		f, err := s.client.readResponse()
		if err != nil {
			return err
		}
		if f.Type != resp.Array || len(f.Elems) != 3 || string(f.Elems[0].Bulk) != "unsubscribe" {
			return errors.Errorf("client: unexpected response to unsubscribe: %v", f)
		}

		ch := string(f.Elems[1].Bulk)
		before := len(s.subscribedChannels)
		s.removeSubscribedChannel(ch)
		if len(s.subscribedChannels) != before-1 {
			return errors.Errorf("client: unsubscribe acknowledged an unexpected channel %q", ch)
		}
	}
	return nil
}

func (s *Subscriber) removeSubscribedChannel(channel string) {
	out := s.subscribedChannels[:0]
	removed := false
	for _, ch := range s.subscribedChannels {
		if !removed && ch == channel {
			removed = true
			continue
		}
		out = append(out, ch)
	}
	s.subscribedChannels = out
}
