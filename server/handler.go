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

package server

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"

	"github.com/packetd/redline/command"
	"github.com/packetd/redline/conn"
	"github.com/packetd/redline/internal/broadcast"
	"github.com/packetd/redline/internal/rescue"
	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/shutdown"
	"github.com/packetd/redline/store"
)

// frameResult 是异步读取一帧的结果 通过一个带缓冲的 channel 传回
//
// 缓冲为 1 是必须的：一旦停机信号先于读取完成触发 读帧协程最终还是
// 会把结果送入这个 channel 若没有缓冲它会永久阻塞泄漏
type frameResult struct {
	frame resp.Frame
	ok    bool
	err   error
}

var errReadFramePanic = errors.New("server: panic while reading frame")

func asyncReadFrame(c *conn.Connection) <-chan frameResult {
	ch := make(chan frameResult, 1)
	go func() {
		// 发送结果的 defer 必须先注册：这样 HandleCrash 先吞掉 panic
		// 随后仍有一条错误结果送出 等待方不会因为 panic 而永久阻塞
		res := frameResult{err: errReadFramePanic}
		defer func() { ch <- res }()
		defer rescue.HandleCrash()

		f, ok, err := c.ReadFrame()
		res = frameResult{frame: f, ok: ok, err: err}
	}()
	return ch
}

// runHandler 驱动一条连接的普通请求/响应循环 不支持流水线
//
// 一旦遇到 SUBSCRIBE 命令就会切换到订阅会话循环 该循环结束后连接也随之结束
func runHandler(c *conn.Connection, s *store.Store, notifier *shutdown.Notifier) error {
	for {
		resCh := asyncReadFrame(c)

		select {
		case res := <-resCh:
			if res.err != nil {
				return res.err
			}
			if !res.ok {
				return nil
			}

			cmd, err := command.FromFrame(res.frame)
			if err != nil {
				return c.WriteFrame(resp.NewError(err.Error()))
			}

			if cmd.Name == command.NameSubscribe {
				return runSubscribeSession(c, s, cmd.Subscribe, notifier)
			}

			reply, err := cmd.Apply(s)
			if err != nil {
				reply = resp.NewError(err.Error())
			}
			if err := c.WriteFrame(reply); err != nil {
				return err
			}

		case <-notifier.C():
			return nil
		}
	}
}

// runSubscribeSession 实现订阅模式下的状态机
//
// 在这一模式下连接同时做两件事：把命中频道的消息转发给客户端 以及
// 继续接收同一条连接上新到达的 SUBSCRIBE/UNSUBSCRIBE 命令（其余命令
// 被当作 Unknown 处理，与顶层的"仅在订阅会话内合法"限制保持一致）
func runSubscribeSession(c *conn.Connection, s *store.Store, first command.Subscribe, notifier *shutdown.Notifier) error {
	subs := make(map[string]*broadcast.Subscription)
	defer func() {
		for _, sub := range subs {
			s.Unsubscribe(sub)
		}
	}()

	subscribeChannels := func(channels []string) error {
		for _, ch := range channels {
			if _, exists := subs[ch]; exists {
				continue
			}
			subs[ch] = s.Subscribe(ch)
			if err := c.WriteFrame(command.MakeSubscribeAck(ch, len(subs))); err != nil {
				return err
			}
		}
		return nil
	}

	if err := subscribeChannels(first.Channels); err != nil {
		return err
	}

	resCh := asyncReadFrame(c)
	for {
		cases := make([]reflect.SelectCase, 0, len(subs)+2)
		channels := make([]string, 0, len(subs))

		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(resCh)})
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(notifier.C())})
		for ch, sub := range subs {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(sub.C())})
			channels = append(channels, ch)
		}

		chosen, recv, recvOK := reflect.Select(cases)

		switch chosen {
		case 0: // resCh: 新的一帧到达 或连接已结束
			res := recv.Interface().(frameResult)
			if res.err != nil {
				return res.err
			}
			if !res.ok {
				return nil
			}

			cmd, err := command.FromFrame(res.frame)
			if err != nil {
				if werr := c.WriteFrame(resp.NewError(err.Error())); werr != nil {
					return werr
				}
				resCh = asyncReadFrame(c)
				continue
			}

			switch cmd.Name {
			case command.NameSubscribe:
				if err := subscribeChannels(cmd.Subscribe.Channels); err != nil {
					return err
				}
			case command.NameUnsubscribe:
				if err := unsubscribeChannels(c, s, subs, cmd.Subscribe.Channels); err != nil {
					return err
				}
			default:
				// 订阅会话内部只认识 SUBSCRIBE/UNSUBSCRIBE 其余任何命令
				// 一律当作未知命令处理 即便它本来是合法命令也不会被求值
				unknown := cmd.Unknown
				if cmd.Name != command.NameUnknown {
					unknown = command.Unknown{CommandName: strings.ToLower(string(cmd.Name))}
				}
				if err := c.WriteFrame(unknown.Apply()); err != nil {
					return err
				}
			}

			resCh = asyncReadFrame(c)

		case 1: // shutdown
			return nil

		default: // 某个被订阅频道的消息 或其 Subscription 已被关闭
			ch := channels[chosen-2]
			if !recvOK {
				delete(subs, ch)
				continue
			}
			payload := recv.Interface().([]byte)
			if err := c.WriteFrame(command.MakeMessageFrame(ch, payload)); err != nil {
				return err
			}
		}
	}
}

// unsubscribeChannels 处理订阅会话内部的 UNSUBSCRIBE 命令
//
// 空频道列表表示"取消全部当前订阅" 每取消一个频道就立即回复一条确认帧
func unsubscribeChannels(c *conn.Connection, s *store.Store, subs map[string]*broadcast.Subscription, channels []string) error {
	if len(channels) == 0 {
		for ch := range subs {
			channels = append(channels, ch)
		}
	}

	for _, ch := range channels {
		if sub, exists := subs[ch]; exists {
			s.Unsubscribe(sub)
			delete(subs, ch)
		}
		if err := c.WriteFrame(command.MakeUnsubscribeAck(ch, len(subs))); err != nil {
			return err
		}
	}
	return nil
}
