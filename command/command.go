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

// Package command 实现命令帧到具体命令结构体的解析与求值
//
// 命令名在匹配前统一转为大写 与 protocol/predis/command.go 中
// normalizeCommand 先 ToUpper 再做集合归属判断的做法一致 只是这里
// 的合法命令集合很小 直接用一个 Go switch 表达 不需要再引入独立的
// 命令名清单文件
package command

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/packetd/redline/resp"
)

// Name 是已识别的命令名称
type Name string

const (
	NamePing        Name = "PING"
	NameGet         Name = "GET"
	NameSet         Name = "SET"
	NamePublish     Name = "PUBLISH"
	NameSubscribe   Name = "SUBSCRIBE"
	NameUnsubscribe Name = "UNSUBSCRIBE"
	NameUnknown     Name = "UNKNOWN"
)

// Command 是已解析命令的带标签联合体
//
// 仅 Name 对应的字段有效 其余保持零值
type Command struct {
	Name Name

	Ping      Ping
	Get       Get
	Set       Set
	Publish   Publish
	Subscribe Subscribe
	Unknown   Unknown
}

// ErrUnsubscribeUnsupported 在 Unsubscribe 于顶层（非 SUBSCRIBE 会话中）
// 被求值时返回 它只在连接处于订阅模式的循环内部才是合法操作
var ErrUnsubscribeUnsupported = errors.New("command: UNSUBSCRIBE is unsupported outside of a subscribe session")

// FromFrame 将一个顶层 Array 帧解析为一个命令
//
// 未识别的命令名会直接构造 Unknown 变体并返回 不会再去校验帧是否已被
// 耗尽 —— 这与已识别命令在解析完毕后必须调用 parser.Finish 的行为不
// 对称：未知命令的剩余参数无意义 没有必要校验
func FromFrame(f resp.Frame) (Command, error) {
	p, err := resp.NewParser(f)
	if err != nil {
		return Command{}, err
	}

	raw, err := p.NextString()
	if err != nil {
		return Command{}, errors.Wrap(err, "command: missing command name")
	}
	name := strings.ToUpper(raw)

	switch Name(name) {
	case NamePing:
		c, err := parsePing(p)
		if err != nil {
			return Command{}, err
		}
		if err := p.Finish(); err != nil {
			return Command{}, err
		}
		return Command{Name: NamePing, Ping: c}, nil

	case NameGet:
		c, err := parseGet(p)
		if err != nil {
			return Command{}, err
		}
		if err := p.Finish(); err != nil {
			return Command{}, err
		}
		return Command{Name: NameGet, Get: c}, nil

	case NameSet:
		c, err := parseSet(p)
		if err != nil {
			return Command{}, err
		}
		if err := p.Finish(); err != nil {
			return Command{}, err
		}
		return Command{Name: NameSet, Set: c}, nil

	case NamePublish:
		c, err := parsePublish(p)
		if err != nil {
			return Command{}, err
		}
		if err := p.Finish(); err != nil {
			return Command{}, err
		}
		return Command{Name: NamePublish, Publish: c}, nil

	case NameSubscribe:
		c, err := parseSubscribe(p)
		if err != nil {
			return Command{}, err
		}
		if err := p.Finish(); err != nil {
			return Command{}, err
		}
		return Command{Name: NameSubscribe, Subscribe: c}, nil

	case NameUnsubscribe:
		c, err := parseUnsubscribe(p)
		if err != nil {
			return Command{}, err
		}
		if err := p.Finish(); err != nil {
			return Command{}, err
		}
		return Command{Name: NameUnsubscribe, Subscribe: Subscribe(c)}, nil

	default:
		return Command{Name: NameUnknown, Unknown: Unknown{CommandName: raw}}, nil
	}
}
