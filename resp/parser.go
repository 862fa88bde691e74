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

package resp

import (
	"strconv"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrEndOfStream 表示游标已经耗尽了帧中的全部元素
//
// 这是一个可恢复的状态 命令解析器用它判断一个可选的尾部字段是否存在
var ErrEndOfStream = errors.New("resp: end of stream")

// Parser 是针对一个已解码 Array 帧的元素的前向游标
//
// 命令解析在其之上逐个取出字段 取尽后继续取用会返回 ErrEndOfStream
type Parser struct {
	parts []Frame
	pos   int
}

// NewParser 要求传入的帧必须是 Array 变体 否则返回错误
func NewParser(f Frame) (*Parser, error) {
	if f.Type != Array {
		return nil, newError("expected array frame, got %v", f.Type)
	}
	return &Parser{parts: f.Elems}, nil
}

func (p *Parser) next() (Frame, error) {
	if p.pos >= len(p.parts) {
		return Frame{}, ErrEndOfStream
	}
	f := p.parts[p.pos]
	p.pos++
	return f, nil
}

// NextString 取出下一个元素并要求其为字符串
//
// Simple 帧原样返回 Bulk 帧要求是合法的 UTF-8 其余类型报错
func (p *Parser) NextString() (string, error) {
	f, err := p.next()
	if err != nil {
		return "", err
	}
	switch f.Type {
	case Simple:
		return f.Str, nil
	case Bulk:
		if !utf8.Valid(f.Bulk) {
			return "", newError("protocol error; invalid utf-8")
		}
		return string(f.Bulk), nil
	default:
		return "", newError("protocol error; expected simple or bulk frame, got %v", f.Type)
	}
}

// NextBytes 取出下一个元素并要求其为字节串
//
// Simple 帧转换为其字节表示 Bulk 帧原样返回 其余类型报错
func (p *Parser) NextBytes() ([]byte, error) {
	f, err := p.next()
	if err != nil {
		return nil, err
	}
	switch f.Type {
	case Simple:
		return []byte(f.Str), nil
	case Bulk:
		return f.Bulk, nil
	default:
		return nil, newError("protocol error; expected simple or bulk frame, got %v", f.Type)
	}
}

// NextInt 取出下一个元素并将其解释为无符号整数
func (p *Parser) NextInt() (uint64, error) {
	f, err := p.next()
	if err != nil {
		return 0, err
	}
	switch f.Type {
	case Integer:
		return f.Int, nil
	case Simple:
		n, convErr := strconv.ParseUint(f.Str, 10, 64)
		if convErr != nil {
			return 0, newError("protocol error; invalid number")
		}
		return n, nil
	case Bulk:
		n, convErr := strconv.ParseUint(string(f.Bulk), 10, 64)
		if convErr != nil {
			return 0, newError("protocol error; invalid number")
		}
		return n, nil
	default:
		return 0, newError("protocol error; invalid number")
	}
}

// Finish 断言游标已耗尽 如果仍有未消费的元素则报错
func (p *Parser) Finish() error {
	if p.pos < len(p.parts) {
		return newError("protocol error; expected end of frame, but there was more")
	}
	return nil
}
