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

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/redline/resp"
	"github.com/packetd/redline/store"
)

// Set 对应 SET key value [EX seconds | PX milliseconds]
type Set struct {
	Key    string
	Value  []byte
	Expire time.Duration // 零值表示没有过期时间
}

func parseSet(p *resp.Parser) (Set, error) {
	key, err := p.NextString()
	if err != nil {
		return Set{}, err
	}

	value, err := p.NextBytes()
	if err != nil {
		return Set{}, err
	}

	opt, err := p.NextString()
	switch {
	case err == resp.ErrEndOfStream:
		return Set{Key: key, Value: value}, nil
	case err != nil:
		return Set{}, err
	}

	switch strings.ToUpper(opt) {
	case "EX":
		secs, err := p.NextInt()
		if err != nil {
			return Set{}, err
		}
		return Set{Key: key, Value: value, Expire: time.Duration(secs) * time.Second}, nil
	case "PX":
		ms, err := p.NextInt()
		if err != nil {
			return Set{}, err
		}
		return Set{Key: key, Value: value, Expire: time.Duration(ms) * time.Millisecond}, nil
	default:
		return Set{}, errors.New("command: SET only supports the EX and PX expiration options")
	}
}

// Apply 求值 SET 命令 写入成功后总是回复 Simple("OK")
func (c Set) Apply(s *store.Store) resp.Frame {
	s.Set(c.Key, c.Value, c.Expire)
	return resp.NewSimple("OK")
}

// ToFrame 将 SET 编码为请求帧
//
// 不论解析时使用的是 EX 还是 PX 这里总是以 PX（毫秒）的形式重新编码
// 过期时间 避免往返编解码时因单位换算丢失精度
func (c Set) ToFrame() resp.Frame {
	elems := []resp.Frame{
		resp.NewBulk([]byte("set")),
		resp.NewBulk([]byte(c.Key)),
		resp.NewBulk(c.Value),
	}
	if c.Expire > 0 {
		ms := uint64(c.Expire / time.Millisecond)
		elems = append(elems, resp.NewBulk([]byte("px")), resp.NewInteger(ms))
	}
	return resp.NewArray(elems...)
}
